package config

import "github.com/nao1215/peptiscan/internal/model"

// Profile holds analysis parameters for a named precursor or protein
// family. Prohormone convertase behavior varies between precursors, so a
// profile lets users pin the parameters that work for a protein they
// analyze repeatedly.
type Profile struct {
	// Mode overrides the detection mode for this profile: "strict" or
	// "permissive". If empty, the global mode is used.
	Mode string `yaml:"mode,omitempty"`

	// SignalPeptideLength overrides the number of leading residues treated
	// as the signal peptide. If zero, the global value is used.
	SignalPeptideLength int `yaml:"signalPeptideLength,omitempty"`

	// MinCleavageSites overrides the minimum site count for prohormone
	// classification. If zero, the global value is used.
	MinCleavageSites int `yaml:"minCleavageSites,omitempty"`

	// MinCleavageSpacing overrides the minimum residue distance between
	// retained sites. If zero, the global value is used.
	MinCleavageSpacing int `yaml:"minCleavageSpacing,omitempty"`
}

// File represents the structure of the .peptiscan configuration file.
type File struct {
	// Profiles maps profile names to analysis parameters. Names are
	// matched against the --profile flag or a precursor's accession.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`

	// Defaults contains default profile values applied to all analyses
	// unless overridden in a named profile.
	Defaults Profile `yaml:"defaults,omitempty"`
}

// GetProfile returns the profile for a given name.
// It merges the named profile with the file's defaults.
func (cf *File) GetProfile(name string) Profile {
	// Start with defaults
	result := cf.Defaults

	// Override with the named profile if present
	if profile, ok := cf.Profiles[name]; ok {
		if profile.Mode != "" {
			result.Mode = profile.Mode
		}
		if profile.SignalPeptideLength != 0 {
			result.SignalPeptideLength = profile.SignalPeptideLength
		}
		if profile.MinCleavageSites != 0 {
			result.MinCleavageSites = profile.MinCleavageSites
		}
		if profile.MinCleavageSpacing != 0 {
			result.MinCleavageSpacing = profile.MinCleavageSpacing
		}
	}

	return result
}

// Apply overlays the profile's non-zero values onto a Config.
// The mode string is parsed leniently: unknown values leave the config's
// mode unchanged.
func (p Profile) Apply(c *Config) {
	if p.Mode != "" {
		if mode, err := model.ParseDetectionMode(p.Mode); err == nil {
			c.Mode = mode
		}
	}
	if p.SignalPeptideLength != 0 {
		c.Params.SignalPeptideLength = p.SignalPeptideLength
	}
	if p.MinCleavageSites != 0 {
		c.Params.MinCleavageSites = p.MinCleavageSites
	}
	if p.MinCleavageSpacing != 0 {
		c.Params.MinCleavageSpacing = p.MinCleavageSpacing
	}
}
