// Package uniprot fetches precursor proteins and their curated peptide
// annotations from the UniProt REST API.
//
// The client is best-effort: analyses work from a raw sequence alone, and
// UniProt only adds names, a recommended signal peptide length, and
// exact/partial classification of predicted fragments against curated
// peptides. Callers are expected to degrade to unknown annotations when a
// lookup fails.
package uniprot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the UniProtKB REST endpoint.
	DefaultBaseURL = "https://rest.uniprot.org/uniprotkb"

	// DefaultFetchTimeout bounds one entry fetch.
	DefaultFetchTimeout = 15 * time.Second

	// entryFields selects the fields an analysis needs: the sequence, the
	// names, and the signal/peptide/propeptide features.
	entryFields = "accession,protein_name,gene_names,sequence,ft_signal,ft_peptide,ft_propep"

	// maxEntryBody limits the entry response size. Curated entries with
	// all features stay well under this.
	maxEntryBody = 4 * 1024 * 1024
)

// Client errors.
var (
	// ErrNotFound is returned when the accession has no UniProt entry.
	ErrNotFound = errors.New("uniprot entry not found")

	// ErrUnavailable is returned for transport failures, timeouts, and
	// unexpected HTTP statuses.
	ErrUnavailable = errors.New("uniprot service unavailable")

	// ErrMalformedEntry is returned when the entry JSON cannot be
	// interpreted or carries no sequence.
	ErrMalformedEntry = errors.New("malformed uniprot entry")
)

// Fragment match statuses against curated peptide annotations.
const (
	// MatchExact means the fragment equals a curated peptide.
	MatchExact = "exact"

	// MatchPartial means the fragment is contained in, or contains, a
	// curated peptide.
	MatchPartial = "partial"

	// MatchUnknown means no curated peptide relates to the fragment.
	MatchUnknown = "unknown"
)

// AnnotatedPeptide is one curated peptide or propeptide feature of an
// entry. Start and End are one-based inclusive residue positions, as
// UniProt reports them.
type AnnotatedPeptide struct {
	// Type is the feature type, "Peptide" or "Propeptide".
	Type string

	// Description is the curated peptide name.
	Description string

	// Start is the one-based first residue.
	Start int

	// End is the one-based last residue.
	End int

	// Sequence is the feature's residue sequence.
	Sequence string
}

// Entry is a fetched precursor protein.
type Entry struct {
	// Accession is the primary UniProt accession.
	Accession string

	// ProteinName is the recommended protein name.
	ProteinName string

	// GeneName is the primary gene name.
	GeneName string

	// Sequence is the full precursor sequence.
	Sequence string

	// SignalPeptideEnd is the one-based last residue of the annotated
	// signal peptide, or zero when none is annotated. It doubles as the
	// recommended signal peptide length.
	SignalPeptideEnd int

	// Peptides are the curated peptide and propeptide features.
	Peptides []AnnotatedPeptide
}

// Match classifies one predicted fragment against an entry's curated
// peptides.
type Match struct {
	// Status is MatchExact, MatchPartial, or MatchUnknown.
	Status string

	// Name is the curated peptide name for non-unknown matches.
	Name string

	// Note qualifies partial matches: which part of the curated peptide
	// the fragment covers, or that it extends one.
	Note string
}

// Client calls the UniProt REST API.
type Client struct {
	// httpClient is the underlying HTTP client.
	httpClient *http.Client

	// baseURL is the UniProtKB endpoint.
	baseURL string

	// timeout bounds a single fetch.
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the UniProtKB endpoint URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets the per-fetch timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a UniProt client with default endpoint and timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		timeout:    DefaultFetchTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// entryResponse mirrors the slice of the UniProtKB entry JSON we consume.
type entryResponse struct {
	PrimaryAccession   string `json:"primaryAccession"`
	ProteinDescription struct {
		RecommendedName struct {
			FullName struct {
				Value string `json:"value"`
			} `json:"fullName"`
		} `json:"recommendedName"`
	} `json:"proteinDescription"`
	Genes []struct {
		GeneName struct {
			Value string `json:"value"`
		} `json:"geneName"`
	} `json:"genes"`
	Sequence struct {
		Value string `json:"value"`
	} `json:"sequence"`
	Features []struct {
		Type        string `json:"type"`
		Description string `json:"description"`
		Location    struct {
			Start struct {
				Value int `json:"value"`
			} `json:"start"`
			End struct {
				Value int `json:"value"`
			} `json:"end"`
		} `json:"location"`
	} `json:"features"`
}

// Fetch retrieves one precursor entry by accession. Accessions in FASTA
// header form (sp|P01189|COLI_HUMAN) are reduced to the bare accession
// before the request.
func (c *Client) Fetch(ctx context.Context, accession string) (*Entry, error) {
	accession = CleanAccession(accession)
	if accession == "" {
		return nil, fmt.Errorf("%w: empty accession", ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s?format=json&fields=%s", c.baseURL, url.PathEscape(accession), url.QueryEscape(entryFields))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, accession)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEntryBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var raw entryResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}
	if raw.Sequence.Value == "" {
		return nil, fmt.Errorf("%w: entry %s has no sequence", ErrMalformedEntry, accession)
	}

	entry := raw.toEntry()
	if entry.Accession == "" {
		entry.Accession = accession
	}
	return entry, nil
}

// toEntry converts a raw entry response into an Entry. The sequence must be
// validated by the caller; feature positions outside it are dropped here.
func (raw entryResponse) toEntry() *Entry {
	entry := &Entry{
		Accession:   raw.PrimaryAccession,
		ProteinName: raw.ProteinDescription.RecommendedName.FullName.Value,
		Sequence:    raw.Sequence.Value,
	}
	if len(raw.Genes) > 0 {
		entry.GeneName = raw.Genes[0].GeneName.Value
	}

	for _, feat := range raw.Features {
		start := feat.Location.Start.Value
		end := feat.Location.End.Value

		switch feat.Type {
		case "Signal":
			if end > entry.SignalPeptideEnd {
				entry.SignalPeptideEnd = end
			}
		case "Peptide", "Propeptide":
			if start < 1 || end < start || start > len(entry.Sequence) {
				continue
			}
			if end > len(entry.Sequence) {
				end = len(entry.Sequence)
			}
			description := feat.Description
			if description == "" {
				description = "Curated peptide"
			}
			entry.Peptides = append(entry.Peptides, AnnotatedPeptide{
				Type:        feat.Type,
				Description: description,
				Start:       start,
				End:         end,
				Sequence:    entry.Sequence[start-1 : end],
			})
		}
	}

	return entry
}

// MatchFragment classifies a predicted fragment sequence against the
// entry's curated peptides. The first annotation that relates to the
// fragment wins; exact equality is checked before containment for each
// annotation in turn.
func (e *Entry) MatchFragment(sequence string) Match {
	for _, annotated := range e.Peptides {
		if sequence == annotated.Sequence {
			return Match{Status: MatchExact, Name: annotated.Description}
		}

		if idx := strings.Index(annotated.Sequence, sequence); idx >= 0 {
			note := "internal fragment"
			switch {
			case idx == 0:
				note = "N-terminal fragment"
			case idx+len(sequence) == len(annotated.Sequence):
				note = "C-terminal fragment"
			}
			return Match{Status: MatchPartial, Name: annotated.Description, Note: note}
		}

		if strings.Contains(sequence, annotated.Sequence) {
			return Match{Status: MatchPartial, Name: annotated.Description, Note: "extended form"}
		}
	}

	return Match{Status: MatchUnknown}
}

// CleanAccession reduces a FASTA-style identifier (sp|P01189|COLI_HUMAN)
// to the bare accession. Bare accessions pass through unchanged.
func CleanAccession(id string) string {
	id = strings.TrimSpace(id)
	if !strings.Contains(id, "|") {
		return id
	}

	parts := strings.Split(id, "|")
	if len(parts) > 1 && parts[1] != "" {
		return parts[1]
	}
	return parts[0]
}
