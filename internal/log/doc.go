// Package log provides logging with automatic truncation of long residue
// sequences, built on top of the standard slog package.
//
// Precursor proteins run to thousands of residues. Logging one verbatim
// turns a single debug line into pages of output and makes shared logs
// unreadable, so the TruncateHandler shortens sequence-valued attributes to
// a fixed-size preview plus the full length before they reach the
// underlying handler.
//
// # Usage
//
//	// Create a truncating logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("sequence normalized",
//	    "sequence", precursor, // long sequences become "MKTAYI...WG (2386 aa)"
//	    "length", len(precursor),
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
