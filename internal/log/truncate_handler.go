package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// sequenceKeys contains attribute keys whose string values are residue
// sequences and should always be truncated when long.
var sequenceKeys = map[string]bool{
	"sequence":  true,
	"precursor": true,
	"fragment":  true,
	"peptide":   true,
	"raw_input": true,
	"input":     true,
}

// MaxSequenceAttr is the longest sequence value logged verbatim. Anything
// longer is reduced to a preview plus its residue count.
const MaxSequenceAttr = 48

// previewHead and previewTail are the residue counts kept from each end of
// a truncated sequence.
const (
	previewHead = 24
	previewTail = 8
)

// TruncateHandler wraps an slog.Handler to shorten long residue sequences.
// It intercepts log records and truncates attribute values that carry
// sequences before passing them to the underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Callers keep logging full sequences and never think about length
type TruncateHandler struct {
	// handler is the underlying slog handler that receives truncated records.
	handler slog.Handler
}

// NewTruncateHandler creates a new TruncateHandler wrapping the given handler.
// If handler is nil, the returned TruncateHandler will use slog.Default().Handler().
func NewTruncateHandler(handler slog.Handler) *TruncateHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &TruncateHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *TruncateHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle truncates the record's attributes and passes it to the underlying handler.
func (h *TruncateHandler) Handle(ctx context.Context, r slog.Record) error {
	truncated := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		truncated.AddAttrs(h.truncateAttr(a))
		return true
	})

	return h.handler.Handle(ctx, truncated)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are truncated before being added.
func (h *TruncateHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	truncatedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		truncatedAttrs[i] = h.truncateAttr(a)
	}
	return &TruncateHandler{handler: h.handler.WithAttrs(truncatedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *TruncateHandler) WithGroup(name string) slog.Handler {
	return &TruncateHandler{handler: h.handler.WithGroup(name)}
}

// truncateAttr truncates a single attribute, recursively handling groups.
func (h *TruncateHandler) truncateAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		truncatedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			truncatedAttrs[i] = h.truncateAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(truncatedAttrs...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}

	value := a.Value.String()
	if len(value) <= MaxSequenceAttr {
		return a
	}

	keyLower := strings.ToLower(a.Key)
	if !sequenceKeys[keyLower] && !looksLikeSequence(value) {
		return a
	}

	return slog.String(a.Key, TruncateSequence(value))
}

// TruncateSequence reduces a long sequence to its ends plus residue count.
// Sequences at or under MaxSequenceAttr pass through unchanged.
func TruncateSequence(sequence string) string {
	if len(sequence) <= MaxSequenceAttr {
		return sequence
	}
	return fmt.Sprintf("%s...%s (%d aa)",
		sequence[:previewHead],
		sequence[len(sequence)-previewTail:],
		len(sequence),
	)
}

// looksLikeSequence reports whether a value consists entirely of amino acid
// codes and the stop marker. Long values of this shape are sequences logged
// under a key the sequenceKeys map doesn't anticipate.
func looksLikeSequence(value string) bool {
	for i := 0; i < len(value); i++ {
		if !strings.ContainsRune("ACDEFGHIKLMNPQRSTVWY*", rune(value[i])) {
			return false
		}
	}
	return true
}

// NewLogger creates a new slog.Logger with sequence truncation.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewTruncateHandler(textHandler))
}

// NewJSONLogger creates a new slog.Logger with sequence truncation that
// outputs JSON format. Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)
	return slog.New(NewTruncateHandler(jsonHandler))
}
