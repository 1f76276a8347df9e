package bioactivity

import (
	"context"
	"log/slog"

	"github.com/nao1215/peptiscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency caps the scoring fan-out. Eight in-flight predictions
// keep the remote service comfortable while hiding most of its latency; a
// precursor rarely yields more fragments than this anyway.
const DefaultConcurrency = 8

// Scorer assigns bioactivity scores to extracted fragments.
//
// Every fragment gets one remote prediction attempt and, on any failure,
// the local heuristic. Fragments are scored concurrently up to the
// configured limit and mutated in place exactly once each; the fragment
// slice itself is never reordered, so detection order survives scoring.
type Scorer struct {
	// client is the remote prediction client. A nil client disables the
	// remote tier entirely and every fragment is scored heuristically.
	client *Client

	// concurrency caps the number of in-flight predictions.
	concurrency int

	// logger for structured logging.
	logger *slog.Logger
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithClient sets the remote prediction client.
// Passing nil disables the remote tier.
func WithClient(client *Client) ScorerOption {
	return func(s *Scorer) {
		s.client = client
	}
}

// WithConcurrency caps the scoring fan-out.
// Values below one fall back to DefaultConcurrency.
func WithConcurrency(n int) ScorerOption {
	return func(s *Scorer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for the scorer.
func WithLogger(logger *slog.Logger) ScorerOption {
	return func(s *Scorer) {
		s.logger = logger
	}
}

// NewScorer creates a scorer with a default remote client.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		client:      NewClient(),
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score scores all fragments concurrently and returns when every fragment
// has resolved through the remote tier or its heuristic fallback.
//
// Scoring failures never surface: the only possible error is context
// cancellation, in which case already-scored fragments keep their scores
// and the rest are completed heuristically so no fragment leaves the scorer
// unscored.
//
// Design decision: We use errgroup with SetLimit rather than a raw
// WaitGroup because the original design had no upper bound on the fan-out;
// a pathological precursor with hundreds of motifs would open hundreds of
// simultaneous connections. The limit makes the resource envelope explicit.
func (s *Scorer) Score(ctx context.Context, fragments []*model.PeptideFragment) error {
	if len(fragments) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, fragment := range fragments {
		g.Go(func() error {
			s.scoreOne(gctx, fragment)
			return nil
		})
	}

	// Goroutines never return errors, so Wait only reflects ctx state.
	_ = g.Wait() //nolint:errcheck // see above

	// Complete anything the cancellation raced past.
	for _, fragment := range fragments {
		if fragment.ScoreSource == model.ScoreSourceNone {
			s.applyHeuristic(fragment)
		}
	}

	return ctx.Err()
}

// scoreOne resolves a single fragment: one remote attempt, then fallback.
func (s *Scorer) scoreOne(ctx context.Context, fragment *model.PeptideFragment) {
	fragment.Amphipathic = AmphipathicProfile(fragment.Sequence)

	if s.client != nil && len(fragment.Sequence) >= minPredictLength {
		score, err := s.client.Predict(ctx, fragment.Sequence)
		if err == nil {
			fragment.BioactivityScore = score
			fragment.ScoreSource = model.ScoreSourceRemote
			return
		}
		// Non-fatal by design: the remote tier is best-effort and the
		// heuristic below always produces an answer.
		s.logger.Debug("remote prediction failed, using heuristic",
			"fragment_start", fragment.Start,
			"length", fragment.Length,
			"error", err,
		)
	}

	s.applyHeuristic(fragment)
}

// applyHeuristic assigns the tier-two score.
func (s *Scorer) applyHeuristic(fragment *model.PeptideFragment) {
	fragment.BioactivityScore = Heuristic(fragment.Sequence)
	fragment.ScoreSource = model.ScoreSourceHeuristic
}
