package align

import (
	"context"
)

// Searcher finds the best integer sample offset between two signals.
//
// The returned offset is always within [minOffset, maxOffset) and follows
// the convention of this package: a positive offset means `delayed` lags
// `reference` by that many samples (delayed[offset:] best matches
// reference), a negative offset is the symmetric case, and 0 means the
// signals are already aligned.
//
// lookaheadSamples, when positive, bounds the amount of samples used for
// each candidate comparison. The score is algorithm-specific (correlation
// coefficient, confidence, or negated error); higher is better within one
// searcher, but scores are not comparable across searchers.
type Searcher interface {
	FindBestOffset(
		ctx context.Context,
		reference []float32,
		delayed []float32,
		minOffset int,
		maxOffset int,
		lookaheadSamples int,
	) (offset int, score float64, err error)
}
