// Package align estimates and corrects the time offset between two
// signals that captured the same event through different paths (e.g. a
// reference track and a delayed recording of it).
//
// FindBestOffset scans a bounded range of candidate integer sample
// offsets and returns the best-matching one; Align additionally removes
// the detected lag from the pair by cropping or zero-padding, optionally
// reconciling the lengths afterwards.
//
// Positive offsets mean the second signal lags the first one: an offset
// of k says delayed[k:] lines up with reference. The scoring backend is
// selectable via Method (or a custom Searcher); all backends are pure
// functions over their inputs and safe for concurrent use.
package align

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"

	"github.com/xaionaro-go/alignaudio/pkg/align/implementations/corrcoef"
	"github.com/xaionaro-go/alignaudio/pkg/align/implementations/fft"
	"github.com/xaionaro-go/alignaudio/pkg/align/implementations/gccphat"
	"github.com/xaionaro-go/alignaudio/pkg/align/implementations/mse"
)

var (
	_ Searcher = (*mse.Searcher)(nil)
	_ Searcher = (*corrcoef.Searcher)(nil)
	_ Searcher = (*gccphat.Searcher)(nil)
	_ Searcher = (*fft.Searcher)(nil)
)

// FindBestOffset returns the sample offset of `delayed` relative to
// `reference` within [-opts.MaxOffsetSamples, opts.MaxOffsetSamples),
// under the scoring method selected by opts.
//
// A positive result means `delayed` lags `reference` by that many
// samples; see the package documentation for the full convention.
func FindBestOffset(
	ctx context.Context,
	reference []float32,
	delayed []float32,
	opts SearchOptions,
) (int, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	if len(reference) == 0 || len(delayed) == 0 {
		return 0, fmt.Errorf("%w: len(reference)==%d, len(delayed)==%d", ErrEmptySignal, len(reference), len(delayed))
	}

	searcher, err := opts.searcher()
	if err != nil {
		return 0, err
	}

	ref, del, lookahead := reference, delayed, opts.LookaheadSamples
	if opts.Searcher == nil && opts.Method != MethodMSE {
		// The MSE searcher consumes the lookahead itself, as a budget
		// for each comparison; the other methods are bounded up front
		// by a centered window instead (which keeps the offset in the
		// original sample domain). A custom Searcher is handed the
		// lookahead untouched, per the interface contract.
		ref, del = Window(reference, delayed, lookahead)
		lookahead = 0
	}

	offset, score, err := searcher.FindBestOffset(ctx, ref, del, -opts.MaxOffsetSamples, opts.MaxOffsetSamples, lookahead)
	if err != nil {
		return 0, fmt.Errorf("unable to find the best offset using %T: %w", searcher, err)
	}
	logger.Debugf(ctx, "best offset of the delayed signal is %d (score: %f, method: %T)", offset, score, searcher)
	return offset, nil
}

// Align time-aligns the pair (a, b): it finds the best offset of b
// relative to a, removes the lag according to opts.AlignMode and
// reconciles the lengths according to opts.FixMode.
//
// The returned signals are freshly allocated; the inputs are not modified.
func Align(
	ctx context.Context,
	a []float32,
	b []float32,
	opts AlignOptions,
) ([]float32, []float32, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	offset, err := FindBestOffset(ctx, a, b, opts.SearchOptions)
	if err != nil {
		return nil, nil, err
	}

	a, b, err = ApplyOffset(a, b, offset, opts.AlignMode)
	if err != nil {
		return nil, nil, err
	}

	a, b, err = FixLength(a, b, opts.FixMode)
	if err != nil {
		return nil, nil, err
	}

	return a, b, nil
}

func (opts SearchOptions) searcher() (Searcher, error) {
	if opts.Searcher != nil {
		return opts.Searcher, nil
	}
	switch opts.Method {
	case MethodMSE:
		return mse.NewSearcher(), nil
	case MethodCorrelation:
		return corrcoef.NewSearcher(opts.Stride), nil
	case MethodGCCPHAT:
		return gccphat.NewSearcher(0, 0, 0)
	case MethodFFT:
		return fft.NewSearcher(), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidMethod, opts.Method)
}
