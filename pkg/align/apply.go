package align

import (
	"fmt"
)

// ApplyOffset removes the detected lag from the signal pair (a, b), where
// offset is the result of FindBestOffset(a, b): positive offset means b
// lags a by that many samples.
//
// With AlignModeCrop the leading offset samples are dropped from the
// lagging signal; with AlignModePad the other signal is prepended with
// offset zero samples instead. A zero offset is a no-op under both modes.
//
// Both returned signals are freshly allocated.
func ApplyOffset(a, b []float32, offset int, mode AlignMode) ([]float32, []float32, error) {
	switch mode {
	case AlignModeCrop, AlignModePad:
	default:
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidAlignMode, mode)
	}

	if offset >= 0 {
		lagging, other := alignPair(b, a, offset, mode)
		return other, lagging, nil
	}
	lagging, other := alignPair(a, b, -offset, mode)
	return lagging, other, nil
}

// alignPair removes a non-negative lag from (lagging, other): crop drops
// the lag from the front of the lagging signal, pad prepends the lag as
// zeros to the other signal.
func alignPair(lagging, other []float32, lag int, mode AlignMode) ([]float32, []float32) {
	switch mode {
	case AlignModeCrop:
		if lag > len(lagging) {
			lag = len(lagging)
		}
		cropped := make([]float32, len(lagging)-lag)
		copy(cropped, lagging[lag:])
		lagging = cropped
		other = copySignal(other)
	case AlignModePad:
		padded := make([]float32, lag+len(other))
		copy(padded[lag:], other)
		other = padded
		lagging = copySignal(lagging)
	}
	return lagging, other
}

// FixLength reconciles the lengths of an already aligned signal pair:
// FixModeShortest truncates both to the shorter length (keeping the
// leading samples), FixModeLongest right-pads the shorter one with zeros,
// FixModeNone returns copies of the inputs unchanged.
func FixLength(a, b []float32, mode FixMode) ([]float32, []float32, error) {
	switch mode {
	case FixModeNone:
		return copySignal(a), copySignal(b), nil
	case FixModeShortest:
		n := min(len(a), len(b))
		return copySignal(a[:n]), copySignal(b[:n]), nil
	case FixModeLongest:
		n := max(len(a), len(b))
		return padRight(a, n), padRight(b, n), nil
	}
	return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFixMode, mode)
}

func copySignal(signal []float32) []float32 {
	out := make([]float32, len(signal))
	copy(out, signal)
	return out
}

func padRight(signal []float32, length int) []float32 {
	out := make([]float32, length)
	copy(out, signal)
	return out
}
