package align

// Window restricts both signals to a centered sub-range of at most
// lookaheadSamples samples, to bound the cost of an offset search
// independently of the full signal length.
//
// The sub-range is [len(reference)/2, len(reference)/2+lookaheadSamples),
// clamped to each signal's actual length; the same indices are applied to
// both signals, so offsets measured on the windowed pair are valid in the
// original sample domain. If lookaheadSamples is 0 or the reference
// already fits in it, the signals are returned as-is.
//
// The returned slices are copies: mutating them does not affect the
// inputs, and the windowed pair never leaks into alignment output.
func Window(reference, delayed []float32, lookaheadSamples int) ([]float32, []float32) {
	if lookaheadSamples <= 0 || len(reference) <= lookaheadSamples {
		return reference, delayed
	}

	mid := len(reference) / 2
	end := mid + lookaheadSamples

	return copyRange(reference, mid, end), copyRange(delayed, mid, end)
}

func copyRange(signal []float32, begin, end int) []float32 {
	if begin > len(signal) {
		begin = len(signal)
	}
	if end > len(signal) {
		end = len(signal)
	}
	out := make([]float32, end-begin)
	copy(out, signal[begin:end])
	return out
}
