package align

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Method selects the offset-search algorithm.
type Method int

const (
	// MethodMSE scans the offset range for the minimal mean squared
	// error between the overlapping parts of the signals. This is the
	// default (and the fastest exact time-domain method).
	MethodMSE Method = iota
	// MethodCorrelation scans the offset range for the maximal Pearson
	// correlation coefficient, computed over every Nth sample
	// (see SearchOptions.Stride).
	MethodCorrelation
	// MethodGCCPHAT estimates the offset in the frequency domain using
	// Generalized Cross-Correlation with Phase Transform.
	MethodGCCPHAT
	// MethodFFT estimates the offset with a plain (non-whitened)
	// FFT cross-correlation of the zero-meaned signals.
	MethodFFT
)

func (m Method) String() string {
	switch m {
	case MethodMSE:
		return "mse"
	case MethodCorrelation:
		return "corr"
	case MethodGCCPHAT:
		return "gccphat"
	case MethodFFT:
		return "fft"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod converts a string (as accepted on the command line) to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "mse":
		return MethodMSE, nil
	case "corr":
		return MethodCorrelation, nil
	case "gccphat":
		return MethodGCCPHAT, nil
	case "fft":
		return MethodFFT, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMethod, s)
}

// Set implements pflag.Value.
func (m *Method) Set(s string) error {
	v, err := ParseMethod(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Type implements pflag.Value.
func (m *Method) Type() string {
	return "method"
}

// AlignMode selects how the detected lag is removed from the signal pair.
type AlignMode int

const (
	// AlignModeCrop drops the leading lag samples from the lagging signal.
	AlignModeCrop AlignMode = iota
	// AlignModePad prepends lag zero samples to the other signal.
	AlignModePad
)

func (m AlignMode) String() string {
	switch m {
	case AlignModeCrop:
		return "crop"
	case AlignModePad:
		return "pad"
	}
	return fmt.Sprintf("AlignMode(%d)", int(m))
}

// ParseAlignMode converts a string to an AlignMode.
func ParseAlignMode(s string) (AlignMode, error) {
	switch s {
	case "crop":
		return AlignModeCrop, nil
	case "pad":
		return AlignModePad, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAlignMode, s)
}

// Set implements pflag.Value.
func (m *AlignMode) Set(s string) error {
	v, err := ParseAlignMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Type implements pflag.Value.
func (m *AlignMode) Type() string {
	return "align-mode"
}

// FixMode selects how the lengths of the two signals are reconciled
// after alignment.
type FixMode int

const (
	// FixModeNone leaves the lengths as they are.
	FixModeNone FixMode = iota
	// FixModeShortest truncates both signals to the shorter length.
	FixModeShortest
	// FixModeLongest right-pads the shorter signal with zeros to the
	// longer length.
	FixModeLongest
)

func (m FixMode) String() string {
	switch m {
	case FixModeNone:
		return "none"
	case FixModeShortest:
		return "shortest"
	case FixModeLongest:
		return "longest"
	}
	return fmt.Sprintf("FixMode(%d)", int(m))
}

// ParseFixMode converts a string to a FixMode.
func ParseFixMode(s string) (FixMode, error) {
	switch s {
	case "none", "":
		return FixModeNone, nil
	case "shortest":
		return FixModeShortest, nil
	case "longest":
		return FixModeLongest, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFixMode, s)
}

// Set implements pflag.Value.
func (m *FixMode) Set(s string) error {
	v, err := ParseFixMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Type implements pflag.Value.
func (m *FixMode) Type() string {
	return "fix-mode"
}

// SearchOptions configures FindBestOffset.
type SearchOptions struct {
	// MaxOffsetSamples bounds the search symmetrically: candidate
	// offsets are taken from [-MaxOffsetSamples, MaxOffsetSamples).
	// Mandatory, must be positive.
	MaxOffsetSamples int

	// LookaheadSamples bounds the amount of samples used for each
	// comparison. 0 means no bound.
	LookaheadSamples int

	// Method selects the search algorithm. The zero value is MethodMSE.
	Method Method

	// Stride is the decimation step of the correlation scorer:
	// only every Stride-th sample takes part in each coefficient.
	// 0 means the default of 4.
	Stride int

	// Searcher, when non-nil, is used instead of the Method-selected
	// implementation. It allows passing a custom-configured searcher
	// (e.g. a band-limited GCC-PHAT one).
	Searcher Searcher
}

// Validate reports all configuration problems at once.
func (opts SearchOptions) Validate() error {
	var mErr *multierror.Error
	if opts.MaxOffsetSamples <= 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("%w: max offset is %d", ErrDegenerateRange, opts.MaxOffsetSamples))
	}
	if opts.LookaheadSamples < 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("%w: got %d", ErrInvalidLookahead, opts.LookaheadSamples))
	}
	if opts.Stride < 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("align: stride must not be negative: got %d", opts.Stride))
	}
	if opts.Searcher == nil {
		switch opts.Method {
		case MethodMSE, MethodCorrelation, MethodGCCPHAT, MethodFFT:
		default:
			mErr = multierror.Append(mErr, fmt.Errorf("%w: %v", ErrInvalidMethod, opts.Method))
		}
	}
	return mErr.ErrorOrNil()
}

// AlignOptions configures Align.
type AlignOptions struct {
	SearchOptions

	// AlignMode selects crop or pad lag removal. The zero value is
	// AlignModeCrop.
	AlignMode AlignMode

	// FixMode selects the final length reconciliation. The zero value
	// is FixModeNone.
	FixMode FixMode
}

// Validate reports all configuration problems at once.
func (opts AlignOptions) Validate() error {
	var mErr *multierror.Error
	if err := opts.SearchOptions.Validate(); err != nil {
		mErr = multierror.Append(mErr, err)
	}
	switch opts.AlignMode {
	case AlignModeCrop, AlignModePad:
	default:
		mErr = multierror.Append(mErr, fmt.Errorf("%w: %v", ErrInvalidAlignMode, opts.AlignMode))
	}
	switch opts.FixMode {
	case FixModeNone, FixModeShortest, FixModeLongest:
	default:
		mErr = multierror.Append(mErr, fmt.Errorf("%w: %v", ErrInvalidFixMode, opts.FixMode))
	}
	return mErr.ErrorOrNil()
}
