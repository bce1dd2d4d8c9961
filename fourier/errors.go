package fourier

import "errors"

// Error kinds surfaced by the configuration setters and the engine.
// Expression syntax and evaluation failures are reported with
// expr.ErrParse and expr.ErrEval respectively.
var (
	// ErrKey reports a reserved, duplicate, invalid, or unknown key.
	ErrKey = errors.New("key error")
	// ErrRange reports a value outside its legal range. Setters clamp,
	// so this surfaces from persistence and from non-finite inputs.
	ErrRange = errors.New("range error")
	// ErrDimension reports a spectrum or FFT-data size inconsistent with
	// NFFT. Mask size mismatches are returned as binmask.ErrIncompatible
	// and are not wrapped in ErrDimension.
	ErrDimension = errors.New("dimension error")
	// ErrBadSpectrum reports a negative or non-finite magnitude.
	ErrBadSpectrum = errors.New("bad spectrum")
	// ErrLoad reports malformed persistence input.
	ErrLoad = errors.New("load error")
	// ErrInternal reports a violated algorithm invariant.
	ErrInternal = errors.New("internal error")
)
