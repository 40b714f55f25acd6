package common

import (
	"errors"
	"fmt"
)

// Errors shared by the numeric kernels. Callers match them with errors.Is;
// kernels wrap them with the offending sizes or parameters.
var (
	// ErrInsufficientData is returned when the input is shorter than the
	// filter or estimator order requires.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrWindowTooLarge is returned when a Welch segment length does not fit
	// inside the selected analysis range.
	ErrWindowTooLarge = errors.New("window too large for analysis range")

	// ErrEmptySelection is returned by CD operations invoked with no samples.
	ErrEmptySelection = errors.New("no samples selected")

	// ErrCalibrationFit is returned when the transmission to basis weight
	// regression is singular.
	ErrCalibrationFit = errors.New("calibration fit failed")

	ErrInvalidParameter = errors.New("invalid parameter")
	ErrLengthMismatch   = errors.New("length mismatch")
)

// InsufficientData wraps ErrInsufficientData with the observed and required lengths.
func InsufficientData(what string, have, need int) error {
	return fmt.Errorf("%s: have %d samples, need at least %d: %w", what, have, need, ErrInsufficientData)
}

// WindowTooLarge wraps ErrWindowTooLarge with the offending sizes.
func WindowTooLarge(nperseg, available int) error {
	return fmt.Errorf("nperseg %d must be smaller than the %d samples in range, narrow the range or shorten the window: %w",
		nperseg, available, ErrWindowTooLarge)
}

// InvalidParameter wraps ErrInvalidParameter.
func InvalidParameter(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidParameter)
}

// CalibrationFit wraps ErrCalibrationFit.
func CalibrationFit(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrCalibrationFit)
}

// LengthMismatch wraps ErrLengthMismatch.
func LengthMismatch(a, b int) error {
	return fmt.Errorf("lengths %d and %d differ: %w", a, b, ErrLengthMismatch)
}
