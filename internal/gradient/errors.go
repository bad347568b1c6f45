package gradient

import "errors"

var (
	// ErrDimensionMismatch reports region counts that do not line up
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrDimensionality reports a component count the data cannot provide
	ErrDimensionality = errors.New("dimensionality error")
	// ErrInsufficientData reports too few timepoints for a statistic
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUnsupportedMethod reports an unknown embedding method name
	ErrUnsupportedMethod = errors.New("unsupported embedding method")
)
