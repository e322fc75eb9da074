package scan

import "errors"

var (
	// ErrInvalidType is returned when a scan type is not registered
	ErrInvalidType = errors.New("invalid scan type")

	// ErrInvalidSubtype is returned when a subtype is not allowed for the scan type
	ErrInvalidSubtype = errors.New("scan subtype not allowed for scan type")

	// ErrAdaptiveUnavailable is returned when an Adaptive scan is requested
	// but no learner of the needed dimension is registered
	ErrAdaptiveUnavailable = errors.New("no adaptive learner available")

	// ErrAxesMismatch is returned when the bound or position arrays do not
	// have the shape the scan type needs
	ErrAxesMismatch = errors.New("axis arrays have mismatched or invalid lengths")

	// ErrNoPositions is returned when a tabular scan is given too few positions
	ErrNoPositions = errors.New("tabular scan has too few positions")

	// ErrSpiralAxisMismatch is returned when the two axes of a spiral scan
	// would have a different number of rings
	ErrSpiralAxisMismatch = errors.New("spiral scans need the same number of rings on both axes, change rmax or rstep")

	// ErrDegenerateAxis is returned by LinspaceStep for a zero step, a step
	// whose sign is opposite to stop-start, or start == stop
	ErrDegenerateAxis = errors.New("degenerate axis")
)
