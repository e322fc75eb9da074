// Package motion contains the capability interfaces of a motion controller,
// a simulated controller, an HTTP client for remote controllers, and a
// software limit wrapper.
//
// Scans only need a Mover.  The other interfaces are optional and are
// discovered by type assertion, the same way the HTTP adapters in
// generichttp/motion bind their routes.
package motion

import "errors"

var (
	// ErrClamped is returned when a requested position violates software limits
	ErrClamped = errors.New("requested position violates software limits, aborted")

	// ErrUnknownAxis is returned when an axis is not known to the controller
	ErrUnknownAxis = errors.New("unknown axis")

	// ErrDisabled is returned when moving a disabled axis
	ErrDisabled = errors.New("axis is disabled")

	// ErrMoving is returned when an axis is asked to move while already in motion
	ErrMoving = errors.New("axis is already moving")

	// ErrNotReady is returned by the mock controller for injected faults
	ErrNotReady = errors.New("controller not ready")

	// ErrRejected is returned when a remote controller refuses a request
	// with a 4xx status.  Sending the same request again will not help.
	ErrRejected = errors.New("request rejected by controller")
)

// Mover describes an interface with position-related methods for axes
type Mover interface {
	// GetPos gets the current position of an axis
	GetPos(string) (float64, error)

	// MoveAbs moves an axis to an absolute position
	MoveAbs(string, float64) error

	// MoveRel moves an axis a relative amount
	MoveRel(string, float64) error

	// Home homes an axis
	Home(string) error
}

// Enabler describes an interface with enable/disable methods for axes
type Enabler interface {
	// Enable enables an axis
	Enable(string) error

	// Disable disables an axis
	Disable(string) error

	// GetEnabled gets if an axis is enabled
	GetEnabled(string) (bool, error)
}

// Speeder describes an interface with velocity-related methods for axes
type Speeder interface {
	// SetVelocity sets the velocity setpoint on the axis
	SetVelocity(string, float64) error

	// GetVelocity gets the velocity setpoint on the axis
	GetVelocity(string) (float64, error)
}

// Stopper describes an interface with stop-related methods for axes
type Stopper interface {
	// Stop aborts motion of the axis
	Stop(string) error
}

// InPositionQueryer is a type which can query whether an axis is in position
type InPositionQueryer interface {
	// GetInPosition returns True if the axis is in position
	GetInPosition(string) (bool, error)
}

// Controller is a Mover which may implement any of the other interfaces
type Controller interface {
	Mover
}
