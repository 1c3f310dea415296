package tower

import "fmt"

// DeniedReason classifies why the tower refused an operator command.
type DeniedReason int

const (
	// LoopBlockedByMain: call in to LOOP while MAIN is occupied. Both
	// roads share the single East exit, so a LOOP arrival behind an
	// occupied MAIN could never be released first.
	LoopBlockedByMain DeniedReason = iota + 1
	// AlreadyOccupied: call in to a platform that already holds a train.
	AlreadyOccupied
	// NoneParked: call out with no train parked on either platform.
	NoneParked
)

func (r DeniedReason) String() string {
	switch r {
	case LoopBlockedByMain:
		return "LoopBlockedByMain"
	case AlreadyOccupied:
		return "AlreadyOccupied"
	case NoneParked:
		return "NoneParked"
	}
	panic(fmt.Sprintf("unknown denied reason %d", int(r)))
}

// DeniedError is the only error commands return: the command was
// refused and nothing changed. It is operator feedback, not a fault.
type DeniedError struct {
	Reason  DeniedReason
	Message string
}

func (e *DeniedError) Error() string {
	return e.Message
}
