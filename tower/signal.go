package tower

import "fmt"

// Aspect is the state of the single West approach signal. It is a
// derived view over tower state, never stored.
type Aspect int

const (
	// AspectRed means stop: the MAIN platform is occupied. This takes
	// precedence over everything else.
	AspectRed Aspect = iota
	// AspectYellow means a route is set and still inside its approach
	// window (route checking/setting in progress).
	AspectYellow
	// AspectGreen means the approach is clear.
	AspectGreen
)

func (a Aspect) String() string {
	switch a {
	case AspectRed:
		return "RED"
	case AspectYellow:
		return "YELLOW"
	case AspectGreen:
		return "GREEN"
	}
	panic(fmt.Sprintf("unknown aspect %d", int(a)))
}

func (a Aspect) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Aspect) UnmarshalText(data []byte) error {
	switch string(data) {
	case "RED":
		*a = AspectRed
	case "YELLOW":
		*a = AspectYellow
	case "GREEN":
		*a = AspectGreen
	default:
		return fmt.Errorf("unknown aspect %q", data)
	}
	return nil
}

// aspect derives the signal aspect. mu must be taken!
func (t *Tower) aspect() Aspect {
	if t.platforms[TargetMain] != nil {
		return AspectRed
	}
	if t.active != nil && t.now().Before(t.active.ApproachDeadline) {
		return AspectYellow
	}
	return AspectGreen
}

// Aspect returns the current aspect of the approach signal.
func (t *Tower) Aspect() Aspect {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.aspect()
}
