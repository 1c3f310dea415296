package tower

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/Lilyrua/hatework/layout"
)

// Train is one trip through the station: a polyline of waypoints
// derived from the reserved route at dispatch time, plus the dwell
// bookkeeping. Created at dispatch, removed at the final waypoint.
type Train struct {
	ID uuid.UUID
	// Code is the operator-facing running number, e.g. TR001.
	Code string

	Path []layout.Point
	// Idx is the index of the last waypoint reached.
	Idx int
	Pos layout.Point
	// Heading is the movement direction in degrees, for presentation.
	Heading float64
	// Speed is the per-tick step length. Zero while dwelling.
	Speed float64

	InDwell   bool
	DwellLeft int
	// GraceLeft suppresses platform-zone detection right after a call
	// out so the departing train isn't re-captured by the same zone.
	GraceLeft int

	// A train may dwell at most once per physical platform per trip.
	HasDwelledMain bool
	HasDwelledLoop bool

	// LowSpeed is the assigned route's speed class.
	LowSpeed bool
}

func (t *Train) String() string {
	b := fmt.Sprintf("%s idx%d/%d pos%s v%g", t.Code, t.Idx, len(t.Path)-1, t.Pos, t.Speed)
	if t.InDwell {
		b += fmt.Sprintf(" dwell%d", t.DwellLeft)
	}
	return b
}

// step advances the train toward its next waypoint by at most Speed
// and reports whether the final waypoint was reached. Within one step
// of the next waypoint the train snaps to it; duplicate (zero-length)
// waypoints are skipped one per tick.
func (t *Train) step() (done bool) {
	if len(t.Path) == 0 || t.Idx >= len(t.Path)-1 {
		return true
	}
	if t.InDwell || t.Speed <= 0 {
		return false
	}
	next := t.Path[t.Idx+1]
	dx := next.X - t.Pos.X
	dy := next.Y - t.Pos.Y
	d := math.Hypot(dx, dy)
	if d < 1e-6 {
		t.Idx++
		return t.Idx >= len(t.Path)-1
	}
	step := math.Min(d, t.Speed)
	t.Pos.X += dx / d * step
	t.Pos.Y += dy / d * step
	t.Heading = math.Atan2(dy, dx) * 180 / math.Pi
	if step >= d-1e-6 {
		t.Idx++
		return t.Idx >= len(t.Path)-1
	}
	return false
}
