package tower

import (
	"math"
	"testing"

	"github.com/Lilyrua/hatework/layout"
)

func TestStepSnapsToWaypoint(t *testing.T) {
	tr := &Train{
		Path:  []layout.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 10}},
		Pos:   layout.Point{X: 0, Y: 0},
		Speed: 3,
	}
	if tr.step() {
		t.Fatal("finished on first step")
	}
	if tr.Pos.X != 3 || tr.Idx != 0 {
		t.Errorf("after step: %s", tr)
	}
	// within one step of the waypoint: snap, advance idx
	if tr.step() {
		t.Fatal("finished early")
	}
	if tr.Pos.X != 5 || tr.Idx != 1 {
		t.Errorf("did not snap: %s", tr)
	}
	if tr.Heading != 0 {
		t.Errorf("heading east should be 0, got %g", tr.Heading)
	}
}

func TestStepFinalWaypoint(t *testing.T) {
	tr := &Train{
		Path:  []layout.Point{{X: 0, Y: 0}, {X: 2, Y: 0}},
		Pos:   layout.Point{X: 0, Y: 0},
		Speed: 3,
	}
	if !tr.step() {
		t.Fatal("expected done at final waypoint")
	}
	// done stays done
	if !tr.step() {
		t.Fatal("expected done to be sticky")
	}
}

func TestStepZeroLengthHop(t *testing.T) {
	// waypoint lists carry duplicate points where adjacent tracks meet
	tr := &Train{
		Path:  []layout.Point{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 10, Y: 0}},
		Pos:   layout.Point{X: 0, Y: 0},
		Speed: 3,
	}
	if tr.step() {
		t.Fatal("finished on zero-length hop")
	}
	if tr.Idx != 1 || tr.Pos.X != 0 {
		t.Errorf("expected idx bump without movement, got %s", tr)
	}
}

func TestStepDwellHolds(t *testing.T) {
	tr := &Train{
		Path:    []layout.Point{{X: 0, Y: 0}, {X: 10, Y: 0}},
		Pos:     layout.Point{X: 4, Y: 0},
		InDwell: true,
	}
	if tr.step() {
		t.Fatal("dwelling train finished")
	}
	if tr.Pos.X != 4 {
		t.Errorf("dwelling train moved: %s", tr)
	}
}

func TestStepHeading(t *testing.T) {
	tr := &Train{
		Path:  []layout.Point{{X: 260, Y: 300}, {X: 300, Y: 250}},
		Pos:   layout.Point{X: 260, Y: 300},
		Speed: 2.6,
	}
	tr.step()
	expected := math.Atan2(-50, 40) * 180 / math.Pi
	if math.Abs(tr.Heading-expected) > 1e-9 {
		t.Errorf("heading = %g, expected %g", tr.Heading, expected)
	}
}
