// Package layout models the station's track plan: named track segments
// with plan-view geometry, platform zones, and the reservation flags the
// tower flips on them.
package layout

import (
	"fmt"
	"math"

	"golang.org/x/exp/slices"
)

// Point is a plan-view coordinate. Units are arbitrary drawing units;
// only ratios matter to the movement protocol.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Dist returns the Euclidean distance to q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Track is a single track segment between two endpoints.
// Reserved and Occupied are bookkeeping for the tower and the
// presentation layer; only the tower mutates them.
type Track struct {
	// Name is a human-readable identifier, unique within a Layout.
	Name string `json:"name"`
	P1   Point  `json:"p1"`
	P2   Point  `json:"p2"`

	Reserved bool `json:"reserved"`
	Occupied bool `json:"occupied"`
}

func (t Track) String() string {
	return fmt.Sprintf("%s %s→%s", t.Name, t.P1, t.P2)
}

// Layout is the set of track segments making up the station.
// Tracks are never added or removed after construction.
type Layout struct {
	Tracks []Track
}

// Lookup returns the index of the track with the given name, or -1.
func (y *Layout) Lookup(name string) int {
	return slices.IndexFunc(y.Tracks, func(t Track) bool { return t.Name == name })
}

// MustLookupIndex is Lookup but panics if the track doesn't exist.
// This is for debugging/testing.
func (y *Layout) MustLookupIndex(name string) int {
	i := y.Lookup(name)
	if i == -1 {
		panic(fmt.Sprintf("found nothing when looking up for %s", name))
	}
	return i
}

// SetReserved sets the reserved flag on the named track.
func (y *Layout) SetReserved(name string, reserved bool) {
	y.Tracks[y.MustLookupIndex(name)].Reserved = reserved
}

// SetOccupied sets the occupied flag on the named track.
func (y *Layout) SetOccupied(name string, occupied bool) {
	y.Tracks[y.MustLookupIndex(name)].Occupied = occupied
}

// ClearAll clears reserved and occupied on every track.
func (y *Layout) ClearAll() {
	for i := range y.Tracks {
		y.Tracks[i].Reserved = false
		y.Tracks[i].Occupied = false
	}
}

// PlatformZone is the longitudinal span of a platform plus a lateral
// tolerance band. A train whose position falls inside the zone is
// considered alongside the platform.
type PlatformZone struct {
	Name string
	// X1 and X2 bound the platform along the running direction.
	X1, X2 float64
	// Y is the centerline of the platform track.
	Y float64
	// Tol is the lateral tolerance band.
	Tol float64
}

// Contains reports whether p is alongside this platform.
func (z PlatformZone) Contains(p Point) bool {
	return math.Abs(p.Y-z.Y) < z.Tol && z.X1 <= p.X && p.X <= z.X2
}
