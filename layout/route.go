package layout

import "fmt"

// Route is a predefined West→East path through the station: an ordered
// list of track names plus an overlap set reserved for flank protection
// but not traveled. Routes are immutable for the process lifetime.
type Route struct {
	// Name is MAIN or LOOP.
	Name string `json:"name"`
	// Tracks is the ordered reservation set; it also defines the
	// train's polyline.
	Tracks []string `json:"tracks"`
	// Overlap is reserved together with Tracks but never traveled.
	// Empty in the current plan; the dispatch code must still reserve
	// and release it.
	Overlap []string `json:"overlap"`
	// LowSpeed marks the diverging (reduced-speed) route.
	LowSpeed bool `json:"low-speed"`
}

func (r Route) String() string {
	return fmt.Sprintf("route %s (%d tracks)", r.Name, len(r.Tracks))
}

// Waypoints concatenates both endpoints of every track in route order.
// Consecutive tracks share an endpoint, so the polyline contains
// zero-length hops; the movement protocol snaps through those in a
// single tick.
func (y *Layout) Waypoints(r Route) []Point {
	pts := make([]Point, 0, 2*len(r.Tracks))
	for _, name := range r.Tracks {
		t := y.Tracks[y.MustLookupIndex(name)]
		pts = append(pts, t.P1, t.P2)
	}
	return pts
}
