package layout

// Hatework returns the Hatework Station plan: a one-way West→East
// station with the main line along y=300, the loop along y=250, and
// diagonal branches joining them. Platform spans sit mid-station on
// both roads.
//
//	        BRANCH_W  L_MAIN            BRANCH_E
//	              ╱ ──────────────────── ╲
//	West ────────┴──────────────────────────┴──────── East
//	  M_ENTRY M_WSTRA M_CENTER M_JOIN M_PATCH M_RJOIN M_EAST
func Hatework() (*Layout, []Route, []PlatformZone) {
	y := &Layout{Tracks: []Track{
		{Name: "M_ENTRY", P1: Point{60, 300}, P2: Point{200, 300}},
		{Name: "M_WSTRA", P1: Point{200, 300}, P2: Point{260, 300}},
		{Name: "M_CENTER", P1: Point{260, 300}, P2: Point{980, 300}},
		{Name: "M_JOIN", P1: Point{980, 300}, P2: Point{1030, 300}},
		{Name: "M_PATCH", P1: Point{1030, 300}, P2: Point{1050, 300}},
		{Name: "M_RJOIN", P1: Point{1050, 300}, P2: Point{1120, 300}},
		{Name: "M_EAST", P1: Point{1120, 300}, P2: Point{1220, 300}},
		{Name: "BRANCH_W", P1: Point{260, 300}, P2: Point{300, 250}},
		{Name: "L_MAIN", P1: Point{300, 250}, P2: Point{1000, 250}},
		{Name: "BRANCH_E", P1: Point{1000, 250}, P2: Point{1050, 300}},
	}}
	routes := []Route{
		{
			Name:    "MAIN",
			Tracks:  []string{"M_ENTRY", "M_WSTRA", "M_CENTER", "M_JOIN", "M_PATCH", "M_RJOIN", "M_EAST"},
			Overlap: []string{},
		},
		{
			Name:     "LOOP",
			Tracks:   []string{"M_ENTRY", "M_WSTRA", "BRANCH_W", "L_MAIN", "BRANCH_E", "M_RJOIN", "M_EAST"},
			Overlap:  []string{},
			LowSpeed: true,
		},
	}
	zones := []PlatformZone{
		{Name: "MAIN", X1: 520, X2: 760, Y: 300, Tol: 8},
		{Name: "LOOP", X1: 520, X2: 760, Y: 250, Tol: 8},
	}
	return y, routes, zones
}
