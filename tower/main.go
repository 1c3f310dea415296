// Package tower implements the Hatework Station interlocking: route
// reservation, the call queue, platform occupancy, signal aspect
// derivation, and the tick loop that moves trains.
//
// All state is owned by one Tower and mutated behind one mutex, so
// operator commands and ticks are serialized; there is at most one
// active route reservation at any time.
package tower

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/Lilyrua/hatework/layout"
	"github.com/Lilyrua/hatework/notify"
)

// Target is a platform road an operator can call a train into.
type Target string

const (
	TargetMain Target = "MAIN"
	TargetLoop Target = "LOOP"
)

// Timing is the injectable set of interlocking tunables.
type Timing struct {
	// ApproachTime is the route checking/setting window between
	// reservation and the signal clearing to GREEN.
	ApproachTime time.Duration
	// DwellTicks is the platform dwell countdown armed on arrival.
	DwellTicks int
	// GraceTicks suppresses platform re-detection after a call out.
	GraceTicks int
	// MainSpeed and LoopSpeed are per-tick step lengths for the two
	// speed classes.
	MainSpeed float64
	LoopSpeed float64
	// TickInterval is the cadence of Run.
	TickInterval time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		ApproachTime: 2 * time.Second,
		DwellTicks:   90,
		GraceTicks:   30,
		MainSpeed:    3.4,
		LoopSpeed:    2.6,
		TickInterval: 33 * time.Millisecond,
	}
}

// ActiveRoute is the single outstanding reservation.
type ActiveRoute struct {
	Route            string
	ReservedAt       time.Time
	ApproachDeadline time.Time
}

// Recorder receives state-transition events for the operations
// journal. Implementations must not call back into the Tower.
type Recorder interface {
	Record(kind, train, text string)
}

// Record kinds passed to a Recorder.
const (
	RecordCallIn           = "call-in"
	RecordCallOut          = "call-out"
	RecordDenied           = "denied"
	RecordDispatch         = "dispatch"
	RecordDwell            = "dwell"
	RecordArrived          = "arrived"
	RecordEmergencyRelease = "emergency-release"
)

type Conf struct {
	Layout    *layout.Layout
	Routes    []layout.Route
	Platforms []layout.PlatformZone
	Timing    Timing
	// Recorder is optional.
	Recorder Recorder
}

type Tower struct {
	mu   sync.Mutex
	conf Timing
	rec  Recorder

	y      *layout.Layout
	routes map[Target]layout.Route
	zones  map[Target]layout.PlatformZone

	queue        []Target
	active       *ActiveRoute
	platforms    map[Target]*Train
	trains       []*Train
	trainCounter int
	tick         uint64
	status       string

	now func() time.Time

	SnapshotMux *notify.Multiplexer[Snapshot]
	snapshotS   *notify.MultiplexerSender[Snapshot]
}

func New(conf Conf) *Tower {
	t := &Tower{
		conf:         conf.Timing,
		rec:          conf.Recorder,
		y:            conf.Layout,
		routes:       map[Target]layout.Route{},
		zones:        map[Target]layout.PlatformZone{},
		platforms:    map[Target]*Train{TargetMain: nil, TargetLoop: nil},
		trainCounter: 1,
		now:          time.Now,
	}
	for _, r := range conf.Routes {
		t.routes[Target(r.Name)] = r
	}
	for _, z := range conf.Platforms {
		t.zones[Target(z.Name)] = z
	}
	for _, target := range []Target{TargetMain, TargetLoop} {
		if _, ok := t.routes[target]; !ok {
			panic(fmt.Sprintf("no route for %s", target))
		}
		if _, ok := t.zones[target]; !ok {
			panic(fmt.Sprintf("no platform zone for %s", target))
		}
	}
	t.snapshotS, t.SnapshotMux = notify.NewMultiplexerSender[Snapshot]("tower")
	t.status = "ready"
	return t
}

// CallIn requests a train into the given platform road. The call is
// queued FIFO and dispatched as soon as no other route is active.
// Duplicate queued targets are accepted; the queue is not deduplicated.
func (t *Tower) CallIn(target Target) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.routes[target]; !ok {
		panic(fmt.Sprintf("unknown target %s", target))
	}
	if target == TargetLoop && t.platforms[TargetMain] != nil {
		return t.deny(&DeniedError{LoopBlockedByMain, "cannot park LOOP while MAIN occupied"})
	}
	if t.platforms[target] != nil {
		return t.deny(&DeniedError{AlreadyOccupied, fmt.Sprintf("%s already occupied", target)})
	}
	t.queue = append(t.queue, target)
	t.setStatus(RecordCallIn, "", fmt.Sprintf("call in %s: queued", target))
	if t.active == nil {
		t.tryDispatch()
	}
	t.publish()
	return nil
}

// CallOut releases a parked train. MAIN always releases before LOOP:
// both roads converge on one East exit, and MAIN traffic must clear
// the conflict point first.
func (t *Tower) CallOut() (Target, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tr := t.platforms[TargetMain]; tr != nil {
		t.release(tr, TargetMain)
		return TargetMain, nil
	}
	if tr := t.platforms[TargetLoop]; tr != nil {
		t.release(tr, TargetLoop)
		return TargetLoop, nil
	}
	return "", t.deny(&DeniedError{NoneParked, "no train parked"})
}

// release resumes a parked train at its assigned speed class.
// mu must be taken!
func (t *Tower) release(tr *Train, target Target) {
	tr.InDwell = false
	tr.DwellLeft = 0
	tr.Speed = t.conf.MainSpeed
	if tr.LowSpeed {
		tr.Speed = t.conf.LoopSpeed
	}
	tr.GraceLeft = t.conf.GraceTicks
	t.platforms[target] = nil
	t.setStatus(RecordCallOut, tr.Code, fmt.Sprintf("%s: call out %s", tr.Code, target))
	t.publish()
}

// EmergencyRelease unconditionally clears every reservation and
// occupancy flag and the active route. Platform slots and trains are
// untouched: trains keep moving or dwelling, only the interlocking
// accounting is reset. This is an operator escape hatch and bypasses
// normal safety bookkeeping; it never fails.
func (t *Tower) EmergencyRelease() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.y.ClearAll()
	t.active = nil
	t.setStatus(RecordEmergencyRelease, "", "route released")
	t.publish()
}

// tryDispatch pops the queue head, reserves its route, and spawns a
// train. mu must be taken!
func (t *Tower) tryDispatch() {
	if t.active != nil || len(t.queue) == 0 {
		return
	}
	target := t.queue[0]
	t.queue = t.queue[1:]
	r := t.routes[target]
	for _, name := range r.Tracks {
		t.y.SetReserved(name, true)
	}
	for _, name := range r.Overlap {
		t.y.SetReserved(name, true)
	}
	now := t.now()
	t.active = &ActiveRoute{
		Route:            r.Name,
		ReservedAt:       now,
		ApproachDeadline: now.Add(t.conf.ApproachTime),
	}
	speed := t.conf.MainSpeed
	if r.LowSpeed {
		speed = t.conf.LoopSpeed
	}
	path := t.y.Waypoints(r)
	tr := &Train{
		ID:       uuid.New(),
		Code:     fmt.Sprintf("TR%03d", t.trainCounter),
		Path:     path,
		Pos:      path[0],
		Speed:    speed,
		LowSpeed: r.LowSpeed,
	}
	t.trainCounter++
	t.trains = append(t.trains, tr)
	t.setStatus(RecordDispatch, tr.Code, fmt.Sprintf("%s departed on %s", tr.Code, r.Name))
}

// Tick advances the simulation one step: platform detection, dwell
// countdowns, train movement, occupancy flags, and route completion.
func (t *Tower) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick++
	// Coarse track-circuit model: the whole active route reads
	// occupied while any train is en route.
	if t.active != nil && len(t.trains) > 0 {
		for _, name := range t.routes[Target(t.active.Route)].Tracks {
			t.y.SetOccupied(name, true)
		}
	}
	var finished []*Train
	for _, tr := range t.trains {
		t.checkPlatform(tr)
		if tr.step() {
			finished = append(finished, tr)
		}
	}
	for _, tr := range finished {
		t.onRouteComplete(tr)
	}
	t.publish()
}

// onRouteComplete removes an arrived train, releases the whole
// reservation, and dispatches the next queued call. mu must be taken!
func (t *Tower) onRouteComplete(tr *Train) {
	i := slices.IndexFunc(t.trains, func(o *Train) bool { return o.ID == tr.ID })
	if i == -1 {
		panic(fmt.Sprintf("train %s not found", tr.ID))
	}
	t.trains = slices.Delete(t.trains, i, i+1)
	t.y.ClearAll()
	t.active = nil
	t.setStatus(RecordArrived, tr.Code, fmt.Sprintf("%s: arrived", tr.Code))
	t.tryDispatch()
}

// checkPlatform runs platform-zone detection and the dwell countdown
// for one train. mu must be taken!
func (t *Tower) checkPlatform(tr *Train) {
	if tr.GraceLeft > 0 {
		tr.GraceLeft--
		return
	}
	// MAIN admits whenever its own slot is free; LOOP only when the
	// whole station front is clear.
	if t.zones[TargetMain].Contains(tr.Pos) {
		if t.platforms[TargetMain] == nil && !tr.InDwell && !tr.HasDwelledMain {
			tr.HasDwelledMain = true
			t.admit(tr, TargetMain)
		}
	}
	if t.zones[TargetLoop].Contains(tr.Pos) {
		if t.platforms[TargetMain] == nil && t.platforms[TargetLoop] == nil &&
			!tr.InDwell && !tr.HasDwelledLoop {
			tr.HasDwelledLoop = true
			t.admit(tr, TargetLoop)
		}
	}
	if tr.InDwell {
		tr.DwellLeft--
		if tr.DwellLeft <= 0 {
			// Dwell expired; stay parked until an explicit call out.
			tr.DwellLeft = 0
			tr.Speed = 0
		}
	}
}

// admit parks a train at a platform. mu must be taken!
func (t *Tower) admit(tr *Train, target Target) {
	tr.InDwell = true
	tr.DwellLeft = t.conf.DwellTicks
	tr.Speed = 0
	t.platforms[target] = tr
	t.setStatus(RecordDwell, tr.Code, fmt.Sprintf("%s: platform %s dwell", tr.Code, target))
}

// Run drives Tick at the configured cadence until ctx is done.
func (t *Tower) Run(ctx context.Context) {
	ticker := time.NewTicker(t.conf.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}

// Status returns the free-text message for the last state transition.
func (t *Tower) Status() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// deny records a refused command and hands the error back to the
// caller. mu must be taken!
func (t *Tower) deny(err *DeniedError) error {
	t.setStatus(RecordDenied, "", err.Message)
	t.publish()
	return err
}

// mu must be taken!
func (t *Tower) setStatus(kind, train, msg string) {
	t.status = msg
	zap.S().Infof("tower: %s", msg)
	if t.rec != nil {
		t.rec.Record(kind, train, msg)
	}
}
