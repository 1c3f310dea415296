package tower

import (
	"github.com/google/uuid"

	"github.com/Lilyrua/hatework/layout"
)

// Snapshot is a deep copy of tower state at one instant, safe to hand
// to presentation consumers. Published after every command and tick.
type Snapshot struct {
	Tick   uint64 `json:"tick"`
	Aspect Aspect `json:"aspect"`

	Tracks []TrackState `json:"tracks"`
	// Platforms maps each road to the code of the parked train, or "".
	Platforms map[Target]string `json:"platforms"`
	Queue     []Target          `json:"queue"`
	Active    *ActiveRoute      `json:"active,omitempty"`
	Trains    []TrainState      `json:"trains"`
	Status    string            `json:"status"`
}

type TrackState struct {
	Name     string `json:"name"`
	Reserved bool   `json:"reserved"`
	Occupied bool   `json:"occupied"`
}

type TrainState struct {
	// ID is the stable identity of the trip; Code is the operator-facing
	// running number. Consumers tracking trains across snapshots should
	// key on ID.
	ID        uuid.UUID    `json:"id"`
	Code      string       `json:"code"`
	Pos       layout.Point `json:"pos"`
	Heading   float64      `json:"heading"`
	Idx       int          `json:"idx"`
	Waypoints int          `json:"waypoints"`
	Speed     float64      `json:"speed"`
	InDwell   bool         `json:"in-dwell"`
	DwellLeft int          `json:"dwell-left"`
	GraceLeft int          `json:"grace-left"`
}

// snapshot builds a Snapshot. mu must be taken!
func (t *Tower) snapshot() Snapshot {
	s := Snapshot{
		Tick:      t.tick,
		Aspect:    t.aspect(),
		Tracks:    make([]TrackState, len(t.y.Tracks)),
		Platforms: map[Target]string{TargetMain: "", TargetLoop: ""},
		Queue:     append([]Target{}, t.queue...),
		Trains:    make([]TrainState, len(t.trains)),
		Status:    t.status,
	}
	for i, tr := range t.y.Tracks {
		s.Tracks[i] = TrackState{Name: tr.Name, Reserved: tr.Reserved, Occupied: tr.Occupied}
	}
	for target, tr := range t.platforms {
		if tr != nil {
			s.Platforms[target] = tr.Code
		}
	}
	if t.active != nil {
		active := *t.active
		s.Active = &active
	}
	for i, tr := range t.trains {
		s.Trains[i] = TrainState{
			ID:        tr.ID,
			Code:      tr.Code,
			Pos:       tr.Pos,
			Heading:   tr.Heading,
			Idx:       tr.Idx,
			Waypoints: len(tr.Path),
			Speed:     tr.Speed,
			InDwell:   tr.InDwell,
			DwellLeft: tr.DwellLeft,
			GraceLeft: tr.GraceLeft,
		}
	}
	return s
}

// Snapshot returns a copy of the current state.
func (t *Tower) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

// mu must be taken!
func (t *Tower) publish() {
	t.snapshotS.Send(t.snapshot())
}
