// Package ui is a terminal operator console for the tower. It renders
// snapshots and translates key presses into the documented commands:
//
//	m  call in MAIN
//	l  call in LOOP
//	o  call out (MAIN first)
//	e  emergency release
//	q  quit
package ui

import (
	"fmt"
	"strings"

	"github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/Lilyrua/hatework/tower"
)

type console struct {
	t       *tower.Tower
	signal  *widgets.Paragraph
	diagram *widgets.Paragraph
	trains  *widgets.Paragraph
	status  *widgets.Paragraph
}

// Main runs the console until q or Ctrl-C. The caller keeps ticking
// the tower; the console only subscribes and issues commands.
func Main(t *tower.Tower) error {
	err := termui.Init()
	if err != nil {
		return fmt.Errorf("termui init: %s", err)
	}
	defer termui.Close()
	c := &console{
		t:       t,
		signal:  widgets.NewParagraph(),
		diagram: widgets.NewParagraph(),
		trains:  widgets.NewParagraph(),
		status:  widgets.NewParagraph(),
	}
	c.signal.Title = "signal"
	c.signal.SetRect(0, 0, 24, 3)
	c.diagram.Title = "tracks"
	c.diagram.SetRect(0, 3, 48, 17)
	c.trains.Title = "trains"
	c.trains.SetRect(48, 0, 96, 17)
	c.status.Title = "m/l call in, o call out, e release, q quit"
	c.status.SetRect(0, 17, 96, 20)

	ch := make(chan tower.Snapshot, 10)
	t.SnapshotMux.Subscribe("ui", ch)
	defer t.SnapshotMux.Unsubscribe(ch)
	c.render(t.Snapshot())

	uiEvents := termui.PollEvents()
	for {
		select {
		case snap := <-ch:
			c.render(snap)
		case e := <-uiEvents:
			switch e.ID {
			case "q", "<C-c>":
				return nil
			case "m":
				t.CallIn(tower.TargetMain) // denials show up in status
			case "l":
				t.CallIn(tower.TargetLoop)
			case "o":
				t.CallOut()
			case "e":
				t.EmergencyRelease()
			}
		}
	}
}

func (c *console) render(snap tower.Snapshot) {
	c.signal.Text = snap.Aspect.String()
	switch snap.Aspect {
	case tower.AspectRed:
		c.signal.TextStyle.Fg = termui.ColorRed
	case tower.AspectYellow:
		c.signal.TextStyle.Fg = termui.ColorYellow
	case tower.AspectGreen:
		c.signal.TextStyle.Fg = termui.ColorGreen
	}

	b := new(strings.Builder)
	fmt.Fprint(b, "-  free\n")
	fmt.Fprint(b, "=  reserved\n")
	fmt.Fprint(b, "#  occupied\n")
	for _, tr := range snap.Tracks {
		symbol := byte('-')
		if tr.Reserved {
			symbol = '='
		}
		if tr.Occupied {
			symbol = '#'
		}
		fmt.Fprintf(b, "%c %s\n", symbol, tr.Name)
	}
	c.diagram.Text = b.String()

	b = new(strings.Builder)
	fmt.Fprintf(b, "MAIN [%s]\n", orFree(snap.Platforms[tower.TargetMain]))
	fmt.Fprintf(b, "LOOP [%s]\n", orFree(snap.Platforms[tower.TargetLoop]))
	if snap.Active != nil {
		fmt.Fprintf(b, "route %s\n", snap.Active.Route)
	}
	if len(snap.Queue) > 0 {
		fmt.Fprintf(b, "queue %v\n", snap.Queue)
	}
	for _, tr := range snap.Trains {
		fmt.Fprintf(b, "%s (%.0f, %.0f) %d/%d v%g", tr.Code, tr.Pos.X, tr.Pos.Y, tr.Idx, tr.Waypoints-1, tr.Speed)
		if tr.InDwell {
			fmt.Fprintf(b, " dwell%d", tr.DwellLeft)
		}
		fmt.Fprint(b, "\n")
	}
	c.trains.Text = b.String()

	c.status.Text = snap.Status
	termui.Render(c.signal, c.diagram, c.trains, c.status)
}

func orFree(code string) string {
	if code == "" {
		return "     "
	}
	return code
}
