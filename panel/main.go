// Package panel is the presentation boundary of the interlocking: an
// HTTP server with an SSE snapshot stream, command endpoints for the
// operator, an HTML status page, and the recent journal. It only
// consumes snapshots and issues the documented commands; it has no
// back-channel into the interlocking state.
package panel

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/r3labs/sse/v2"
	"go.uber.org/zap"

	"github.com/Lilyrua/hatework/journal"
	"github.com/Lilyrua/hatework/tower"
)

//go:embed index.html
var templates embed.FS

type Server struct {
	t *tower.Tower
	// j may be nil; /journal then returns an empty list.
	j  *journal.Journal
	s  *sse.Server
	sm *http.ServeMux
	tp *template.Template
}

func NewServer(t *tower.Tower, j *journal.Journal) *Server {
	s := &Server{
		t:  t,
		j:  j,
		s:  sse.New(),
		sm: http.NewServeMux(),
	}
	s.tp = template.Must(template.New("index").Funcs(sprig.FuncMap()).ParseFS(templates, "*.html"))
	s.setup()
	go s.forward()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.sm
}

func (s *Server) setup() {
	s.sm.HandleFunc("/", s.handleIndex)
	s.sm.HandleFunc("/events", s.s.ServeHTTP)
	s.sm.HandleFunc("/call-in", s.handleCallIn)
	s.sm.HandleFunc("/call-out", s.handleCallOut)
	s.sm.HandleFunc("/emergency-release", s.handleEmergencyRelease)
	s.sm.HandleFunc("/journal", s.handleJournal)
}

// forward republishes every tower snapshot on the SSE stream.
func (s *Server) forward() {
	s.s.CreateStream("snapshot")
	defer s.s.RemoveStream("snapshot")
	ch := make(chan tower.Snapshot)
	s.t.SnapshotMux.Subscribe("panel", ch)
	defer s.t.SnapshotMux.Unsubscribe(ch)
	for snap := range ch {
		data, err := json.Marshal(snap)
		if err != nil {
			zap.S().Errorf("panel: marshal json: %s", err)
			continue
		}
		s.s.TryPublish("snapshot", &sse.Event{
			Data: data,
		})
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	var events []journal.Event
	if s.j != nil {
		var err error
		events, err = s.j.Recent(20)
		if err != nil {
			zap.S().Errorf("panel: journal: %s", err)
		}
	}
	err := s.tp.ExecuteTemplate(w, "index", map[string]interface{}{
		"snap":   s.t.Snapshot(),
		"events": events,
		"now":    time.Now().Format("15:04:05"),
	})
	if err != nil {
		zap.S().Errorf("panel: render index: %s", err)
	}
}

func (s *Server) handleCallIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	target := tower.Target(strings.ToUpper(r.URL.Query().Get("target")))
	if target != tower.TargetMain && target != tower.TargetLoop {
		http.Error(w, "target must be MAIN or LOOP", http.StatusBadRequest)
		return
	}
	s.command(w, s.t.CallIn(target))
}

func (s *Server) handleCallOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, err := s.t.CallOut()
	s.command(w, err)
}

func (s *Server) handleEmergencyRelease(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.t.EmergencyRelease()
	s.command(w, nil)
}

// command reports a command result: 200 with the status line, or 409
// with the denial message.
func (s *Server) command(w http.ResponseWriter, err error) {
	var denied *tower.DeniedError
	if errors.As(err, &denied) {
		http.Error(w, denied.Message, http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	fmt.Fprintln(w, s.t.Status())
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	events := []journal.Event{}
	if s.j != nil {
		var err error
		events, err = s.j.Recent(100)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(events); err != nil {
		zap.S().Errorf("panel: encode journal: %s", err)
	}
}
