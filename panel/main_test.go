package panel

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Lilyrua/hatework/journal"
	"github.com/Lilyrua/hatework/layout"
	"github.com/Lilyrua/hatework/tower"
)

func newTestServer(t *testing.T, j *journal.Journal) (*Server, *tower.Tower) {
	t.Helper()
	y, routes, zones := layout.Hatework()
	var rec tower.Recorder
	if j != nil {
		rec = j
	}
	tw := tower.New(tower.Conf{
		Layout:    y,
		Routes:    routes,
		Platforms: zones,
		Timing:    tower.DefaultTiming(),
		Recorder:  rec,
	})
	return NewServer(tw, j), tw
}

func parkAtMain(t *testing.T, tw *tower.Tower) {
	t.Helper()
	if err := tw.CallIn(tower.TargetMain); err != nil {
		t.Fatalf("call in: %s", err)
	}
	for i := 0; i < 1000; i++ {
		tw.Tick()
		if tw.Snapshot().Platforms[tower.TargetMain] != "" {
			return
		}
	}
	t.Fatal("train never reached MAIN")
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Hatework Station") {
		t.Errorf("index missing title: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "GREEN") {
		t.Errorf("index missing idle aspect")
	}
}

func TestCallInEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/call-in?target=main", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/call-in?target=SIDING", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad target: status %d", w.Code)
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/call-in?target=MAIN", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: status %d", w.Code)
	}
}

func TestCallInDenied(t *testing.T) {
	s, tw := newTestServer(t, nil)
	parkAtMain(t, tw)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/call-in?target=LOOP", nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "MAIN occupied") {
		t.Errorf("denial body: %s", w.Body.String())
	}
}

func TestCallOutEndpoint(t *testing.T) {
	s, tw := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/call-out", nil))
	if w.Code != http.StatusConflict {
		t.Errorf("nothing parked: status %d", w.Code)
	}

	parkAtMain(t, tw)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/call-out", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status %d: %s", w.Code, w.Body.String())
	}
}

func TestEmergencyReleaseEndpoint(t *testing.T) {
	s, tw := newTestServer(t, nil)
	if err := tw.CallIn(tower.TargetMain); err != nil {
		t.Fatalf("call in: %s", err)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/emergency-release", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if tw.Snapshot().Active != nil {
		t.Errorf("route still active after endpoint release")
	}
}

func TestJournalEndpoint(t *testing.T) {
	j, err := journal.Open(":memory:")
	if err != nil {
		t.Fatalf("open journal: %s", err)
	}
	defer j.Close()
	s, tw := newTestServer(t, j)
	if err := tw.CallIn(tower.TargetMain); err != nil {
		t.Fatalf("call in: %s", err)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/journal", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var events []journal.Event
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode: %s", err)
	}
	// call in plus the immediate dispatch
	if len(events) != 2 {
		t.Errorf("expected 2 events, got %d: %+v", len(events), events)
	}
}

func TestJournalEndpointWithoutJournal(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/journal", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty list, got %s", w.Body.String())
	}
}
