package notify

import (
	"testing"
	"time"
)

func TestSendFanOut(t *testing.T) {
	s, m := NewMultiplexerSender[int]("test")
	a := make(chan int, 1)
	b := make(chan int, 1)
	m.Subscribe("a", a)
	m.Subscribe("b", b)
	s.Send(42)
	for name, ch := range map[string]chan int{"a": a, "b": b} {
		select {
		case got := <-ch:
			if got != 42 {
				t.Errorf("%s: got %d", name, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s: no event", name)
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	s, m := NewMultiplexerSender[int]("test")
	a := make(chan int, 1)
	b := make(chan int, 1)
	m.Subscribe("a", a)
	m.Subscribe("b", b)
	m.Unsubscribe(a)
	s.Send(7)
	select {
	case got := <-b:
		if got != 7 {
			t.Errorf("b: got %d", got)
		}
	case <-time.After(time.Second):
		t.Fatal("b: no event")
	}
	select {
	case got := <-a:
		t.Errorf("a: got %d after unsubscribe", got)
	default:
	}
}

func TestSendOrdered(t *testing.T) {
	s, m := NewMultiplexerSender[int]("test")
	ch := make(chan int, 3)
	m.Subscribe("a", ch)
	s.Send(1)
	s.Send(2)
	s.Send(3)
	for want := 1; want <= 3; want++ {
		select {
		case got := <-ch:
			if got != want {
				t.Fatalf("got %d, want %d", got, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("no event %d", want)
		}
	}
}

func TestResubscribeReusesSlot(t *testing.T) {
	s, m := NewMultiplexerSender[int]("test")
	a := make(chan int, 1)
	m.Subscribe("a", a)
	m.Unsubscribe(a)
	b := make(chan int, 1)
	m.Subscribe("b", b)
	s.Send(1)
	select {
	case <-b:
	case <-time.After(time.Second):
		t.Fatal("b: no event")
	}
}
