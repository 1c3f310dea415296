// Package notify provides a small fan-out multiplexer used to publish
// tower snapshots to any number of consumers (SSE, console UI, tests).
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

const (
	multiplexerTimeout  = 200 * time.Millisecond
	multiplexerQueueLen = 64
)

type subscriber[E any] struct {
	ch      chan E
	comment string
}

// MultiplexerSender is the write side of a Multiplexer. Only the owner
// of the state being published should hold it.
type MultiplexerSender[E any] struct {
	m  *Multiplexer[E]
	ch chan E
}

// Send queues e for delivery. It never blocks the caller; events are
// dropped when the queue is full. A single drain goroutine delivers
// events, so subscribers see them in Send order.
func (ms *MultiplexerSender[E]) Send(e E) {
	select {
	case ms.ch <- e:
	default:
		zap.S().Warnf("multiplexer %s: queue full, dropping event", ms.m.comment)
	}
}

func NewMultiplexerSender[E any](comment string) (*MultiplexerSender[E], *Multiplexer[E]) {
	m := &Multiplexer[E]{
		comment: comment,
	}
	ms := &MultiplexerSender[E]{m: m, ch: make(chan E, multiplexerQueueLen)}
	go func() {
		for e := range ms.ch {
			m.send(e)
		}
	}()
	return ms, m
}

type Multiplexer[E any] struct {
	comment         string
	subscribersLock sync.Mutex
	subscribers     []subscriber[E]
}

// subscribersLock must be taken!
func (m *Multiplexer[E]) cleanup() {
	last := len(m.subscribers) - 1
	if m.subscribers[last].ch == nil {
		return
	}
	for i, sub := range m.subscribers {
		if sub.ch == nil {
			m.subscribers[i], m.subscribers[last] = m.subscribers[last], subscriber[E]{}
			return
		}
	}
}

func (m *Multiplexer[E]) Subscribe(comment string, c chan E) {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	sub := subscriber[E]{
		ch:      c,
		comment: comment,
	}
	last := len(m.subscribers) - 1
	if last >= 0 && m.subscribers[last].ch == nil {
		m.subscribers[last] = sub
		m.cleanup()
	} else {
		m.subscribers = append(m.subscribers, sub)
	}
}

func (m *Multiplexer[E]) Unsubscribe(c chan E) {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	i := slices.IndexFunc(m.subscribers, func(sub subscriber[E]) bool { return sub.ch == c })
	if i == -1 {
		panic("already unsubscribed")
	}
	m.subscribers[i] = subscriber[E]{}
	m.cleanup()
}

// send delivers e to every subscriber. A subscriber that doesn't
// receive within multiplexerTimeout misses that event; the tower keeps
// ticking regardless of slow consumers.
func (m *Multiplexer[E]) send(e E) {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	for _, sub := range m.subscribers {
		if sub.ch == nil {
			continue
		}
		select {
		case sub.ch <- e:
		case <-time.After(multiplexerTimeout):
			zap.S().Warnf("multiplexer %s: subscriber %s timed out", m.comment, sub.comment)
		}
	}
}
