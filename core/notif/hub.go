package notif

import (
	"fmt"
	"sync"

	"github.com/bahati/elimu/core"
)

type (
	// Publisher is the write-path's view of the event hub.
	Publisher interface {
		Publish(e Event)
	}

	// Listener reacts to one published event. Listener invocations for
	// distinct events may run concurrently; a listener must not assume any
	// ordering across events.
	Listener interface {
		Handle(e Event)
	}
)

// Hub fans published events out to registered listeners. Each listener runs
// on its own goroutine so a failing or slow listener never blocks the write
// that fired the event.
type Hub struct {
	mu        sync.RWMutex
	listeners []Listener
	wg        sync.WaitGroup
	logger    core.Logger
}

var _ Publisher = (*Hub)(nil)

func NewHub(logger core.Logger) *Hub {
	return &Hub{logger: logger}
}

func (h *Hub) Subscribe(listeners ...Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, listeners...)
}

func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	listeners := make([]Listener, len(h.listeners))
	copy(listeners, h.listeners)
	h.mu.RUnlock()

	for _, l := range listeners {
		l := l
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					h.logger.Error(fmt.Sprintf("notif: listener panic on %s: %v", e.Name(), r))
				}
			}()
			l.Handle(e)
		}()
	}
}

// Wait blocks until all in-flight listener invocations return.
func (h *Hub) Wait() {
	h.wg.Wait()
}
