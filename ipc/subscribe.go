package ipc

import (
	"encoding/json"
	"fmt"
	"net"
)

// Event is one asynchronous message from the window manager.
type Event struct {
	Type    EventType
	Payload json.RawMessage
}

// Change decodes the change field that workspace, output and mode
// events carry.
func (e Event) Change() (string, error) {
	var v struct {
		Change string `json:"change"`
	}
	err := json.Unmarshal(e.Payload, &v)
	return v.Change, err
}

// BarConfig decodes a barconfig_update payload.
func (e Event) BarConfig() (*BarConfig, error) {
	var bc BarConfig
	if err := json.Unmarshal(e.Payload, &bc); err != nil {
		return nil, fmt.Errorf("barconfig event: %v", err)
	}
	return &bc, nil
}

// Subscription is an event-only connection. It lives on its own socket
// so events never interleave with request replies.
type Subscription struct {
	c      net.Conn
	events chan Event
	err    error
}

// SubscribeEvents connects to the socket and subscribes to the named
// events ("workspace", "output", "mode", "barconfig_update").
func SubscribeEvents(path string, events ...string) (*Subscription, error) {
	c, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("cannot reach window manager: %v", err)
	}
	s, err := newSubscription(c, events...)
	if err != nil {
		c.Close()
		return nil, err
	}
	return s, nil
}

func newSubscription(c net.Conn, events ...string) (*Subscription, error) {
	payload, err := json.Marshal(events)
	if err != nil {
		return nil, err
	}
	if err := writeMessage(c, msgSubscribe, payload); err != nil {
		return nil, fmt.Errorf("subscribe: %v", err)
	}
	t, reply, err := readMessage(c)
	if err != nil {
		return nil, fmt.Errorf("subscribe reply: %v", err)
	}
	if t != msgSubscribe {
		return nil, fmt.Errorf("subscribe reply type %d", t)
	}
	var res struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(reply, &res); err != nil || !res.Success {
		return nil, fmt.Errorf("subscription refused: %s", reply)
	}
	s := &Subscription{c: c, events: make(chan Event, 4)}
	go s.loop()
	return s, nil
}

func (s *Subscription) loop() {
	for {
		t, payload, err := readMessage(s.c)
		if err != nil {
			s.err = err
			close(s.events)
			return
		}
		if t&eventBit == 0 {
			continue
		}
		s.events <- Event{Type: EventType(t), Payload: payload}
	}
}

// Events delivers subscribed events until the connection ends.
func (s *Subscription) Events() <-chan Event { return s.events }

// Err reports why the event channel closed.
func (s *Subscription) Err() error { return s.err }

// Close drops the subscription. The event channel closes once the
// receive loop notices.
func (s *Subscription) Close() error {
	err := s.c.Close()
	// The loop may be blocked handing over an event; discard the tail.
	go func() {
		for range s.events {
		}
	}()
	return err
}
