package sync

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 2 * time.Second

// subscriber is one connected change-feed client.
type subscriber interface {
	transport() string
	send(b []byte) error
	close() error
}

type tcpSubscriber struct{ conn net.Conn }

func (s tcpSubscriber) transport() string { return TransportTCP }

func (s tcpSubscriber) send(b []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err := s.conn.Write(b)
	return err
}

func (s tcpSubscriber) close() error { return s.conn.Close() }

type wsSubscriber struct{ conn *websocket.Conn }

func (s wsSubscriber) transport() string { return TransportWebSocket }

func (s wsSubscriber) send(b []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, b)
}

func (s wsSubscriber) close() error { return s.conn.Close() }

// Hub fans collection events out to TCP and WebSocket subscribers.
//
// Every write happens with mu held: a connection never has two concurrent
// writers, and subscribers see events in publish order.
type Hub struct {
	mu   sync.Mutex
	subs map[subscriber]struct{}
	now  func() time.Time
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[subscriber]struct{}),
		now:  time.Now,
	}
}

// AddConn greets a TCP subscriber and registers it. On error the
// connection is closed and not registered.
func (h *Hub) AddConn(conn net.Conn) error {
	return h.join(tcpSubscriber{conn})
}

func (h *Hub) RemoveConn(conn net.Conn) {
	h.leave(tcpSubscriber{conn})
}

// AddWS is AddConn for WebSocket subscribers.
func (h *Hub) AddWS(ws *websocket.Conn) error {
	return h.join(wsSubscriber{ws})
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.leave(wsSubscriber{ws})
}

func (h *Hub) join(s subscriber) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, err := encode(CollectionEvent{
		Type:      EventWelcome,
		Count:     len(h.subs) + 1,
		Transport: s.transport(),
		At:        h.now().UTC(),
	})
	if err == nil {
		err = s.send(b)
	}
	if err != nil {
		_ = s.close()
		return err
	}
	h.subs[s] = struct{}{}
	return nil
}

func (h *Hub) leave(s subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, s)
	_ = s.close()
}

// Publish broadcasts a CollectionEvent and returns once every subscriber
// has been written to or dropped. A nil hub is a no-op, so handlers can
// run without a change feed.
func (h *Hub) Publish(eventType string, count int, ids ...string) {
	if h == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	b, err := encode(CollectionEvent{
		Type:  eventType,
		IDs:   ids,
		Count: count,
		At:    h.now().UTC(),
	})
	if err != nil {
		return
	}
	for s := range h.subs {
		if err := s.send(b); err != nil {
			_ = s.close()
			delete(h.subs, s)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	var st Stats
	for s := range h.subs {
		switch s.transport() {
		case TransportTCP:
			st.TCPClients++
		case TransportWebSocket:
			st.WSClients++
		}
	}
	return st
}

// encode renders one newline-terminated JSON line.
func encode(ev CollectionEvent) ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
