package console

import (
	"net/http"

	"golang.org/x/net/websocket"
)

// Mirror fans the broker's line stream out to host tooling attached
// over a websocket.  Each session gets its own tap; a session that
// stops reading is dropped without blocking console writes.
type Mirror struct {
	broker *Broker
}

func NewMirror(b *Broker) *Mirror {
	return &Mirror{broker: b}
}

// Serve upgrades the request and streams console output until the
// session disconnects.
func (m *Mirror) Serve(w http.ResponseWriter, r *http.Request) {
	serv := websocket.Server{Handler: websocket.Handler(m.session)}
	serv.ServeHTTP(w, r)
}

func (m *Mirror) session(conn *websocket.Conn) {
	tap := m.broker.attach()
	defer m.broker.detach(tap)
	for s := range tap {
		if err := websocket.Message.Send(conn, s); err != nil {
			return
		}
	}
}

// ListenAndServe serves the mirror on addr at /console.  Blocks.
func (m *Mirror) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/console", m.Serve)
	return http.ListenAndServe(addr, mux)
}
