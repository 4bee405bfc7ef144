package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsReadLimit  = 4096
)

// wsFrame is what WebSocket clients receive for each hub message.
type wsFrame struct {
	Event SSEEvent `json:"event"`
	Data  any      `json:"data,omitempty"`
}

// NewUpgrader accepts any origin when allowed is empty, otherwise only the listed ones.
func NewUpgrader(allowed []string) *websocket.Upgrader {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(set) == 0 || set["*"] {
				return true
			}
			return set[origin]
		},
	}
}

// ServeWS upgrades the request and pumps client messages until either side goes away.
// The caller still owns the client and must CloseClient it afterwards.
func (hub *SSEHub) ServeWS(w http.ResponseWriter, r *http.Request, up *websocket.Upgrader, client *SSEClient) error {
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Inbound frames are ignored; the reader only tracks liveness.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		conn.SetReadLimit(wsReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-readerDone:
			return nil
		case <-r.Context().Done():
			return nil
		case <-client.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(wsWriteWait))
			return nil
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case msg, ok := <-client.Outbound:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(wsFrame{Event: msg.Event, Data: msg.Data}); err != nil {
				client.Logger.Debug("WebSocket write failed", "error", err)
				return nil
			}
		}
	}
}
