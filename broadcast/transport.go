package broadcast

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// websocketClient adapts a gorilla/websocket connection to the Client
// interface. Sends are serialized through a single writer goroutine so
// concurrent BroadcastFrame calls never interleave frames on the wire.
type websocketClient struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

// Upgrade promotes an HTTP request to a WebSocket connection and wraps it
// as a Client, ready to be passed to Broadcaster.Attach.
func Upgrade(w http.ResponseWriter, r *http.Request) (Client, func() ([]byte, error), error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, nil, err
	}
	c := &websocketClient{id: uuid.NewString(), conn: conn}
	recv := func() ([]byte, error) {
		_, msg, err := conn.ReadMessage()
		return msg, err
	}
	return c, recv, nil
}

func (c *websocketClient) ID() string { return c.id }

func (c *websocketClient) Send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.BinaryMessage, msg)
}

func (c *websocketClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
