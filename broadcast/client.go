package broadcast

// Client is the minimal transport handle the Broadcaster needs: a stable
// identity, an outbound send, and a way to tear the connection down. The
// concrete implementation (websocketClient) lives in transport.go; tests
// substitute the generated MockClient (see mock_client.go).
type Client interface {
	ID() string
	Send(msg []byte) error
	Close() error
}
