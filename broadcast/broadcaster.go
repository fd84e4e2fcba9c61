// Package broadcast fans out Config/Init/Frame messages to the live set of
// attached clients and aggregates per-second throughput statistics.
package broadcast

import (
	"context"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/relaydesk/agent/common/errs"
	"github.com/relaydesk/agent/input"
	"github.com/relaydesk/agent/statistics"
	"github.com/relaydesk/agent/wire"
	"github.com/rs/zerolog/log"
)

// sendQueueSize bounds how far a client's writer goroutine may fall behind
// the broadcast producers before it is dropped as too slow.
const sendQueueSize = 64

// StreamConfig mirrors the wire Config message fields; width/height are
// updated once real dimensions are learned from the SPS.
type StreamConfig struct {
	Width   uint16
	Height  uint16
	FPS     uint32
	Quality uint32
}

// clientConn pairs a Client with its ordered outbound queue. Every message
// bound for that client - whether seeded at attach time or delivered later
// by a Broadcast* call - passes through this queue, so a single writer
// goroutine (writeLoop) is the only goroutine that ever calls client.Send.
// That serializes writes in submission order, which is what guarantees
// Config and Init reach the wire before any frame queued after them.
type clientConn struct {
	client Client
	queue  chan []byte

	mu     sync.Mutex
	closed bool

	dropOnce sync.Once
}

// enqueue appends msg to the client's ordered queue. It returns false if the
// queue is already closed or full; either way the caller must treat the
// client as gone.
func (cc *clientConn) enqueue(msg []byte) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.closed {
		return false
	}
	select {
	case cc.queue <- msg:
		return true
	default:
		return false
	}
}

// shutdown closes the queue exactly once, whether triggered by a send
// failure in writeLoop or a recv error in Attach.
func (cc *clientConn) shutdown() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.closed {
		return
	}
	cc.closed = true
	close(cc.queue)
}

// Broadcaster owns the live client set and the cached Init message. Every
// method is safe for concurrent use; the client set and Init cache are
// modified only here, never from the encoder-reading goroutine.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[string]*clientConn
	config  StreamConfig
	initMsg []byte

	stats *statistics.FrameStats
}

// New builds a Broadcaster with the given starting stream configuration
// (the values a client sees before any SPS has been parsed).
func New(initial StreamConfig) *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]*clientConn),
		config:  initial,
		stats:   statistics.NewFrameStats(),
	}
}

// Attach seeds a fresh client with the current Config message and, if Init
// has already fired, the cached Init message, then adds it to the
// broadcast set only once those messages are queued ahead of anything a
// concurrent BroadcastFrame/BroadcastInit could enqueue. That ordering is
// what guarantees Config/Init reach client's wire before any Frame message,
// even though the actual write happens asynchronously on a dedicated
// writer goroutine. Attach then drives a blocking receive loop for that
// client's input events until the connection errors or closes, at which
// point the client is removed.
func (b *Broadcaster) Attach(client Client, recv func() ([]byte, error)) {
	cc := &clientConn{client: client, queue: make(chan []byte, sendQueueSize)}

	b.mu.Lock()
	cfg := wire.EncodeConfig(b.config.Width, b.config.Height, b.config.FPS, b.config.Quality)
	init := b.initMsg
	cc.queue <- cfg
	if init != nil {
		cc.queue <- init
	}
	b.clients[client.ID()] = cc
	n := len(b.clients)
	b.mu.Unlock()

	log.Info().Str("client", client.ID()).Int("clients", n).Msg("client attached")

	go b.writeLoop(cc)

	for {
		msg, err := recv()
		if err != nil {
			b.dropClient(cc, nil)
			return
		}
		input.Handle(client.ID(), msg)
	}
}

// writeLoop is the single goroutine permitted to call cc.client.Send,
// draining cc.queue strictly in submission order.
func (b *Broadcaster) writeLoop(cc *clientConn) {
	for msg := range cc.queue {
		if err := cc.client.Send(msg); err != nil {
			b.dropClient(cc, err)
			return
		}
	}
}

func (b *Broadcaster) dropClient(cc *clientConn, sendErr error) {
	cc.dropOnce.Do(func() {
		b.mu.Lock()
		delete(b.clients, cc.client.ID())
		n := len(b.clients)
		b.mu.Unlock()

		cc.shutdown()
		_ = cc.client.Close()

		if sendErr != nil {
			log.Debug().Str("client", cc.client.ID()).Err(sendErr).
				Int32("code", errs.CodeClientSendFailed).Msg("client send failed, removed")
		} else {
			log.Info().Str("client", cc.client.ID()).Int("clients", n).Msg("client detached")
		}
	})
}

// BroadcastInit caches the Init message and queues it for every currently
// attached client. It must be called at most once per encoder session;
// callers enforce that via assembler.Assembler's own one-shot firing.
// Zero dimensions (an SPS that failed to parse) leave the previously known
// config dimensions in place, and the Init message carries those.
func (b *Broadcaster) BroadcastInit(sps, pps []byte, width, height int) {
	b.mu.Lock()
	if width > 0 && height > 0 {
		b.config.Width = uint16(width)
		b.config.Height = uint16(height)
	}
	msg := wire.EncodeVideoInit(b.config.Width, b.config.Height, sps, pps)
	b.initMsg = msg
	clients := b.snapshotClientsLocked()
	b.mu.Unlock()

	for _, cc := range clients {
		if !cc.enqueue(msg) {
			b.dropClient(cc, nil)
		}
	}
}

// BroadcastFrame queues a Video frame message for every attached client;
// a per-client send failure, or a client whose queue cannot keep up, is
// isolated to that client.
func (b *Broadcaster) BroadcastFrame(packet []byte, isKeyframe bool) {
	msg := wire.EncodeVideoFrame(packet, isKeyframe)
	b.stats.Add(len(packet))

	b.mu.RLock()
	clients := b.snapshotClientsLocked()
	b.mu.RUnlock()

	for _, cc := range clients {
		if !cc.enqueue(msg) {
			b.dropClient(cc, nil)
		}
	}
}

// BroadcastImage queues a legacy Image frame message (the Fallback Frame
// Source's output) for every attached client.
func (b *Broadcaster) BroadcastImage(payload []byte) {
	msg := wire.EncodeImageFrame(payload)
	b.mu.RLock()
	clients := b.snapshotClientsLocked()
	b.mu.RUnlock()

	for _, cc := range clients {
		if !cc.enqueue(msg) {
			b.dropClient(cc, nil)
		}
	}
}

func (b *Broadcaster) snapshotClientsLocked() []*clientConn {
	out := make([]*clientConn, 0, len(b.clients))
	for _, cc := range b.clients {
		out = append(out, cc)
	}
	return out
}

// HasInit reports whether BroadcastInit has fired yet (used by the
// Fallback Frame Source to know when to stop).
func (b *Broadcaster) HasInit() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initMsg != nil
}

// ClientCount returns the number of currently attached clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// RunFrameLoop drains slot until it is closed or ctx is done, broadcasting
// every frame it takes. This is the consumer side of the rendezvous
// bridging the encoder-reading goroutine to the Broadcaster.
func (b *Broadcaster) RunFrameLoop(ctx context.Context, slot *FrameSlot) {
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		slot.Close()
		close(done)
	}()
	for {
		packet, isKey, ok := slot.Take()
		if !ok {
			return
		}
		b.BroadcastFrame(packet, isKey)
	}
}

// RunStatsLoop logs a per-second throughput diagnostic until ctx is done.
func (b *Broadcaster) RunStatsLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := b.stats.Snapshot(b.ClientCount())
			event := log.Info().
				Uint64("frames", snap.Frames).
				Uint32("fps", snap.FPS).
				Uint64("bitrate_bps", snap.BitrateBps).
				Int64("elapsed_seconds", snap.ElapsedSecs).
				Int("clients", snap.ClientCount)
			if raw, err := jsoniter.Marshal(snap); err == nil {
				event = event.RawJSON("snapshot", raw)
			}
			event.Msg("stream statistics")
		}
	}
}
