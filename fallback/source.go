// Package fallback emits a static image frame on a timer whenever the live
// H.264 path has not yet produced an Init, so viewers always receive
// something renderable.
package fallback

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"time"

	"github.com/rs/zerolog/log"
)

// initSignal is satisfied by broadcast.Broadcaster; kept as a narrow
// interface so this package does not import broadcast.
type initSignal interface {
	HasInit() bool
	BroadcastImage(payload []byte)
}

// Source transmits Image messages at 1/fps cadence until the broadcaster's
// Init message becomes non-empty, at which point it stops permanently.
type Source struct {
	image []byte
	fps   int
	sink  initSignal
}

// New builds a Fallback Frame Source over the given still-image payload.
func New(image []byte, fps int, sink initSignal) *Source {
	if fps <= 0 {
		fps = 1
	}
	return &Source{image: image, fps: fps, sink: sink}
}

// Run drives the timer loop until ctx is cancelled or Init fires.
func (s *Source) Run(ctx context.Context) {
	interval := time.Second / time.Duration(s.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Int("fps", s.fps).Msg("fallback frame source started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.sink.HasInit() {
				log.Info().Msg("fallback frame source stopped, h264 init published")
				return
			}
			s.sink.BroadcastImage(s.image)
		}
	}
}

// Placeholder returns a minimal, structurally valid JPEG usable when no
// fallback image file is configured: a small constant-gray image encoded
// with image/jpeg, starting with the SOI marker and ending with EOI.
func Placeholder() []byte {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, nil)
	return buf.Bytes()
}
