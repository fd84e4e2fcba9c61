// Package agent is the composition root: it wires the Encoder Supervisor,
// Bitstream Scanner, and Frame Assembler onto one reader goroutine, and the
// Broadcaster, Fallback Frame Source, and client transport onto the rest,
// bridged by the latest-frame-slot rendezvous.
package agent

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/relaydesk/agent/assembler"
	"github.com/relaydesk/agent/broadcast"
	"github.com/relaydesk/agent/config"
	"github.com/relaydesk/agent/encoder"
	"github.com/relaydesk/agent/fallback"
	"github.com/relaydesk/agent/media/bitstream"
)

// Agent owns every pipeline component for one streaming session.
type Agent struct {
	cfg         config.Config
	broadcaster *broadcast.Broadcaster
	slot        *broadcast.FrameSlot
}

// New builds an Agent from startup configuration.
func New(cfg config.Config) *Agent {
	return &Agent{
		cfg: cfg,
		broadcaster: broadcast.New(broadcast.StreamConfig{
			Width:   uint16(cfg.Width),
			Height:  uint16(cfg.Height),
			FPS:     uint32(cfg.FPS),
			Quality: uint32(cfg.Quality),
		}),
		slot: broadcast.NewFrameSlot(),
	}
}

// Run starts every component and blocks until ctx is cancelled or an
// unrecoverable component error occurs. No pipeline error is considered
// fatal on its own: the reader goroutine exiting (encoder gone for good)
// simply means the Fallback Frame Source keeps serving indefinitely.
func (a *Agent) Run(ctx context.Context) error {
	if dump, err := jsoniter.Marshal(a.cfg); err == nil {
		log.Info().RawJSON("config", dump).Msg("agent starting")
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.runReaderPipeline(ctx)
		return nil
	})
	g.Go(func() error {
		a.broadcaster.RunFrameLoop(ctx, a.slot)
		return nil
	})
	g.Go(func() error {
		a.broadcaster.RunStatsLoop(ctx)
		return nil
	})
	g.Go(func() error {
		a.runFallback(ctx)
		return nil
	})
	g.Go(func() error {
		return a.runHTTPServer(ctx)
	})

	return g.Wait()
}

// runReaderPipeline owns Supervisor -> Scanner -> Assembler sequentially
// on this single goroutine, exactly as required by the concurrency model:
// it never touches the client set or Init cache directly, only via the
// Assembler's onInit/onFrame callbacks and the shared FrameSlot.
func (a *Agent) runReaderPipeline(ctx context.Context) {
	sup := encoder.NewSupervisor(encoder.Params{
		Width:   a.cfg.Width,
		Height:  a.cfg.Height,
		FPS:     a.cfg.FPS,
		Quality: a.cfg.Quality,
		Binary:  a.cfg.EncoderBinary,
	})

	stdout, err := sup.Start(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("no live encoder, serving fallback only")
		return
	}
	defer sup.Stop()

	scanner := &bitstream.Scanner{}
	asm := assembler.New(
		func(sps, pps []byte, w, h int) {
			a.broadcaster.BroadcastInit(sps, pps, w, h)
		},
		func(packet []byte, isKey bool) {
			a.slot.Put(packet, isKey)
		},
	)

	buf := make([]byte, 64*1024)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := stdout.Read(buf)
		if n > 0 {
			for _, nal := range scanner.Feed(buf[:n]) {
				asm.Feed(nal)
			}
		}
		if err != nil {
			if err != io.EOF {
				log.Debug().Err(err).Msg("bitstream read truncated")
			}
			for _, nal := range scanner.Flush() {
				asm.Feed(nal)
			}
			asm.Flush()
			return
		}
	}
}

func (a *Agent) runFallback(ctx context.Context) {
	image := a.loadFallbackImage()
	src := fallback.New(image, a.cfg.FPS, a.broadcaster)
	src.Run(ctx)
}

func (a *Agent) loadFallbackImage() []byte {
	if a.cfg.FallbackImage == "" {
		return fallback.Placeholder()
	}
	data, err := os.ReadFile(a.cfg.FallbackImage)
	if err != nil {
		log.Warn().Err(err).Str("path", a.cfg.FallbackImage).Msg("fallback image unreadable, using placeholder")
		return fallback.Placeholder()
	}
	return data
}

func (a *Agent) runHTTPServer(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", a.handleStream)

	srv := &http.Server{
		Addr:    a.cfg.Listen,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("listen", a.cfg.Listen).Msg("agent listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *Agent) handleStream(w http.ResponseWriter, r *http.Request) {
	client, recv, err := broadcast.Upgrade(w, r)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	a.broadcaster.Attach(client, recv)
}
