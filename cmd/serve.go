package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/relaydesk/agent/agent"
	"github.com/relaydesk/agent/config"
	"github.com/spf13/cobra"
)

var serve = &cobra.Command{
	Use:   "serve",
	Short: "Capture, encode, and broadcast the desktop over WebSocket",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg := config.Load().ApplyFlagOverrides(
			sv.listen, sv.encoder, sv.fallbackImage,
			sv.width, sv.height, sv.fps, sv.quality,
		)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return agent.New(cfg).Run(ctx)
	},
}

type serveArgs struct {
	listen        string
	encoder       string
	fallbackImage string
	width         int
	height        int
	fps           int
	quality       int
}

var sv serveArgs

func init() {
	rootCmd.AddCommand(serve)

	serve.Flags().StringVarP(&sv.listen, "listen", "a", "", "address to listen on, e.g. :8080")
	serve.Flags().StringVarP(&sv.encoder, "encoder", "e", "", "encoder binary name")
	serve.Flags().StringVar(&sv.fallbackImage, "fallback-image", "", "path to a still image shown until the encoder's H.264 init (SPS/PPS) is published")
	serve.Flags().IntVar(&sv.width, "width", 0, "capture width")
	serve.Flags().IntVar(&sv.height, "height", 0, "capture height")
	serve.Flags().IntVar(&sv.fps, "fps", 0, "capture frame rate")
	serve.Flags().IntVar(&sv.quality, "quality", 0, "encode quality, 0-100")
}
