package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearAgentEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"AGENT_LISTEN", "AGENT_ENCODER", "AGENT_FALLBACK_IMAGE",
		"AGENT_WIDTH", "AGENT_HEIGHT", "AGENT_FPS", "AGENT_QUALITY",
	}
	for _, k := range keys {
		prev, had := os.LookupEnv(k)
		os.Unsetenv(k)
		key, prevVal, hadPrev := k, prev, had
		t.Cleanup(func() {
			if hadPrev {
				os.Setenv(key, prevVal)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearAgentEnv(t)
	cfg := Load()
	require.Equal(t, ":8080", cfg.Listen)
	require.Equal(t, "ffmpeg", cfg.EncoderBinary)
	require.Equal(t, 1920, cfg.Width)
	require.Equal(t, 1080, cfg.Height)
	require.Equal(t, 30, cfg.FPS)
	require.Equal(t, 75, cfg.Quality)
}

func TestLoadReadsEnvOverrides(t *testing.T) {
	clearAgentEnv(t)
	os.Setenv("AGENT_LISTEN", ":9090")
	os.Setenv("AGENT_WIDTH", "640")

	cfg := Load()
	require.Equal(t, ":9090", cfg.Listen)
	require.Equal(t, 640, cfg.Width)
	require.Equal(t, 1080, cfg.Height) // unset env falls back to default
}

func TestApplyFlagOverridesTakesPrecedence(t *testing.T) {
	base := Config{Listen: ":8080", EncoderBinary: "ffmpeg", Width: 1920, Height: 1080, FPS: 30, Quality: 75}
	got := base.ApplyFlagOverrides(":9999", "", "", 0, 0, 60, 0)
	require.Equal(t, ":9999", got.Listen)
	require.Equal(t, "ffmpeg", got.EncoderBinary) // empty override keeps base
	require.Equal(t, 1920, got.Width)
	require.Equal(t, 60, got.FPS)
}

func TestGetEnvAsIntFallsBackOnInvalidValue(t *testing.T) {
	os.Setenv("AGENT_TEST_INT", "not-a-number")
	defer os.Unsetenv("AGENT_TEST_INT")
	require.Equal(t, 42, getEnvAsInt("AGENT_TEST_INT", 42))
}
