// Package config loads agent configuration from an optional .env file,
// environment variables, and CLI flag overrides.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is the agent's full startup configuration.
type Config struct {
	Listen        string
	EncoderBinary string
	FallbackImage string
	Width         int
	Height        int
	FPS           int
	Quality       int
}

// Load reads an optional .env file, then environment variables, applying
// defaults for anything unset. Flag values, applied afterwards with
// ApplyFlagOverrides (non-zero overrides), take precedence over both.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using environment variables")
	}

	return Config{
		Listen:        getEnv("AGENT_LISTEN", ":8080"),
		EncoderBinary: getEnv("AGENT_ENCODER", "ffmpeg"),
		FallbackImage: getEnv("AGENT_FALLBACK_IMAGE", ""),
		Width:         getEnvAsInt("AGENT_WIDTH", 1920),
		Height:        getEnvAsInt("AGENT_HEIGHT", 1080),
		FPS:           getEnvAsInt("AGENT_FPS", 30),
		Quality:       getEnvAsInt("AGENT_QUALITY", 75),
	}
}

// ApplyFlagOverrides overwrites fields in c with any non-zero-value flag
// the caller explicitly set.
func (c Config) ApplyFlagOverrides(listen, encoder, fallbackImage string, width, height, fps, quality int) Config {
	if listen != "" {
		c.Listen = listen
	}
	if encoder != "" {
		c.EncoderBinary = encoder
	}
	if fallbackImage != "" {
		c.FallbackImage = fallbackImage
	}
	if width > 0 {
		c.Width = width
	}
	if height > 0 {
		c.Height = height
	}
	if fps > 0 {
		c.FPS = fps
	}
	if quality > 0 {
		c.Quality = quality
	}
	return c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
