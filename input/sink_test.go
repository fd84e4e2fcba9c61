package input

import (
	"bytes"
	"strings"
	"testing"

	"github.com/relaydesk/agent/wire"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()
	fn()
	return buf.String()
}

func TestHandlePointerMove(t *testing.T) {
	msg := []byte{wire.TagPointerMove, 0, 10, 0, 20}
	out := captureLog(t, func() { Handle("client-a", msg) })
	require.Contains(t, out, "pointer move")
}

func TestHandleUnknownTagLogsDecodeFailed(t *testing.T) {
	out := captureLog(t, func() { Handle("client-a", []byte{0xFF}) })
	require.Contains(t, out, "client input decode failed")
	require.True(t, strings.Contains(out, "unknown tag"))
}

func TestHandleEmptyMessage(t *testing.T) {
	out := captureLog(t, func() { Handle("client-a", nil) })
	require.Contains(t, out, "empty message")
}

func TestHandleShortKeyMessageDoesNotPanic(t *testing.T) {
	require.NotPanics(t, func() {
		Handle("client-a", []byte{wire.TagKey, 0})
	})
}
