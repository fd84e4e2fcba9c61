package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeConfig(t *testing.T) {
	msg := EncodeConfig(1920, 1080, 30, 75)
	require.Equal(t, byte(TagConfig), msg[0])
	require.Equal(t, byte(0), msg[1])
	require.Equal(t, 14, len(msg))
}

func TestEncodeImageFrame(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	msg := EncodeImageFrame(payload)
	require.Equal(t, byte(TagImageFrame), msg[0])
	require.Equal(t, payload, msg[5:])
}

func TestEncodeVideoInit(t *testing.T) {
	sps := []byte{0x67, 0xAA}
	pps := []byte{0x68, 0xBB}
	msg := EncodeVideoInit(640, 480, sps, pps)
	require.Equal(t, byte(TagVideoInit), msg[0])
	require.Equal(t, sps, msg[9:11])
	require.Equal(t, pps, msg[15:17])
}

func TestEncodeVideoFrameKeyframeFlag(t *testing.T) {
	payload := []byte{0, 0, 0, 1, 0x65}
	keyMsg := EncodeVideoFrame(payload, true)
	require.Equal(t, byte(TagVideoFrame), keyMsg[0])
	require.NotEqual(t, byte(0), keyMsg[1]&FlagKeyframe)

	nonKeyMsg := EncodeVideoFrame(payload, false)
	require.Equal(t, byte(0), nonKeyMsg[1]&FlagKeyframe)
}

func TestDecodePointerMoveRoundTrip(t *testing.T) {
	msg := []byte{TagPointerMove, 0x01, 0x02, 0x03, 0x04}
	ev, err := DecodePointerMove(msg)
	require.NoError(t, err)
	require.Equal(t, uint16(0x0102), ev.X)
	require.Equal(t, uint16(0x0304), ev.Y)
}

func TestDecodePointerMoveShort(t *testing.T) {
	_, err := DecodePointerMove([]byte{TagPointerMove, 0x01})
	require.ErrorIs(t, err, ErrShortMessage)
}

func TestDecodePointerButtonRoundTrip(t *testing.T) {
	ev, err := DecodePointerButton([]byte{TagPointerButton, 2})
	require.NoError(t, err)
	require.Equal(t, uint8(2), ev.Button)
}

func TestDecodeKeyRoundTrip(t *testing.T) {
	ev, err := DecodeKey([]byte{TagKey, 0x00, 0x41, 1})
	require.NoError(t, err)
	require.Equal(t, uint16(0x0041), ev.Code)
	require.True(t, ev.Pressed)
}

func TestDecodeKeyShort(t *testing.T) {
	_, err := DecodeKey([]byte{TagKey, 0x00})
	require.ErrorIs(t, err, ErrShortMessage)
}
