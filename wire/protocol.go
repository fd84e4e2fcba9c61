// Package wire encodes and decodes the agent's tag-prefixed binary
// protocol: one message per transport frame, all integers big-endian.
package wire

import (
	"fmt"

	"github.com/relaydesk/agent/media/codec/h264/bits/pio"
)

// Message tags, shared between the agent->client and client->agent
// directions where the tag values overlap (0x10/0x11/0x20).
const (
	TagConfig        = 0x01
	TagImageFrame    = 0x02
	TagVideoInit     = 0x03
	TagVideoFrame    = 0x04
	TagPointerMove   = 0x10
	TagPointerButton = 0x11
	TagKey           = 0x20
)

// FlagKeyframe is bit 0 of a Video frame message's flags byte.
const FlagKeyframe = 1 << 0

// EncodeConfig builds a Config message (tag 0x01).
func EncodeConfig(width, height uint16, fps, quality uint32) []byte {
	b := make([]byte, 14)
	b[0] = TagConfig
	b[1] = 0 // reserved
	pio.PutU16BE(b[2:4], width)
	pio.PutU16BE(b[4:6], height)
	pio.PutU32BE(b[6:10], fps)
	pio.PutU32BE(b[10:14], quality)
	return b
}

// EncodeImageFrame builds an Image frame message (tag 0x02).
func EncodeImageFrame(payload []byte) []byte {
	b := make([]byte, 5+len(payload))
	b[0] = TagImageFrame
	pio.PutU32BE(b[1:5], uint32(len(payload)))
	copy(b[5:], payload)
	return b
}

// EncodeVideoInit builds a Video init message (tag 0x03). sps and pps are
// raw NAL payloads without start codes.
func EncodeVideoInit(width, height uint16, sps, pps []byte) []byte {
	b := make([]byte, 9+len(sps)+4+len(pps))
	b[0] = TagVideoInit
	pio.PutU16BE(b[1:3], width)
	pio.PutU16BE(b[3:5], height)
	pio.PutU32BE(b[5:9], uint32(len(sps)))
	off := 9
	off += copy(b[off:], sps)
	pio.PutU32BE(b[off:off+4], uint32(len(pps)))
	off += 4
	copy(b[off:], pps)
	return b
}

// EncodeVideoFrame builds a Video frame message (tag 0x04). payload
// contains 4-byte Annex-B start codes, as produced by the Frame Assembler.
func EncodeVideoFrame(payload []byte, isKeyframe bool) []byte {
	b := make([]byte, 10+len(payload))
	b[0] = TagVideoFrame
	var flags byte
	if isKeyframe {
		flags |= FlagKeyframe
	}
	b[1] = flags
	pio.PutU64BE(b[2:10], uint64(len(payload)))
	copy(b[10:], payload)
	return b
}

// PointerMove is a decoded tag-0x10 input event.
type PointerMove struct {
	X, Y uint16
}

// PointerButton is a decoded tag-0x11 input event.
type PointerButton struct {
	Button uint8
}

// Key is a decoded tag-0x20 input event.
type Key struct {
	Code    uint16
	Pressed bool
}

// ErrShortMessage is returned by the Decode* helpers when a message is
// too short for its tag; callers treat it as ClientDecodeFailed and drop
// the message silently rather than disconnecting.
var ErrShortMessage = fmt.Errorf("wire: message too short for its tag")

// DecodePointerMove parses a tag-0x10 message body (including the tag byte).
func DecodePointerMove(msg []byte) (PointerMove, error) {
	if len(msg) < 5 {
		return PointerMove{}, ErrShortMessage
	}
	return PointerMove{
		X: pio.U16BE(msg[1:3]),
		Y: pio.U16BE(msg[3:5]),
	}, nil
}

// DecodePointerButton parses a tag-0x11 message body (including the tag byte).
func DecodePointerButton(msg []byte) (PointerButton, error) {
	if len(msg) < 2 {
		return PointerButton{}, ErrShortMessage
	}
	return PointerButton{Button: msg[1]}, nil
}

// DecodeKey parses a tag-0x20 message body (including the tag byte).
func DecodeKey(msg []byte) (Key, error) {
	if len(msg) < 4 {
		return Key{}, ErrShortMessage
	}
	return Key{
		Code:    pio.U16BE(msg[1:3]),
		Pressed: msg[3] != 0,
	}, nil
}
