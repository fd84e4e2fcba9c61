// Package assembler groups scanned NAL units into access-unit packets and
// fires the one-shot Init event once both SPS and PPS have been observed.
package assembler

import (
	"github.com/relaydesk/agent/common/errs"
	"github.com/relaydesk/agent/media/codec/h264"
	"github.com/rs/zerolog/log"
)

var startCode = []byte{0x00, 0x00, 0x00, 0x01}

// InitFunc is invoked exactly once per encoder session, when the first
// SPS/PPS pair is complete.
type InitFunc func(sps, pps []byte, width, height int)

// FrameFunc is invoked for every completed access unit.
type FrameFunc func(packet []byte, isKeyframe bool)

// Assembler owns SPS/PPS caching and access-unit grouping. It is driven
// exclusively from the encoder-reading goroutine; none of its state is
// shared with the Broadcaster side except through onInit/onFrame.
type Assembler struct {
	onInit  InitFunc
	onFrame FrameFunc

	sps, pps  []byte
	width     int
	height    int
	initFired bool

	current      []byte
	currentIsKey bool
	hasCurrent   bool
}

// New builds an Assembler that calls onInit once and onFrame for every
// access unit it closes.
func New(onInit InitFunc, onFrame FrameFunc) *Assembler {
	return &Assembler{onInit: onInit, onFrame: onFrame}
}

// Feed classifies one extracted NAL unit and updates assembly state per
// the nal_type dispatch table: SPS/PPS are cached, slice-bearing NALs
// close and start access units, everything else is appended to whatever
// unit is currently open (or discarded if none is open).
func (a *Assembler) Feed(nal []byte) {
	if len(nal) == 0 {
		return
	}
	nalType := h264.Type(nal)

	switch nalType {
	case h264.NALUTypeSPS:
		a.sps = append([]byte(nil), nal...)
		w, h, err := h264.ParseDimensions(nal)
		if err != nil {
			log.Warn().Err(err).Int32("code", errs.CodeSpsParseFailed).Msg("sps parse failed")
			w, h = 0, 0
		}
		a.width, a.height = w, h
		a.maybeFireInit()

	case h264.NALUTypePPS:
		a.pps = append([]byte(nil), nal...)
		a.maybeFireInit()

	case h264.NALUTypeIDR:
		a.closeCurrent()
		a.openCurrent(nal, true)

	case h264.NALUTypeNonIDR:
		a.closeCurrent()
		a.openCurrent(nal, false)

	default:
		if a.hasCurrent {
			a.current = append(a.current, startCode...)
			a.current = append(a.current, nal...)
		}
	}
}

func (a *Assembler) maybeFireInit() {
	if a.initFired || a.sps == nil || a.pps == nil {
		return
	}
	a.initFired = true
	if a.onInit != nil {
		a.onInit(a.sps, a.pps, a.width, a.height)
	}
}

func (a *Assembler) openCurrent(nal []byte, isKey bool) {
	a.current = make([]byte, 0, len(startCode)+len(nal))
	a.current = append(a.current, startCode...)
	a.current = append(a.current, nal...)
	a.currentIsKey = isKey
	a.hasCurrent = true
}

func (a *Assembler) closeCurrent() {
	if !a.hasCurrent {
		return
	}
	packet := a.current
	isKey := a.currentIsKey
	a.current = nil
	a.hasCurrent = false
	if a.onFrame != nil {
		a.onFrame(packet, isKey)
	}
}

// Flush closes and emits any access unit still open, e.g. on encoder
// shutdown. It is safe to call when no unit is open.
func (a *Assembler) Flush() {
	a.closeCurrent()
}

// HasInit reports whether the one-shot Init event has already fired.
func (a *Assembler) HasInit() bool {
	return a.initFired
}
