// Package bitstream implements Annex-B H.264 start-code framing: locating
// 00 00 01 / 00 00 00 01 start codes in an append-only byte buffer and
// extracting the NAL payloads between them.
package bitstream

// FindStartCode locates the next Annex-B start code at or after from. It
// returns the offset the start code begins at and its length (3 or 4),
// recognizing the 4-byte form whenever a leading zero precedes the 00 00 01
// triplet.
func FindStartCode(buf []byte, from int) (offset int, scLen int, found bool) {
	i := from
	for i+2 < len(buf) {
		if buf[i] == 0 && buf[i+1] == 0 && buf[i+2] == 1 {
			if i > 0 && buf[i-1] == 0 {
				return i - 1, 4, true
			}
			return i, 3, true
		}
		i++
	}
	return 0, 0, false
}

// Scan extracts every complete NAL unit in buf: the bytes strictly between
// one start code and the next. It returns the extracted NALs and consumed,
// the number of leading bytes of buf the caller may discard.
//
// The NAL following the last start code found is never considered complete
// by Scan alone (no subsequent start code proves its end) unless final is
// true, in which case the remaining bytes to the end of buf are emitted as
// the last NAL too — final is set by the caller once it knows no more bytes
// are coming (encoder stdout returned EOF), matching the policy that only a
// zero-byte read signals end-of-stream.
//
// When final is false, consumed stops at the offset of the last start code
// found, so that start code and everything after it remain in the buffer
// for the next call.
func Scan(buf []byte, final bool) (nalus [][]byte, consumed int) {
	var starts []int
	var lens []int
	pos := 0
	for {
		off, scLen, found := FindStartCode(buf, pos)
		if !found {
			break
		}
		starts = append(starts, off)
		lens = append(lens, scLen)
		pos = off + scLen
	}

	if len(starts) == 0 {
		return nil, 0
	}

	for i := 0; i < len(starts)-1; i++ {
		nalStart := starts[i] + lens[i]
		nalEnd := starts[i+1]
		if nalEnd > nalStart {
			nalus = append(nalus, buf[nalStart:nalEnd])
		}
	}

	lastStart := starts[len(starts)-1] + lens[len(starts)-1]
	if final {
		if len(buf) > lastStart {
			nalus = append(nalus, buf[lastStart:])
		}
		return nalus, len(buf)
	}

	return nalus, starts[len(starts)-1]
}

// Scanner accumulates encoder stdout bytes across successive reads and
// yields complete NAL units as soon as they are bounded by two start codes.
type Scanner struct {
	buf []byte
}

// Feed appends newly read bytes and returns every NAL unit that became
// complete as a result. The returned slices alias Scanner's internal buffer
// and must be copied by the caller if retained past the next Feed/Flush.
func (s *Scanner) Feed(chunk []byte) [][]byte {
	s.buf = append(s.buf, chunk...)
	nalus, consumed := Scan(s.buf, false)
	s.buf = s.buf[consumed:]
	return nalus
}

// Flush is called once the encoder's output has reached end-of-stream
// (a zero-byte read); it returns any final pending NAL and resets the
// internal buffer.
func (s *Scanner) Flush() [][]byte {
	nalus, _ := Scan(s.buf, true)
	s.buf = nil
	return nalus
}
