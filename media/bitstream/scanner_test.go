package bitstream

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildAnnexB(nalus ...[]byte) []byte {
	var buf bytes.Buffer
	for _, n := range nalus {
		buf.Write([]byte{0, 0, 0, 1})
		buf.Write(n)
	}
	return buf.Bytes()
}

func TestFindStartCodeThreeAndFourByte(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x01, 0x67, 0x00, 0x00, 0x00, 0x01, 0x68}
	off, scLen, found := FindStartCode(buf, 0)
	require.True(t, found)
	require.Equal(t, 0, off)
	require.Equal(t, 3, scLen)

	off, scLen, found = FindStartCode(buf, off+scLen)
	require.True(t, found)
	require.Equal(t, 4, off)
	require.Equal(t, 4, scLen)
}

func TestFindStartCodeNotFound(t *testing.T) {
	_, _, found := FindStartCode(nil, 0)
	require.False(t, found)

	_, _, found = FindStartCode([]byte{1, 2, 3}, 0)
	require.False(t, found)
}

func TestScanRoundTrip(t *testing.T) {
	sps := []byte{0x67, 0xAA}
	pps := []byte{0x68, 0xBB}
	idr := []byte{0x65, 0xCC, 0xDD}
	p1 := []byte{0x41, 0xEE}
	p2 := []byte{0x41, 0xFF}

	buf := buildAnnexB(sps, pps, idr, p1, p2)
	nalus, consumed := Scan(buf, true)
	require.Equal(t, 5, len(nalus))
	require.Equal(t, len(buf), consumed)
	require.Equal(t, sps, nalus[0])
	require.Equal(t, pps, nalus[1])
	require.Equal(t, idr, nalus[2])
	require.Equal(t, p1, nalus[3])
	require.Equal(t, p2, nalus[4])
}

func TestScanHoldsBackTrailingNALWhenNotFinal(t *testing.T) {
	sps := []byte{0x67, 0xAA}
	idr := []byte{0x65, 0xCC}
	buf := buildAnnexB(sps, idr)

	nalus, consumed := Scan(buf, false)
	require.Equal(t, 1, len(nalus))
	require.Equal(t, sps, nalus[0])
	require.Less(t, consumed, len(buf))

	remainder := buf[consumed:]
	nalus2, consumed2 := Scan(remainder, true)
	require.Equal(t, 1, len(nalus2))
	require.Equal(t, idr, nalus2[0])
	require.Equal(t, len(remainder), consumed2)
}

func TestScanEmptyBuffer(t *testing.T) {
	nalus, consumed := Scan(nil, true)
	require.Nil(t, nalus)
	require.Equal(t, 0, consumed)
}

func TestScannerFeedAndFlush(t *testing.T) {
	sps := []byte{0x67, 0xAA}
	pps := []byte{0x68, 0xBB}
	idr := []byte{0x65, 0xCC}

	var s Scanner
	full := buildAnnexB(sps, pps, idr)

	var got [][]byte
	got = append(got, s.Feed(full[:len(full)-1])...)
	got = append(got, s.Feed(full[len(full)-1:])...)
	got = append(got, s.Flush()...)

	require.Equal(t, 3, len(got))
	require.Equal(t, sps, got[0])
	require.Equal(t, pps, got[1])
	require.Equal(t, idr, got[2])
}
