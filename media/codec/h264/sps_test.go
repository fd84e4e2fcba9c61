package h264

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDimensionsBaselineProfile(t *testing.T) {
	sps := []byte{0x67, 0x42, 0x00, 0x1F, 0x96, 0x54, 0x05, 0x01, 0x7B, 0xA0}

	width, height, err := ParseDimensions(sps)
	require.NoError(t, err)
	// pic_width_in_mbs_minus1=39 -> 640, pic_height_in_map_units_minus1=22
	// with frame_mbs_only_flag=1 -> 368; no crop offsets in this vector.
	require.Equal(t, 640, width)
	require.Equal(t, 368, height)
	require.Equal(t, 0, width%16)
	require.Equal(t, 0, height%16)
}

func TestParseDimensionsTooShort(t *testing.T) {
	_, _, err := ParseDimensions([]byte{0x67, 0x42})
	require.Error(t, err)
}

func TestNALUType(t *testing.T) {
	require.Equal(t, uint8(NALUTypeIDR), Type([]byte{0x65, 0x00}))
	require.Equal(t, uint8(NALUTypeSPS), Type([]byte{0x67, 0x00}))
	require.Equal(t, uint8(NALUTypePPS), Type([]byte{0x68, 0x00}))
	require.True(t, IsSlice(NALUTypeNonIDR))
	require.True(t, IsSlice(NALUTypeIDR))
	require.False(t, IsSlice(NALUTypeSEI))
}
