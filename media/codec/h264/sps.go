package h264

import (
	"bytes"

	"github.com/relaydesk/agent/media/codec/h264/bits"
)

// profilesWithChromaInfo lists the profile_idc values whose SPS carries the
// extra chroma/bit-depth/scaling-list fields (Annex A high profiles and
// their extensions).
var profilesWithChromaInfo = map[uint]bool{
	100: true, 110: true, 122: true, 244: true, 44: true,
	83: true, 86: true, 118: true, 128: true, 138: true,
	139: true, 134: true, 135: true,
}

// deEmulationPrevention strips 00 00 03 emulation-prevention bytes, turning
// an EBSP payload back into RBSP before bit parsing.
func deEmulationPrevention(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if i+2 < len(data) && data[i] == 0 && data[i+1] == 0 && data[i+2] == 3 {
			out = append(out, 0, 0)
			i += 3
			continue
		}
		out = append(out, data[i])
		i++
	}
	return out
}

// ParseDimensions reads an SPS NAL unit (start code stripped, NAL header
// byte included and skipped) and returns the
// coded picture width and height, rounded up to the macroblock grid (16px).
// Crop offsets are deliberately ignored: the result may be up to 15 pixels
// larger per axis than the display rectangle a decoder would crop to.
//
// On any parse failure (truncated bitstream, an unsupported syntax path)
// it returns (0, 0) and a non-nil error; callers must treat that as
// recoverable, not fatal.
func ParseDimensions(sps []byte) (width, height int, err error) {
	if len(sps) < 4 {
		return 0, 0, errShort
	}

	rbsp := deEmulationPrevention(sps)
	r := &bits.GolombBitReader{R: bytes.NewReader(rbsp)}

	// NAL header byte (forbidden_zero_bit, nal_ref_idc, nal_unit_type).
	if _, err = r.ReadBits(8); err != nil {
		return 0, 0, err
	}

	var profileIdc uint
	if profileIdc, err = r.ReadBits(8); err != nil {
		return 0, 0, err
	}
	if _, err = r.ReadBits(8); err != nil { // constraint flags + reserved
		return 0, 0, err
	}
	if _, err = r.ReadBits(8); err != nil { // level_idc
		return 0, 0, err
	}
	if _, err = r.ReadExponentialGolombCode(); err != nil { // seq_parameter_set_id
		return 0, 0, err
	}

	if profilesWithChromaInfo[profileIdc] {
		var chromaFormatIdc uint
		if chromaFormatIdc, err = r.ReadExponentialGolombCode(); err != nil {
			return 0, 0, err
		}
		if chromaFormatIdc == 3 {
			if _, err = r.ReadBit(); err != nil { // separate_colour_plane_flag
				return 0, 0, err
			}
		}
		if _, err = r.ReadExponentialGolombCode(); err != nil { // bit_depth_luma_minus8
			return 0, 0, err
		}
		if _, err = r.ReadExponentialGolombCode(); err != nil { // bit_depth_chroma_minus8
			return 0, 0, err
		}
		if _, err = r.ReadBit(); err != nil { // qpprime_y_zero_transform_bypass_flag
			return 0, 0, err
		}
		var scalingMatrixPresent uint
		if scalingMatrixPresent, err = r.ReadBit(); err != nil {
			return 0, 0, err
		}
		if scalingMatrixPresent != 0 {
			listCount := 8
			if chromaFormatIdc == 3 {
				listCount = 12
			}
			if err = skipScalingLists(r, listCount); err != nil {
				return 0, 0, err
			}
		}
	}

	if _, err = r.ReadExponentialGolombCode(); err != nil { // log2_max_frame_num_minus4
		return 0, 0, err
	}

	var picOrderCntType uint
	if picOrderCntType, err = r.ReadExponentialGolombCode(); err != nil {
		return 0, 0, err
	}
	switch picOrderCntType {
	case 0:
		if _, err = r.ReadExponentialGolombCode(); err != nil { // log2_max_pic_order_cnt_lsb_minus4
			return 0, 0, err
		}
	case 1:
		if _, err = r.ReadBit(); err != nil { // delta_pic_order_always_zero_flag
			return 0, 0, err
		}
		if _, err = r.ReadSE(); err != nil { // offset_for_non_ref_pic
			return 0, 0, err
		}
		if _, err = r.ReadSE(); err != nil { // offset_for_top_to_bottom_field
			return 0, 0, err
		}
		var cycleLen uint
		if cycleLen, err = r.ReadExponentialGolombCode(); err != nil {
			return 0, 0, err
		}
		for i := uint(0); i < cycleLen; i++ {
			if _, err = r.ReadSE(); err != nil { // offset_for_ref_frame[i]
				return 0, 0, err
			}
		}
	}

	if _, err = r.ReadExponentialGolombCode(); err != nil { // max_num_ref_frames
		return 0, 0, err
	}
	if _, err = r.ReadBit(); err != nil { // gaps_in_frame_num_value_allowed_flag
		return 0, 0, err
	}

	var widthInMbsMinus1, heightInMapUnitsMinus1, frameMbsOnly uint
	if widthInMbsMinus1, err = r.ReadExponentialGolombCode(); err != nil {
		return 0, 0, err
	}
	if heightInMapUnitsMinus1, err = r.ReadExponentialGolombCode(); err != nil {
		return 0, 0, err
	}
	if frameMbsOnly, err = r.ReadBit(); err != nil {
		return 0, 0, err
	}

	width = int(widthInMbsMinus1+1) * 16
	height = int(heightInMapUnitsMinus1+1) * 16
	if frameMbsOnly == 0 {
		height *= 2
	}
	return width, height, nil
}

func skipScalingLists(r *bits.GolombBitReader, count int) error {
	for i := 0; i < count; i++ {
		present, err := r.ReadBit()
		if err != nil {
			return err
		}
		if present == 0 {
			continue
		}
		size := 16
		if i >= 6 {
			size = 64
		}
		lastScale, nextScale := 8, 8
		for j := 0; j < size; j++ {
			if nextScale != 0 {
				delta, err := r.ReadSE()
				if err != nil {
					return err
				}
				nextScale = (lastScale + delta + 256) % 256
			}
			if nextScale != 0 {
				lastScale = nextScale
			}
		}
	}
	return nil
}

type parseError string

func (e parseError) Error() string { return string(e) }

const errShort = parseError("sps payload too short")
