//go:build linux

package encoder

import "fmt"

// platformHardwareCandidates returns VAAPI-accelerated encode attempts
// before the caller appends the software fallback.
func platformHardwareCandidates(bin string, p Params) []Candidate {
	return []Candidate{
		{
			Name:   "vaapi",
			Binary: bin,
			Args: []string{
				"-y",
				"-vaapi_device", "/dev/dri/renderD128",
				"-f", "x11grab",
				"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
				"-framerate", fmt.Sprintf("%d", p.FPS),
				"-i", ":0.0",
				"-vf", "format=nv12,hwupload",
				"-c:v", "h264_vaapi",
				"-profile:v", "66", // baseline
				"-level", "31",
				"-f", "h264",
				"-bsf:v", "h264_mp4toannexb",
				"pipe:1",
			},
		},
	}
}
