//go:build darwin

package encoder

import "fmt"

// platformHardwareCandidates returns VideoToolbox-accelerated encode
// attempts before the caller appends the software fallback.
func platformHardwareCandidates(bin string, p Params) []Candidate {
	return []Candidate{
		{
			Name:   "videotoolbox",
			Binary: bin,
			Args: []string{
				"-y",
				"-f", "avfoundation",
				"-framerate", fmt.Sprintf("%d", p.FPS),
				"-i", "1:none",
				"-c:v", "h264_videotoolbox",
				"-profile:v", "baseline",
				"-level:v", "3.1",
				"-realtime", "true",
				"-f", "h264",
				"-bsf:v", "h264_mp4toannexb",
				"pipe:1",
			},
		},
	}
}
