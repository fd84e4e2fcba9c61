//go:build windows

package encoder

import "fmt"

// platformHardwareCandidates returns NVENC-accelerated encode attempts
// before the caller appends the software fallback.
func platformHardwareCandidates(bin string, p Params) []Candidate {
	return []Candidate{
		{
			Name:   "nvenc",
			Binary: bin,
			Args: []string{
				"-y",
				"-f", "gdigrab",
				"-framerate", fmt.Sprintf("%d", p.FPS),
				"-i", "desktop",
				"-c:v", "h264_nvenc",
				"-preset", "llhq",
				"-profile:v", "baseline",
				"-level:v", "3.1",
				"-f", "h264",
				"-bsf:v", "h264_mp4toannexb",
				"pipe:1",
			},
		},
	}
}
