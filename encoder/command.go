package encoder

import (
	"fmt"
	"runtime"
)

// Params describes the capture/encode target the supervisor launches
// candidates for.
type Params struct {
	Width   int
	Height  int
	FPS     int
	Quality int
	// Binary overrides the encoder executable name (defaults to "ffmpeg").
	Binary string
}

// Candidate is one encoder launch attempt: a binary name and argument list
// producing raw Annex-B H.264 on stdout.
type Candidate struct {
	Name   string // diagnostic label, e.g. "nvenc", "vaapi", "software"
	Binary string
	Args   []string
}

// Candidates returns the ordered list of encoder launch attempts for the
// current platform: hardware-accelerated options first, a software
// libx264 candidate always last so there is always a fallback within the
// Supervisor's own retry loop before it hands off to the Fallback Frame
// Source.
func Candidates(p Params) []Candidate {
	bin := p.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	candidates := platformHardwareCandidates(bin, p)
	candidates = append(candidates, Candidate{
		Name:   "software",
		Binary: bin,
		Args:   softwareArgs(p),
	})
	return candidates
}

func softwareArgs(p Params) []string {
	return []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "bgr0",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", captureInputArg(),
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-tune", "zerolatency",
		"-profile:v", "baseline",
		"-level", "3.1",
		"-crf", qualityToCRF(p.Quality),
		"-g", fmt.Sprintf("%d", p.FPS*2),
		"-f", "h264",
		"-bsf:v", "h264_mp4toannexb",
		"pipe:1",
	}
}

func qualityToCRF(quality int) string {
	// quality is 0..100 opaque to the encoder (spec §3); map it onto the
	// x264 CRF range (lower is better) with a sane floor/ceiling.
	if quality <= 0 {
		quality = 75
	}
	crf := 51 - (quality * 33 / 100)
	if crf < 18 {
		crf = 18
	}
	if crf > 51 {
		crf = 51
	}
	return fmt.Sprintf("%d", crf)
}

func captureInputArg() string {
	switch runtime.GOOS {
	case "windows":
		return "desktop"
	case "darwin":
		return "1:none"
	default:
		return ":0.0"
	}
}
