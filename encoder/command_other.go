//go:build !linux && !windows && !darwin

package encoder

// platformHardwareCandidates has no known hardware path on this platform;
// the software candidate appended by Candidates is the only attempt.
func platformHardwareCandidates(bin string, p Params) []Candidate {
	return nil
}
