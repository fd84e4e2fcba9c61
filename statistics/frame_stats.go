package statistics

import (
	"sync"
	"time"
)

// FrameStats aggregates the Broadcaster's per-second throughput diagnostic:
// frame rate, bitrate, and elapsed stream time. Add runs on the
// frame-broadcasting goroutine while Snapshot runs on the stats-ticker
// goroutine, so both are guarded by mu rather than relying on the embedded
// FPS/Bitrate's own one-writer-multi-reader assumption.
type FrameStats struct {
	FPS     *FPS
	Bitrate *Bitrate

	mu        sync.Mutex
	startedAt time.Time
	frames    uint64
}

// NewFrameStats creates a FrameStats with its clock started now.
func NewFrameStats() *FrameStats {
	return &FrameStats{
		FPS:       NewFPS(),
		Bitrate:   NewBitrate(),
		startedAt: time.Now(),
	}
}

// Add records one broadcast frame of size bytes.
func (s *FrameStats) Add(size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	s.FPS.Add()
	s.Bitrate.Add(uint64(size) * 8)
}

// Snapshot is the per-second diagnostic record emitted by the Broadcaster.
type Snapshot struct {
	Frames      uint64 `json:"frames"`
	FPS         uint32 `json:"fps"`
	BitrateBps  uint64 `json:"bitrate_bps"`
	ElapsedSecs int64  `json:"elapsed_seconds"`
	ClientCount int    `json:"client_count"`
}

// Snapshot captures the current aggregated totals alongside the live
// client count.
func (s *FrameStats) Snapshot(clientCount int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Frames:      s.frames,
		FPS:         s.FPS.GetFPS(),
		BitrateBps:  s.Bitrate.GetBitrate(),
		ElapsedSecs: int64(time.Since(s.startedAt) / time.Second),
		ClientCount: clientCount,
	}
}
