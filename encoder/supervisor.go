package encoder

import (
	"context"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/relaydesk/agent/common/errs"
	"github.com/rs/zerolog/log"
)

// SettleDelay is the time a just-launched candidate is given to prove it
// has not exited immediately before its stdout is trusted as the live
// bitstream source.
const SettleDelay = 1500 * time.Millisecond

const stderrRingSize = 4096

// Supervisor launches encoder candidates in order, hands the first one
// that survives SettleDelay to the caller as a bitstream source, and
// reports when every candidate has been exhausted.
type Supervisor struct {
	candidates []Candidate

	mu     sync.Mutex
	cmd    *exec.Cmd
	cancel context.CancelFunc
	exited chan error

	stderrMu  sync.Mutex
	stderrBuf []byte
}

// NewSupervisor builds a Supervisor over the platform's ordered candidate
// list for the given stream parameters.
func NewSupervisor(p Params) *Supervisor {
	return &Supervisor{candidates: Candidates(p)}
}

// Start tries each candidate in order. It returns the stdout of the first
// candidate that is still alive after SettleDelay, or a non-nil error
// (wrapping errs.ErrEncoderLaunchFailed / errs.ErrEncoderEarlyExit) once
// every candidate has failed.
func (s *Supervisor) Start(ctx context.Context) (io.Reader, error) {
	var lastErr error
	for _, c := range s.candidates {
		stdout, err := s.tryCandidate(ctx, c)
		if err != nil {
			log.Warn().Str("candidate", c.Name).Err(err).Msg("encoder candidate failed")
			lastErr = err
			continue
		}
		log.Info().Str("candidate", c.Name).Msg("encoder candidate live")
		return stdout, nil
	}
	if lastErr == nil {
		lastErr = errs.ErrEncoderLaunchFailed
	}
	return nil, lastErr
}

func (s *Supervisor) tryCandidate(ctx context.Context, c Candidate) (io.Reader, error) {
	cctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(cctx, c.Binary, c.Args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, errs.Wrapf(errs.ErrEncoderLaunchFailed, "stdout pipe for %s: %v", c.Name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, errs.Wrapf(errs.ErrEncoderLaunchFailed, "stderr pipe for %s: %v", c.Name, err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, errs.Wrapf(errs.ErrEncoderLaunchFailed, "start %s: %v", c.Name, err)
	}

	go s.drainStderr(stderr)

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	select {
	case err := <-exited:
		cancel()
		return nil, errs.Wrapf(errs.ErrEncoderEarlyExit, "%s exited early: %v", c.Name, err)
	case <-time.After(SettleDelay):
	}

	s.mu.Lock()
	s.cmd = cmd
	s.cancel = cancel
	s.exited = exited
	s.mu.Unlock()

	return stdout, nil
}

func (s *Supervisor) drainStderr(r io.Reader) {
	buf := make([]byte, 1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			s.stderrMu.Lock()
			s.stderrBuf = append(s.stderrBuf, buf[:n]...)
			if len(s.stderrBuf) > stderrRingSize {
				s.stderrBuf = s.stderrBuf[len(s.stderrBuf)-stderrRingSize:]
			}
			s.stderrMu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// LastStderr returns the most recent stderr output captured from the live
// candidate, for diagnostics only.
func (s *Supervisor) LastStderr() string {
	s.stderrMu.Lock()
	defer s.stderrMu.Unlock()
	return string(s.stderrBuf)
}

// Stop requests termination of the currently running candidate, if any,
// and releases its handle. It does not attempt a restart.
//
// cmd.Wait is called exactly once, by the background goroutine started in
// tryCandidate; that goroutine owns reaping the process. Stop only cancels
// the context and waits on the exited channel that goroutine reports into,
// rather than calling cmd.Wait a second time (which fails with "Wait was
// already called").
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	exited := s.exited
	s.cmd = nil
	s.cancel = nil
	s.exited = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if exited != nil {
		<-exited
	}
}
