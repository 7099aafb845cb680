// Package scheduler replays draw commands one at a time with a fixed pause
// between them, stopping early when the drawing surface stops accepting
// input.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/example/sketchbot/internal/logging"
)

// State is the scheduler lifecycle state.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// StopReason explains why Start returned.
type StopReason int

const (
	// Drained means every queued command ran.
	Drained StopReason = iota
	// NotLive means the liveness check failed before a command.
	NotLive
	// Cancelled means the context ended.
	Cancelled
	// Failed means a command returned an error.
	Failed
)

func (r StopReason) String() string {
	switch r {
	case Drained:
		return "drained"
	case NotLive:
		return "not-live"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("StopReason(%d)", int(r))
}

// Command is one deferred surface action.
type Command struct {
	Name string
	Exec func() error
}

// Result summarises a Start call.
type Result struct {
	Executed  int
	Abandoned int
	Reason    StopReason
}

// Scheduler owns a FIFO of commands. It is not safe for concurrent use.
type Scheduler struct {
	queue []Command
	state State
}

// New returns an idle scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// State reports the current lifecycle state.
func (s *Scheduler) State() State { return s.state }

// Pending returns the number of queued commands.
func (s *Scheduler) Pending() int { return len(s.queue) }

// Submit replaces any pending commands with cmds.
func (s *Scheduler) Submit(cmds []Command) {
	s.queue = append([]Command(nil), cmds...)
	if len(s.queue) > 0 {
		s.state = Running
	} else {
		s.state = Idle
	}
}

// Start drains the queue. Before each command isLive is consulted; when it
// reports false the remaining commands are dropped and counted as
// abandoned. After each command Start waits delay, or until ctx ends.
func (s *Scheduler) Start(ctx context.Context, delay time.Duration, isLive func() bool) (Result, error) {
	var res Result
	log := logging.Logger()
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		s.state = Idle
	}()
	for {
		if len(s.queue) == 0 {
			res.Reason = Drained
			return res, nil
		}
		if err := ctx.Err(); err != nil {
			return s.abandon(res, Cancelled), err
		}
		if isLive != nil && !isLive() {
			log.Warn("surface went inactive", "executed", res.Executed, "remaining", len(s.queue))
			return s.abandon(res, NotLive), nil
		}
		cmd := s.queue[0]
		s.queue = s.queue[1:]
		if err := cmd.Exec(); err != nil {
			return s.abandon(res, Failed), fmt.Errorf("%s: %w", cmd.Name, err)
		}
		res.Executed++
		log.Debug("command executed", "name", cmd.Name, "remaining", len(s.queue))
		if delay <= 0 || len(s.queue) == 0 {
			continue
		}
		if timer == nil {
			timer = time.NewTimer(delay)
		} else {
			timer.Reset(delay)
		}
		select {
		case <-ctx.Done():
			return s.abandon(res, Cancelled), ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Scheduler) abandon(res Result, reason StopReason) Result {
	res.Abandoned = len(s.queue)
	res.Reason = reason
	s.queue = nil
	return res
}
