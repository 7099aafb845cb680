package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func record(log *[]string, n int) []Command {
	cmds := make([]Command, n)
	for i := range cmds {
		name := fmt.Sprintf("cmd%d", i)
		cmds[i] = Command{Name: name, Exec: func() error {
			*log = append(*log, name)
			return nil
		}}
	}
	return cmds
}

func always() bool { return true }

func TestStartDrainsInOrder(t *testing.T) {
	var log []string
	s := New()
	s.Submit(record(&log, 5))
	if s.State() != Running {
		t.Fatalf("state after submit = %v, want running", s.State())
	}
	res, err := s.Start(context.Background(), 0, always)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res != (Result{Executed: 5, Reason: Drained}) {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := strings.Join(log, ","); got != "cmd0,cmd1,cmd2,cmd3,cmd4" {
		t.Fatalf("executed %s", got)
	}
	if s.State() != Idle || s.Pending() != 0 {
		t.Fatalf("scheduler not idle after drain: %v pending=%d", s.State(), s.Pending())
	}
}

func TestStartEmptyQueueIsIdle(t *testing.T) {
	s := New()
	s.Submit(nil)
	if s.State() != Idle {
		t.Fatalf("empty submit should leave scheduler idle")
	}
	res, err := s.Start(context.Background(), time.Second, always)
	if err != nil || res != (Result{Reason: Drained}) {
		t.Fatalf("Start on empty queue = %+v, %v", res, err)
	}
}

func TestStartStopsWhenNotLive(t *testing.T) {
	for k := 0; k <= 4; k++ {
		var log []string
		s := New()
		s.Submit(record(&log, 4))
		checks := 0
		res, err := s.Start(context.Background(), 0, func() bool {
			checks++
			return checks <= k
		})
		if err != nil {
			t.Fatalf("k=%d: Start: %v", k, err)
		}
		if len(log) != k || res.Executed != k {
			t.Fatalf("k=%d: executed %d commands (%+v)", k, len(log), res)
		}
		if res.Abandoned != 4-k {
			t.Fatalf("k=%d: abandoned %d, want %d", k, res.Abandoned, 4-k)
		}
		want := NotLive
		if k == 4 {
			want = Drained
		}
		if res.Reason != want {
			t.Fatalf("k=%d: reason %v, want %v", k, res.Reason, want)
		}
		if s.Pending() != 0 || s.State() != Idle {
			t.Fatalf("k=%d: queue not discarded", k)
		}
	}
}

func TestSubmitReplacesQueue(t *testing.T) {
	var first, second []string
	s := New()
	s.Submit(record(&first, 3))
	s.Submit(record(&second, 2))
	if s.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", s.Pending())
	}
	if _, err := s.Start(context.Background(), 0, always); err != nil {
		t.Fatal(err)
	}
	if len(first) != 0 || len(second) != 2 {
		t.Fatalf("first=%v second=%v", first, second)
	}
}

func TestSubmitCopiesCommands(t *testing.T) {
	var log []string
	cmds := record(&log, 2)
	s := New()
	s.Submit(cmds)
	cmds[0] = Command{Name: "other", Exec: func() error { return errors.New("boom") }}
	if _, err := s.Start(context.Background(), 0, always); err != nil {
		t.Fatalf("caller mutation leaked into queue: %v", err)
	}
}

func TestStartWrapsCommandError(t *testing.T) {
	boom := errors.New("boom")
	ran := 0
	s := New()
	s.Submit([]Command{
		{Name: "clear", Exec: func() error { ran++; return nil }},
		{Name: "pointer down", Exec: func() error { return boom }},
		{Name: "pointer up", Exec: func() error { ran++; return nil }},
	})
	res, err := s.Start(context.Background(), 0, always)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if !strings.Contains(err.Error(), "pointer down") {
		t.Fatalf("error %q does not name the command", err)
	}
	if ran != 1 || res.Executed != 1 || res.Abandoned != 1 || res.Reason != Failed {
		t.Fatalf("unexpected result %+v ran=%d", res, ran)
	}
}

func TestStartHonoursContext(t *testing.T) {
	var log []string
	s := New()
	s.Submit(record(&log, 3))
	ctx, cancel := context.WithCancel(context.Background())
	s.queue[0].Exec = func() error {
		log = append(log, "cmd0")
		cancel()
		return nil
	}
	res, err := s.Start(ctx, time.Hour, always)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Executed != 1 || res.Abandoned != 2 || res.Reason != Cancelled {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestStartWaitsBetweenCommands(t *testing.T) {
	var stamps []time.Time
	s := New()
	cmd := Command{Name: "tick", Exec: func() error {
		stamps = append(stamps, time.Now())
		return nil
	}}
	s.Submit([]Command{cmd, cmd, cmd})
	if _, err := s.Start(context.Background(), 5*time.Millisecond, always); err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < 5*time.Millisecond {
			t.Fatalf("gap %d was %v, want at least 5ms", i, gap)
		}
	}
}
