package wakelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"
)

// ErrInhibitorExited means the inhibitor process ended on its own, so no lock is held.
var ErrInhibitorExited = errors.New("inhibitor exited")

// defaultGrace is how long a fresh inhibitor must stay alive to count as holding the lock.
const defaultGrace = 200 * time.Millisecond

// Inhibitor holds an idle inhibitor through systemd-inhibit for as long as the
// lock is held. The child process is the lock: killing it releases it.
type Inhibitor struct {
	// Command is the inhibitor binary, systemd-inhibit by default.
	Command string
	// Args overrides the default arguments.
	Args []string
	// Grace is the startup window in which an exiting child means the
	// inhibitor was refused. Zero means 200ms.
	Grace time.Duration
}

const defaultInhibitCommand = "systemd-inhibit"

func NewInhibitor(command string) *Inhibitor {
	if command == "" {
		command = defaultInhibitCommand
	}
	return &Inhibitor{Command: command}
}

func (i *Inhibitor) args(kind string) []string {
	if i.Args != nil {
		return i.Args
	}
	what := "idle"
	if kind != KindScreen {
		what = "idle:sleep"
	}
	return []string{
		"--what=" + what,
		"--who=interval-timer",
		"--why=workout in progress",
		"--mode=block",
		"sleep", "infinity",
	}
}

func (i *Inhibitor) Request(ctx context.Context, kind string) (Handle, error) {
	path, err := exec.LookPath(i.Command)
	if err != nil {
		return nil, ErrUnsupported
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// not CommandContext: the lock must outlive the request context
	cmd := exec.Command(path, i.args(kind)...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", i.Command, err)
	}

	h := &inhibitHandle{cmd: cmd, exited: make(chan struct{})}
	go h.wait()

	grace := i.Grace
	if grace <= 0 {
		grace = defaultGrace
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()

	// systemd-inhibit without logind prints "Failed to inhibit" and exits at once
	select {
	case <-h.exited:
		return nil, fmt.Errorf("%s: %w", i.Command, h.exitErr())
	case <-ctx.Done():
		_ = h.Release(context.Background())
		return nil, ctx.Err()
	case <-timer.C:
	}
	return h, nil
}

type inhibitHandle struct {
	cmd     *exec.Cmd
	exited  chan struct{}
	waitErr error
	once    sync.Once
}

func (h *inhibitHandle) wait() {
	h.waitErr = h.cmd.Wait()
	close(h.exited)
}

// exitErr describes an exit the handle did not cause. Only valid after exited is closed.
func (h *inhibitHandle) exitErr() error {
	if h.waitErr != nil {
		return fmt.Errorf("%w: %w", ErrInhibitorExited, h.waitErr)
	}
	return ErrInhibitorExited
}

// Release kills the inhibitor. A child that already died reports why, since the
// lock was lost before the run ended.
func (h *inhibitHandle) Release(ctx context.Context) error {
	var err error
	h.once.Do(func() {
		select {
		case <-h.exited:
			err = h.exitErr()
			return
		default:
		}
		if kerr := h.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
			err = fmt.Errorf("kill inhibitor: %w", kerr)
			return
		}
		select {
		case <-h.exited:
		case <-ctx.Done():
			err = ctx.Err()
		}
	})
	return err
}
