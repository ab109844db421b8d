package statusline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// Runner owns the status command child: it spawns the command through
// the shell, decodes its output, and relays click events and stop/cont
// control. Updates arrive on Updates until the stream ends, then Done
// reports why.
type Runner struct {
	cmd     *exec.Cmd
	output  io.Reader
	input   io.WriteCloser
	updates chan Update
	done    chan error

	mu        sync.Mutex
	header    Header
	clickOpen bool // the click event array on stdin is already open
}

// Run starts command with sh -c. With usePty the child runs on a
// pseudo-terminal, which keeps programs flowing that line-buffer only on
// a tty; otherwise it runs on pipes. Either way the child leads its own
// process group, so group signals reach the whole pipeline.
func Run(command string, usePty bool) (*Runner, error) {
	cmd := exec.Command("/bin/sh", "-c", command)
	r := &Runner{
		cmd:     cmd,
		updates: make(chan Update, 1),
		done:    make(chan error, 1),
		header:  Header{StopSignal: int(unix.SIGSTOP), ContSignal: int(unix.SIGCONT)},
	}
	if usePty {
		f, err := pty.Start(cmd)
		if err != nil {
			return nil, fmt.Errorf("cannot start %q on a pty: %v", command, err)
		}
		r.output, r.input = f, f
	} else {
		in, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("cannot pipe to %q: %v", command, err)
		}
		out, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("cannot pipe from %q: %v", command, err)
		}
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("cannot start %q: %v", command, err)
		}
		r.output, r.input = out, in
	}
	go r.loop()
	return r, nil
}

func (r *Runner) loop() {
	derr := decodeStream(r.output, r.setHeader, func(u Update) { r.updates <- u })
	werr := r.cmd.Wait()
	close(r.updates)
	switch {
	case werr != nil:
		r.done <- fmt.Errorf("status command exited: %v", werr)
	// A pty master reads EIO once the child side is gone; that is the
	// stream ending, not a decode failure.
	case derr != nil && !errors.Is(derr, unix.EIO):
		r.done <- fmt.Errorf("status command output: %v", derr)
	default:
		r.done <- errors.New("status command ended")
	}
}

func (r *Runner) setHeader(h Header) {
	r.mu.Lock()
	r.header = h
	r.mu.Unlock()
}

// Updates delivers one complete statusline per message. The channel
// closes when the child's stream ends.
func (r *Runner) Updates() <-chan Update { return r.updates }

// Done delivers the reason the stream ended, exactly once.
func (r *Runner) Done() <-chan error { return r.done }

// ClickEventsEnabled reports whether the child asked for click events.
func (r *Runner) ClickEventsEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.header.ClickEvents
}

// Click reports a pointer click to the child. The events form one
// unterminated JSON array on the child's stdin, one event per line.
// Clicks are dropped silently when the child did not ask for them.
func (r *Runner) Click(ev ClickEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.header.ClickEvents {
		return nil
	}
	buf, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := make([]byte, 0, len(buf)+2)
	if r.clickOpen {
		msg = append(msg, ',')
	} else {
		msg = append(msg, '[')
	}
	msg = append(append(msg, buf...), '\n')
	if _, err := r.input.Write(msg); err != nil {
		return fmt.Errorf("cannot deliver click event: %v", err)
	}
	r.clickOpen = true
	return nil
}

// Stop pauses the child with the header's stop signal. The bar calls it
// when it hides.
func (r *Runner) Stop() {
	stop, _ := r.signals()
	r.signalGroup(stop)
}

// Cont resumes the child after Stop.
func (r *Runner) Cont() {
	_, cont := r.signals()
	r.signalGroup(cont)
}

func (r *Runner) signals() (stop, cont int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.header.StopSignal, r.header.ContSignal
}

func (r *Runner) signalGroup(sig int) {
	if sig == 0 || r.cmd.Process == nil {
		return
	}
	unix.Kill(-r.cmd.Process.Pid, unix.Signal(sig))
}

// Close terminates the child and reaps it: resume first so a stopped
// child can handle the termination, then TERM to the group. It returns
// the Done error.
func (r *Runner) Close() error {
	r.Cont()
	r.signalGroup(int(unix.SIGTERM))
	r.input.Close()
	// The decode loop may be blocked handing over an update; discard the
	// tail so it can finish.
	go func() {
		for range r.updates {
		}
	}()
	return <-r.done
}
