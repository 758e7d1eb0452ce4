// Package term is the direct rendering backend: a raw-mode terminal that
// draws into the normal scrollback buffer (no alternate screen), with input
// decoded from a blocking poll loop.
package term

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Terminal owns raw mode and the size cache for a pair of tty files.
// Dimensions are cached and refreshed when the resize flag is consumed, so
// rendering never issues ioctls per frame.
type Terminal struct {
	in, out     *os.File
	origTermios *unix.Termios

	sigCh  chan os.Signal
	resize chan struct{}

	sizeMu sync.RWMutex
	cols   int
	rows   int

	pending []byte
}

// Open puts in into raw mode and starts listening for resize signals. The
// signal handler only sets a pending flag; the poll loop consumes it.
func Open(in, out *os.File) (*Terminal, error) {
	t := &Terminal{in: in, out: out, resize: make(chan struct{}, 1)}

	fd := int(in.Fd())
	orig, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("get termios: %w", err)
	}
	t.origTermios = orig

	raw := *orig
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Cflag |= unix.CS8
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &raw); err != nil {
		return nil, fmt.Errorf("set raw: %w", err)
	}

	t.refreshSize()

	// Bracketed paste, so pasted text arrives as one event.
	t.WriteString("\x1b[?2004h")

	t.sigCh = make(chan os.Signal, 1)
	signal.Notify(t.sigCh, syscall.SIGWINCH)
	go func() {
		for range t.sigCh {
			select {
			case t.resize <- struct{}{}:
			default:
			}
		}
	}()
	return t, nil
}

// Restore leaves raw mode and stops the resize listener.
func (t *Terminal) Restore() error {
	t.WriteString("\x1b[?2004l")
	if t.sigCh != nil {
		signal.Stop(t.sigCh)
		close(t.sigCh)
	}
	if t.origTermios != nil {
		fd := int(t.in.Fd())
		if err := unix.IoctlSetTermios(fd, unix.TCSETS, t.origTermios); err != nil {
			return fmt.Errorf("restore termios: %w", err)
		}
	}
	return nil
}

func (t *Terminal) Write(p []byte) (int, error) { return t.out.Write(p) }

func (t *Terminal) WriteString(s string) {
	_, _ = t.out.WriteString(s)
}

// Size returns the cached dimensions. Zero values mean no real size has
// been observed yet.
func (t *Terminal) Size() (cols, rows int) {
	t.sizeMu.RLock()
	defer t.sizeMu.RUnlock()
	return t.cols, t.rows
}

// refreshSize queries the kernel and caches the dimensions. A degenerate
// reported size is ignored and the previous cache kept.
func (t *Terminal) refreshSize() {
	ws, err := unix.IoctlGetWinsize(int(t.out.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return
	}
	t.sizeMu.Lock()
	if ws.Col > 0 && ws.Row > 0 {
		t.cols, t.rows = int(ws.Col), int(ws.Row)
	}
	t.sizeMu.Unlock()
}

// PollEvent blocks for the next input event, at most timeout, returning an
// idle event when nothing arrived. A pending resize flag is consumed before
// reading input. Partial escape sequences are held until more bytes arrive;
// a lone escape that stays alone for a full timeout is a real escape press.
func (t *Terminal) PollEvent(timeout time.Duration) (Event, error) {
	select {
	case <-t.resize:
		t.refreshSize()
		return Event{Resize: true}, nil
	default:
	}

	deadline := time.Now().Add(timeout)
	for {
		if ev, consumed, needMore := decode(t.pending); !needMore {
			t.pending = t.pending[consumed:]
			return ev, nil
		}
		remain := time.Until(deadline)
		if remain <= 0 {
			if len(t.pending) > 0 && t.pending[0] == 0x1b {
				t.pending = t.pending[1:]
				return Event{Key: "esc"}, nil
			}
			return Event{Idle: true}, nil
		}
		n, err := t.poll(remain)
		if err != nil {
			return Event{}, err
		}
		if n == 0 {
			continue // timed out; loop once more to resolve pending bytes
		}
		buf := make([]byte, 4096)
		nr, err := t.in.Read(buf)
		if err != nil {
			return Event{}, fmt.Errorf("reading terminal: %w", err)
		}
		t.pending = append(t.pending, buf[:nr]...)
	}
}

func (t *Terminal) poll(timeout time.Duration) (int, error) {
	fds := []unix.PollFd{{Fd: int32(t.in.Fd()), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err == unix.EINTR {
		return 0, nil // interrupted by a signal; treat as timeout
	}
	if err != nil {
		return 0, fmt.Errorf("polling terminal: %w", err)
	}
	return n, nil
}

// QueryCursorRow asks the terminal where the cursor is, consuming input
// until the report arrives. Non-report events seen meanwhile are queued for
// later delivery.
func (t *Terminal) QueryCursorRow(timeout time.Duration) (int, bool) {
	t.WriteString("\x1b[6n")
	deadline := time.Now().Add(timeout)
	var queued []byte
	for time.Now().Before(deadline) {
		ev, err := t.PollEvent(time.Until(deadline))
		if err != nil {
			break
		}
		if ev.CursorRow > 0 {
			t.pending = append(queued, t.pending...)
			return ev.CursorRow, true
		}
		if ev.Idle || ev.Resize {
			continue
		}
		// Requeue the raw form of whatever we consumed.
		if ev.Text != "" {
			queued = append(queued, ev.Text...)
		}
	}
	t.pending = append(queued, t.pending...)
	return 0, false
}
