package fanotify

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/safedep/dry/log"
	"golang.org/x/sys/unix"

	"github.com/safedep/authgate/core/events"
	"github.com/safedep/authgate/core/response"
	"github.com/safedep/authgate/subsystem"
)

const (
	initFlags = unix.FAN_CLASS_CONTENT |
		unix.FAN_CLOEXEC |
		unix.FAN_NONBLOCK

	eventFlags = unix.O_RDONLY |
		unix.O_LARGEFILE |
		unix.O_CLOEXEC

	markFlags = unix.FAN_MARK_ADD |
		unix.FAN_MARK_MOUNT

	readBufferSize = 4096
	metadataSize   = int(unsafe.Sizeof(unix.FanotifyEventMetadata{}))
	responseSize   = int(unsafe.Sizeof(unix.FanotifyResponse{}))
)

type pendingEvent struct {
	fd int32
}

// Client is a fanotify permission-event session.
type Client struct {
	fd         int
	wakeR      int
	wakeW      int
	watchPaths []string
	selfPID    int32

	mu      sync.Mutex
	pending map[events.ID]pendingEvent
	recent  *recentSet
	closed  bool
}

// Factory adapts New to the subsystem registry.
func Factory(opts subsystem.Options) (subsystem.Client, error) {
	return New(opts.WatchPaths)
}

// New initializes a fanotify group. Requires CAP_SYS_ADMIN.
func New(watchPaths []string) (*Client, error) {
	if len(watchPaths) == 0 {
		return nil, fmt.Errorf("no watch paths configured")
	}

	fd, err := unix.FanotifyInit(initFlags, eventFlags)
	if err != nil {
		return nil, fmt.Errorf("fanotify_init: %w (requires CAP_SYS_ADMIN)", err)
	}

	var pipe [2]int
	if err := unix.Pipe2(pipe[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("failed to create wake pipe: %w", err)
	}

	return &Client{
		fd:         fd,
		wakeR:      pipe[0],
		wakeW:      pipe[1],
		watchPaths: watchPaths,
		selfPID:    int32(os.Getpid()),
		pending:    make(map[events.ID]pendingEvent),
		recent:     newRecentSet(defaultRecentSize),
	}, nil
}

// Name returns the backend identifier.
func (c *Client) Name() string {
	return subsystem.BackendFanotify
}

// Subscribe marks every watch path for open permission events. Only
// auth_open can be expressed with fanotify.
func (c *Client) Subscribe(types []events.EventType) error {
	if len(types) == 0 {
		return fmt.Errorf("empty subscription")
	}

	for _, t := range types {
		if t != events.EventTypeAuthOpen {
			return fmt.Errorf("fanotify backend cannot deliver %s events", t)
		}
	}

	for _, p := range c.watchPaths {
		if err := unix.FanotifyMark(c.fd, markFlags, unix.FAN_OPEN_PERM, unix.AT_FDCWD, p); err != nil {
			return fmt.Errorf("fanotify_mark %s: %w", p, err)
		}
	}

	return nil
}

// Start reads permission events and hands each to h on its own goroutine
// until ctx is cancelled. In-flight callbacks finish before Start returns.
func (c *Client) Start(ctx context.Context, h subsystem.Handler) error {
	stop := context.AfterFunc(ctx, c.wake)
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	buf := make([]byte, readBufferSize)
	for {
		if ctx.Err() != nil {
			return nil
		}

		fds := []unix.PollFd{
			{Fd: int32(c.fd), Events: unix.POLLIN},
			{Fd: int32(c.wakeR), Events: unix.POLLIN},
		}

		if _, err := unix.Poll(fds, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("poll: %w", err)
		}

		if fds[1].Revents != 0 {
			return nil
		}

		if fds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(c.fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("read fanotify events: %w", err)
		}

		if err := c.dispatch(buf[:n], h, &wg); err != nil {
			return err
		}
	}
}

func (c *Client) dispatch(data []byte, h subsystem.Handler, wg *sync.WaitGroup) error {
	offset := 0
	for offset+metadataSize <= len(data) {
		md := (*unix.FanotifyEventMetadata)(unsafe.Pointer(&data[offset]))

		if md.Vers != unix.FANOTIFY_METADATA_VERSION {
			return fmt.Errorf("fanotify metadata version mismatch: got %d", md.Vers)
		}

		eventLen := int(md.Event_len)
		if eventLen < metadataSize || offset+eventLen > len(data) {
			return fmt.Errorf("malformed fanotify event length %d", eventLen)
		}
		offset += eventLen

		if md.Fd == unix.FAN_NOFD {
			log.Warnf("fanotify queue overflow, events were dropped")
			continue
		}

		if md.Mask&unix.FAN_OPEN_PERM == 0 {
			_ = unix.Close(int(md.Fd))
			continue
		}

		// Our own opens would wait on us.
		if md.Pid == c.selfPID {
			if err := writeResponse(c.fd, md.Fd, unix.FAN_ALLOW); err != nil {
				log.Errorf("failed to allow own open: %v", err)
			}
			_ = unix.Close(int(md.Fd))
			continue
		}

		event := c.register(md.Fd, md.Pid)
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnEvent(event)
		}()
	}

	return nil
}

func (c *Client) register(fd, pid int32) *events.Event {
	target, err := os.Readlink(fmt.Sprintf("/proc/self/fd/%d", fd))
	if err != nil {
		log.Debugf("failed to resolve target of fd %d: %v", fd, err)
		target = ""
	}

	actor, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid))
	if err != nil {
		actor = ""
	}

	event := events.NewOpenEvent([]byte(actor), []byte(target))
	event.Actor.PID = pid

	c.mu.Lock()
	c.pending[event.ID] = pendingEvent{fd: fd}
	c.mu.Unlock()

	return event
}

// Respond answers the permission event. Only the full permission mask is
// an allow; anything less is written as FAN_DENY. fanotify has no decision
// cache, so cacheable is ignored.
func (c *Client) Respond(id events.ID, permissions uint32, cacheable bool) response.AckOutcome {
	c.mu.Lock()
	p, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	closed := c.closed
	c.mu.Unlock()

	if !ok {
		if c.recent.contains(id) {
			return response.OutcomeDuplicateResponse
		}
		return response.OutcomeNotFound
	}

	c.recent.add(id)
	defer func() { _ = unix.Close(int(p.fd)) }()

	if closed {
		return response.OutcomeNotFound
	}

	verdict := uint32(unix.FAN_DENY)
	if permissions == response.PermissionAll {
		verdict = unix.FAN_ALLOW
	}

	return outcomeFromErr(writeResponse(c.fd, p.fd, verdict))
}

func writeResponse(groupFd int, eventFd int32, verdict uint32) error {
	buf := make([]byte, responseSize)
	binary.NativeEndian.PutUint32(buf[0:], uint32(eventFd))
	binary.NativeEndian.PutUint32(buf[4:], verdict)

	_, err := unix.Write(groupFd, buf)
	return err
}

func outcomeFromErr(err error) response.AckOutcome {
	switch {
	case err == nil:
		return response.OutcomeSuccess
	case errors.Is(err, unix.ENOENT):
		return response.OutcomeNotFound
	case errors.Is(err, unix.EINVAL):
		return response.OutcomeInvalidArgument
	default:
		return response.OutcomeInternalError
	}
}

func (c *Client) wake() {
	_, _ = unix.Write(c.wakeW, []byte{1})
}

// Close releases the fanotify group. The kernel allows any event still
// pending on it.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	var errs []error
	if err := unix.Close(c.fd); err != nil {
		errs = append(errs, fmt.Errorf("close fanotify fd: %w", err))
	}
	_ = unix.Close(c.wakeR)
	_ = unix.Close(c.wakeW)

	return errors.Join(errs...)
}

var _ subsystem.Client = (*Client)(nil)
