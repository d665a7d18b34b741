package fanotify

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/safedep/authgate/core/events"
	"github.com/safedep/authgate/core/response"
)

func TestOutcomeFromErr(t *testing.T) {
	testCases := []struct {
		err      error
		expected response.AckOutcome
	}{
		{nil, response.OutcomeSuccess},
		{unix.ENOENT, response.OutcomeNotFound},
		{fmt.Errorf("write: %w", unix.ENOENT), response.OutcomeNotFound},
		{unix.EINVAL, response.OutcomeInvalidArgument},
		{unix.EBADF, response.OutcomeInternalError},
		{unix.EIO, response.OutcomeInternalError},
	}

	for _, tc := range testCases {
		t.Run(tc.expected.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, outcomeFromErr(tc.err))
		})
	}
}

func TestWriteResponse_Layout(t *testing.T) {
	var p [2]int
	require.NoError(t, unix.Pipe(p[:]))
	defer unix.Close(p[0])
	defer unix.Close(p[1])

	require.NoError(t, writeResponse(p[1], 42, unix.FAN_DENY))

	buf := make([]byte, responseSize)
	n, err := unix.Read(p[0], buf)
	require.NoError(t, err)
	require.Equal(t, responseSize, n)

	assert.Equal(t, uint32(42), binary.NativeEndian.Uint32(buf[0:]))
	assert.Equal(t, uint32(unix.FAN_DENY), binary.NativeEndian.Uint32(buf[4:]))
}

func TestRespond_UnknownAndDuplicate(t *testing.T) {
	var p [2]int
	require.NoError(t, unix.Pipe(p[:]))
	defer unix.Close(p[0])
	defer unix.Close(p[1])

	// A pipe stands in for the fanotify group fd; a dup stands in for the
	// event fd that Respond closes.
	eventFd, err := unix.Dup(p[0])
	require.NoError(t, err)

	c := &Client{
		fd:      p[1],
		pending: make(map[events.ID]pendingEvent),
		recent:  newRecentSet(8),
	}

	id := events.NewID()
	c.pending[id] = pendingEvent{fd: int32(eventFd)}

	assert.Equal(t, response.OutcomeSuccess, c.Respond(id, response.PermissionAll, true))
	assert.Equal(t, response.OutcomeDuplicateResponse, c.Respond(id, response.PermissionAll, true))
	assert.Equal(t, response.OutcomeNotFound, c.Respond(events.NewID(), 0, true))

	buf := make([]byte, responseSize)
	n, err := unix.Read(p[0], buf)
	require.NoError(t, err)
	require.Equal(t, responseSize, n)
	assert.Equal(t, uint32(unix.FAN_ALLOW), binary.NativeEndian.Uint32(buf[4:]))
}

func TestSubscribe_RejectsUnsupportedTypes(t *testing.T) {
	c := &Client{}
	assert.Error(t, c.Subscribe(nil))
	assert.Error(t, c.Subscribe([]events.EventType{events.EventTypeAuthExec}))
}
