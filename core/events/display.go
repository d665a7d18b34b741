package events

// DefaultDisplayMax bounds how many bytes of an untrusted path end up in
// diagnostics.
const DefaultDisplayMax = 256

const truncationMarker = "..."

// DisplayPath renders at most max bytes of an untrusted byte sequence as a
// printable string. Bytes outside printable ASCII are replaced with '?', and
// a truncated value ends with "...". The result is a copy and never aliases
// the input.
func DisplayPath(b []byte, max int) string {
	if max <= 0 {
		max = DefaultDisplayMax
	}

	truncated := false
	if len(b) > max {
		b = b[:max]
		truncated = true
	}

	size := len(b)
	if truncated {
		size += len(truncationMarker)
	}

	buf := make([]byte, 0, size)
	for _, c := range b {
		if c >= 32 && c < 127 {
			buf = append(buf, c)
		} else {
			buf = append(buf, '?')
		}
	}

	if truncated {
		buf = append(buf, truncationMarker...)
	}

	return string(buf)
}

// DisplayTarget renders the declared target path of the event for
// diagnostics, without reading beyond either the declared length or the
// buffer.
func (e *Event) DisplayTarget(max int) string {
	if e.Open == nil {
		return ""
	}

	if target, ok := e.Target(); ok {
		return DisplayPath(target, max)
	}

	// Malformed length: show what the buffer holds, bounded by its own size.
	return DisplayPath(e.Open.TargetPath, max)
}

// DisplayActor renders the actor executable path for diagnostics.
func (e *Event) DisplayActor(max int) string {
	return DisplayPath(e.Actor.ExecutablePath, max)
}
