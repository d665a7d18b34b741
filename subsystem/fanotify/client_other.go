//go:build !linux

package fanotify

import (
	"github.com/safedep/authgate/subsystem"
)

// Factory reports that fanotify is only available on Linux.
func Factory(_ subsystem.Options) (subsystem.Client, error) {
	return nil, subsystem.ErrUnsupportedPlatform
}
