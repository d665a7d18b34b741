// Package replay drives recorded events through the real decision pipeline
// over the in-memory backend, for policy regression testing.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/safedep/authgate/core/events"
	"github.com/safedep/authgate/core/response"
	"github.com/safedep/authgate/core/security"
)

const maxLineSize = 1 << 20

// Record is one line of a JSONL fixture.
type Record struct {
	// ID is an optional event UUID. A fresh one is assigned when empty.
	ID string `json:"id,omitempty"`
	// Type defaults to auth_open.
	Type string `json:"type,omitempty"`
	// Actor is the acting executable path.
	Actor string `json:"actor"`
	// Target is the target path buffer.
	Target string `json:"target"`
	// TargetLength overrides the declared target length, to model
	// malformed events.
	TargetLength *int `json:"target_length,omitempty"`
	// Inject forces the acknowledgment the backend returns.
	Inject string `json:"inject,omitempty"`
	// Expired makes the backend treat the event as past its deadline.
	Expired bool `json:"expired,omitempty"`
	// Expect is the expected decision, "allow" or "deny".
	Expect string `json:"expect,omitempty"`

	// Line is the 1-based line number in the fixture.
	Line int `json:"-"`
}

// ReadRecords parses a JSONL fixture. Blank lines and lines starting with #
// are skipped.
func ReadRecords(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []Record
	seen := make(map[string]int)
	line := 0
	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec.Line = line

		if err := rec.validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if rec.ID != "" {
			if first, ok := seen[rec.ID]; ok {
				return nil, fmt.Errorf("line %d: id %s already used on line %d", line, rec.ID, first)
			}
			seen[rec.ID] = line
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	return records, nil
}

func (r Record) validate() error {
	if r.ID != "" {
		if _, err := uuid.Parse(r.ID); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
	}

	if r.Inject != "" {
		if _, err := response.ParseOutcome(r.Inject); err != nil {
			return err
		}
	}

	if r.Expect != "" {
		if _, err := security.ParseDecision(r.Expect); err != nil {
			return fmt.Errorf("invalid expect: %w", err)
		}
	}

	return nil
}

// Event builds the event the record describes. Unknown types are kept as
// is so that their handling can be replayed too.
func (r Record) Event() *events.Event {
	event := events.NewOpenEvent([]byte(r.Actor), []byte(r.Target))

	if r.ID != "" {
		event.ID = uuid.MustParse(r.ID)
	}

	if r.Type != "" {
		event.Type = events.EventType(r.Type)
	}

	if r.TargetLength != nil {
		event.Open.TargetLength = *r.TargetLength
	}

	if r.Expired {
		event.Deadline = time.Unix(0, 0)
	}

	return event
}
