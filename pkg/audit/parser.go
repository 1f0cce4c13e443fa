package audit

import (
	"encoding/json"
)

// ParseLine decodes a single audit log line into an Event.
//
// The producer writes one JSON object per line with an RFC3339 timestamp; that
// grammar is an external contract this parser matches, it is not negotiable
// here. Unknown fields are tolerated. A line that does not decode to a
// timestamp plus a domain/action pair is reported as unparseable (ok == false)
// so callers can skip and count it: audit logs are append-only and a crash
// mid-write can leave a truncated tail, which must never poison the whole file.
func ParseLine(line []byte) (Event, bool) {
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return Event{}, false
	}
	if ev.Timestamp.IsZero() || ev.Domain == "" || ev.Action == "" {
		return Event{}, false
	}
	return ev, true
}
