package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		ok   bool
	}{
		{
			name: "full event",
			line: `{"timestamp":"2014-05-16T08:00:00Z","domain":"record","action":"CREATE","username":"u-pi1","global_id":"SD10001","description":"created record","group":"101","community":"7"}`,
			ok:   true,
		},
		{
			name: "minimal event",
			line: `{"timestamp":"2014-05-16T08:00:00Z","domain":"system","action":"UPDATE"}`,
			ok:   true,
		},
		{
			name: "unknown fields tolerated",
			line: `{"timestamp":"2014-05-16T08:00:00Z","domain":"user","action":"LOGIN","session":"abc"}`,
			ok:   true,
		},
		{
			name: "missing timestamp",
			line: `{"domain":"record","action":"CREATE"}`,
			ok:   false,
		},
		{
			name: "missing domain",
			line: `{"timestamp":"2014-05-16T08:00:00Z","action":"CREATE"}`,
			ok:   false,
		},
		{
			name: "missing action",
			line: `{"timestamp":"2014-05-16T08:00:00Z","domain":"record"}`,
			ok:   false,
		},
		{
			name: "truncated tail",
			line: `{"timestamp":"2014-05-16T08:0`,
			ok:   false,
		},
		{
			name: "not json",
			line: `corrupt garbage line`,
			ok:   false,
		},
		{
			name: "non rfc3339 timestamp",
			line: `{"timestamp":"16/05/2014 08:00","domain":"record","action":"CREATE"}`,
			ok:   false,
		},
		{
			name: "empty line",
			line: ``,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := ParseLine([]byte(tt.line))
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Equal(t, Event{}, ev)
			}
		})
	}
}

func TestParseLineFields(t *testing.T) {
	line := `{"timestamp":"2014-05-16T08:00:00Z","domain":"record","action":"CREATE","username":"u-pi1","global_id":"SD10001","description":"created record","group":"101","community":"7"}`
	ev, ok := ParseLine([]byte(line))
	require.True(t, ok)

	assert.True(t, ev.Timestamp.Equal(time.Date(2014, 5, 16, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, DomainRecord, ev.Domain)
	assert.Equal(t, ActionCreate, ev.Action)
	assert.Equal(t, "u-pi1", ev.Username)
	assert.Equal(t, "SD10001", ev.GlobalID)
	assert.Equal(t, "created record", ev.Description)
	assert.Equal(t, "101", ev.Group)
	assert.Equal(t, "7", ev.Community)
}
