package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opencollab/audittrail/pkg/directory"
)

// ev builds a fixture event. Empty strings leave optional fields absent.
func ev(ts string, domain Domain, action Action, user, gid, desc, group, community string) Event {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return Event{
		Timestamp:   t,
		Domain:      domain,
		Action:      action,
		Username:    user,
		GlobalID:    gid,
		Description: desc,
		Group:       group,
		Community:   community,
	}
}

// Events before the canonical query window 2014-05-16..2014-05-19
func oldEvents() []Event {
	return []Event{
		ev("2014-05-14T08:00:00Z", DomainUser, ActionLogin, "u-pi1", "", "", "", ""),
		ev("2014-05-15T08:00:00Z", DomainRecord, ActionCreate, "u-pi1", "SD00001", "", "101", "7"),
		ev("2014-05-15T09:00:00Z", DomainUser, ActionLogout, "u-pi1", "", "", "", ""),
	}
}

// 12 events on 2014-05-16 and 2014-05-17, ascending
func midEvents() []Event {
	return []Event{
		ev("2014-05-16T08:00:00Z", DomainRecord, ActionCreate, "u-pi1", "SD10001", "created record", "101", "7"),
		ev("2014-05-16T09:00:00Z", DomainRecord, ActionUpdate, "u-pi2", "SD10001", "", "102", "7"),
		ev("2014-05-16T10:00:00Z", DomainUser, ActionLogin, "outsider", "", "", "", ""),
		ev("2014-05-16T11:00:00Z", DomainSharing, ActionShare, "u-pi1", "SD10002", "shared with G2", "101", "7"),
		ev("2014-05-16T12:00:00Z", DomainSystem, ActionUpdate, "root-admin", "", "maintenance window", "", ""),
		ev("2014-05-17T08:00:00Z", DomainRecord, ActionDelete, "u-pi1", "SD10001", "", "101", "7"),
		ev("2014-05-17T09:00:00Z", DomainUser, ActionLogin, "u-pi2", "", "", "", ""),
		ev("2014-05-17T10:00:00Z", DomainRecord, ActionCreate, "outsider", "SD20001", "", "", ""),
		ev("2014-05-17T11:00:00Z", DomainGroup, ActionUpdate, "u-pi1", "", "renamed group", "101", "7"),
		ev("2014-05-17T12:00:00Z", DomainRecord, ActionRead, "u-pi2", "SD10002", "", "102", "7"),
		// Same timestamp on purpose: file-then-line order must break the tie
		ev("2014-05-17T13:00:00Z", DomainUser, ActionCreate, "root-admin", "", "provisioned account", "", ""),
		ev("2014-05-17T13:00:00Z", DomainUser, ActionLogout, "u-pi1", "", "", "", ""),
	}
}

// 14 events on 2014-05-18 and 2014-05-19, ascending
func newEvents() []Event {
	return []Event{
		ev("2014-05-18T08:00:00Z", DomainRecord, ActionCreate, "u-pi1", "SD30001", "", "101", "7"),
		ev("2014-05-18T09:00:00Z", DomainRecord, ActionUpdate, "u-pi2", "SD30001", "", "102", "7"),
		ev("2014-05-18T10:00:00Z", DomainRecord, ActionDelete, "outsider", "SD20001", "", "", ""),
		ev("2014-05-18T11:00:00Z", DomainCommunity, ActionCreate, "root-admin", "", "", "", "9"),
		ev("2014-05-18T12:00:00Z", DomainSharing, ActionUnshare, "u-pi1", "SD10002", "", "101", "7"),
		ev("2014-05-18T13:00:00Z", DomainUser, ActionLogin, "u-pi2", "", "", "", ""),
		ev("2014-05-19T08:00:00Z", DomainRecord, ActionRead, "u-pi1", "SD30001", "", "101", "7"),
		ev("2014-05-19T09:00:00Z", DomainUser, ActionLogin, "outsider", "", "", "", ""),
		ev("2014-05-19T10:00:00Z", DomainGroup, ActionUpdate, "u-pi2", "", "", "102", "7"),
		ev("2014-05-19T11:00:00Z", DomainSystem, ActionDelete, "root-admin", "", "", "", ""),
		ev("2014-05-19T12:00:00Z", DomainRecord, ActionUpdate, "u-pi1", "SD30001", `updated "Q3 report", fields: title, status`, "101", "7"),
		ev("2014-05-19T13:00:00Z", DomainRecord, ActionDelete, "u-pi2", "SD30002", "", "102", "7"),
		ev("2014-05-19T14:00:00Z", DomainRecord, ActionCreate, "outsider", "SD40001", "", "", ""),
		ev("2014-05-19T15:00:00Z", DomainUser, ActionDelete, "root-admin", "", "deactivated account", "", ""),
	}
}

// inRangeEvents returns the 26 fixture events inside 2014-05-16..2014-05-19,
// in write order (mid file first, then new file)
func inRangeEvents() []Event {
	return append(midEvents(), newEvents()...)
}

func eventLine(t *testing.T, event Event) string {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return string(data)
}

func writeLogFile(t *testing.T, folder, name string, lines []string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(folder, name)
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func eventLines(t *testing.T, events []Event) []string {
	t.Helper()
	lines := make([]string, len(events))
	for i, event := range events {
		lines[i] = eventLine(t, event)
	}
	return lines
}

// writeFixture lays out the canonical three-file log folder: a live log, one
// rotated sibling, one rotated sibling entirely before the query window, plus
// malformed lines and an unrelated file. Modification times are pinned so the
// locator order is deterministic.
func writeFixture(t *testing.T) string {
	t.Helper()
	folder := t.TempDir()

	oldLines := eventLines(t, oldEvents())
	writeLogFile(t, folder, "audit-2014-05-15.log", oldLines,
		time.Date(2014, 5, 15, 23, 59, 0, 0, time.UTC))

	midLines := eventLines(t, midEvents())
	midLines = append(midLines[:6:6], append([]string{"corrupt garbage line"}, midLines[6:]...)...)
	writeLogFile(t, folder, "audit-2014-05-17.log", midLines,
		time.Date(2014, 5, 17, 14, 0, 0, 0, time.UTC))

	newLines := eventLines(t, newEvents())
	newLines = append(newLines, `{"timestamp":"2014-05-19T1`)
	writeLogFile(t, folder, "audit.log", newLines,
		time.Date(2014, 5, 19, 15, 30, 0, 0, time.UTC))

	writeLogFile(t, folder, "other.log", []string{"not an audit log"},
		time.Date(2014, 5, 19, 15, 30, 0, 0, time.UTC))

	return folder
}

// seedDirectory builds the canonical membership fixture: community 7 holds
// group 101 "G1" (member u-pi1) and group 102 "G2" (member u-pi2)
func seedDirectory() *directory.MemoryService {
	dir := directory.NewMemoryService()
	dir.AddGroup(directory.Group{ID: 101, Name: "G1", CommunityID: 7})
	dir.AddGroup(directory.Group{ID: 102, Name: "G2", CommunityID: 7})
	dir.AddMember(101, "u-pi1")
	dir.AddMember(102, "u-pi2")
	dir.AddCaller(directory.Caller{Username: "root-admin", Role: directory.RolePlatformAdmin})
	dir.AddCaller(directory.Caller{Username: "comm-admin", Role: directory.RoleCommunityAdmin, CommunityID: 7})
	dir.AddCaller(directory.Caller{Username: "mallory", Role: directory.RoleMember})
	return dir
}

func newTestEngine(t *testing.T, folder string) *Engine {
	t.Helper()
	return NewEngine(NewLocator(folder, "audit"), seedDirectory(), nil, nil, nil)
}

func datePtr(s string) *time.Time {
	t, err := time.ParseInLocation(DateFormat, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return &t
}

func countEvents(events []Event, pred func(Event) bool) int {
	n := 0
	for _, event := range events {
		if pred(event) {
			n++
		}
	}
	return n
}

// sortedDesc returns the fixture events in expected result order: timestamp
// descending, with the newer file's events ranking ahead on equal timestamps
func sortedDesc(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
