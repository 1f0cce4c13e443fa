package directory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MemoryService is an in-memory directory, used in tests and in standalone
// deployments without a platform database. Safe for concurrent use.
type MemoryService struct {
	mu           sync.RWMutex
	callers      map[string]Caller
	groups       map[int64]Group
	groupsByName map[string]int64
	members      map[int64][]string
	usernames    map[string]struct{}
}

// NewMemoryService creates an empty in-memory directory
func NewMemoryService() *MemoryService {
	return &MemoryService{
		callers:      make(map[string]Caller),
		groups:       make(map[int64]Group),
		groupsByName: make(map[string]int64),
		members:      make(map[int64][]string),
		usernames:    make(map[string]struct{}),
	}
}

// AddCaller registers a caller with an administrative role
func (m *MemoryService) AddCaller(caller Caller) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callers[caller.Username] = caller
	m.usernames[caller.Username] = struct{}{}
}

// AddGroup registers a group within a community
func (m *MemoryService) AddGroup(group Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[group.ID] = group
	m.groupsByName[group.Name] = group.ID
}

// AddMember adds a username to a group
func (m *MemoryService) AddMember(groupID int64, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[groupID] = append(m.members[groupID], username)
	m.usernames[username] = struct{}{}
}

// ResolveCaller implements Service.ResolveCaller
func (m *MemoryService) ResolveCaller(ctx context.Context, username string) (Caller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if caller, ok := m.callers[username]; ok {
		return caller, nil
	}
	return Caller{Username: username, Role: RoleMember}, nil
}

// GroupByToken implements Service.GroupByToken
func (m *MemoryService) GroupByToken(ctx context.Context, token string) (Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, err := strconv.ParseInt(token, 10, 64); err == nil {
		if group, ok := m.groups[id]; ok {
			return group, nil
		}
		return Group{}, ErrNotFound
	}
	if id, ok := m.groupsByName[token]; ok {
		return m.groups[id], nil
	}
	return Group{}, ErrNotFound
}

// GroupsOfCommunity implements Service.GroupsOfCommunity
func (m *MemoryService) GroupsOfCommunity(ctx context.Context, communityID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []int64
	for id, group := range m.groups {
		if group.CommunityID == communityID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// UsersOfGroup implements Service.UsersOfGroup
func (m *MemoryService) UsersOfGroup(ctx context.Context, groupID int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]string, len(m.members[groupID]))
	copy(users, m.members[groupID])
	return users, nil
}

// SearchUsernames implements Service.SearchUsernames
func (m *MemoryService) SearchUsernames(ctx context.Context, term string, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for name := range m.usernames {
		if strings.HasPrefix(name, term) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}
