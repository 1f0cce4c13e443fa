package directory

import (
	"errors"
	"time"
)

// ErrNotFound indicates the requested user, group, or community does not exist
var ErrNotFound = errors.New("directory: not found")

// Role represents a caller's administrative authority over the audit trail
type Role string

const (
	// RolePlatformAdmin may query the full audit trail
	RolePlatformAdmin Role = "platform_admin"
	// RoleCommunityAdmin may query only the membership of one community
	RoleCommunityAdmin Role = "community_admin"
	// RoleMember holds no audit privilege
	RoleMember Role = "member"
)

// Caller identifies the authenticated principal making a request. Identity is
// established upstream; the directory only resolves role and affiliation.
type Caller struct {
	Username    string `json:"username"`
	Role        Role   `json:"role"`
	CommunityID int64  `json:"community_id,omitempty"`
}

// Group is an organizational group inside a community
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	CommunityID int64     `json:"community_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Community is an organizational grouping of one or more groups
type Community struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
