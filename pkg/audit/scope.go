package audit

import (
	"context"
	"fmt"

	"github.com/opencollab/audittrail/pkg/directory"
)

// Scoper derives a VisibilityScope from a caller's directory role
type Scoper struct {
	dir Directory
}

// NewScoper creates a scoper backed by the given directory
func NewScoper(dir Directory) *Scoper {
	return &Scoper{dir: dir}
}

// ScopeFor returns the visibility scope the caller is entitled to.
//
// Platform admins get an unrestricted scope. A community admin gets the
// transitive membership of their community: every group added to it and every
// user in those groups. Any other caller gets an AuthorizationError; this is
// checked before criteria are evaluated so unauthorized requests never trigger
// a file scan.
func (s *Scoper) ScopeFor(ctx context.Context, caller directory.Caller) (VisibilityScope, error) {
	switch caller.Role {
	case directory.RolePlatformAdmin:
		return VisibilityScope{}, nil

	case directory.RoleCommunityAdmin:
		groupIDs, err := s.dir.GroupsOfCommunity(ctx, caller.CommunityID)
		if err != nil {
			return VisibilityScope{}, fmt.Errorf("listing groups of community %d: %w", caller.CommunityID, err)
		}

		scope := VisibilityScope{
			Usernames:    make(map[string]struct{}),
			GroupIDs:     make(map[int64]struct{}, len(groupIDs)),
			CommunityIDs: map[int64]struct{}{caller.CommunityID: {}},
		}
		for _, gid := range groupIDs {
			scope.GroupIDs[gid] = struct{}{}
			users, err := s.dir.UsersOfGroup(ctx, gid)
			if err != nil {
				return VisibilityScope{}, fmt.Errorf("listing users of group %d: %w", gid, err)
			}
			for _, u := range users {
				scope.Usernames[u] = struct{}{}
			}
		}
		return scope, nil

	default:
		return VisibilityScope{}, &AuthorizationError{Username: caller.Username}
	}
}
