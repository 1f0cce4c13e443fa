package directory

import "context"

// Service provides the read-only membership and identity lookups consumed by
// the audit engine. Implementations must be safe for concurrent use.
type Service interface {
	// ResolveCaller returns the role and affiliation of the given username.
	// Unknown usernames resolve to RoleMember rather than an error.
	ResolveCaller(ctx context.Context, username string) (Caller, error)

	// GroupByToken resolves a group identifier as supplied by an interactive
	// caller: either a decimal group id or an exact group name. Returns
	// ErrNotFound for tokens that do not name a known group.
	GroupByToken(ctx context.Context, token string) (Group, error)

	// GroupsOfCommunity returns the ids of every group added to the community
	GroupsOfCommunity(ctx context.Context, communityID int64) ([]int64, error)

	// UsersOfGroup returns the usernames of every member of the group
	UsersOfGroup(ctx context.Context, groupID int64) ([]string, error)

	// SearchUsernames returns up to limit usernames starting with term,
	// in lexical order
	SearchUsernames(ctx context.Context, term string, limit int) ([]string, error)
}
