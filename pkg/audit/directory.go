package audit

import (
	"context"

	"github.com/opencollab/audittrail/pkg/directory"
)

// Directory is the narrow view of the platform directory the engine consumes.
// directory.Service satisfies it.
type Directory interface {
	GroupByToken(ctx context.Context, token string) (directory.Group, error)
	GroupsOfCommunity(ctx context.Context, communityID int64) ([]int64, error)
	UsersOfGroup(ctx context.Context, groupID int64) ([]string, error)
	SearchUsernames(ctx context.Context, term string, limit int) ([]string, error)
}
