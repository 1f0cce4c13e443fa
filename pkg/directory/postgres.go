package directory

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	// Postgres driver
	_ "github.com/lib/pq"
)

// PostgresService reads the platform's organizational model from Postgres.
// The engine only ever reads; membership is written elsewhere.
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a directory backed by the given database
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

// Open connects to Postgres and returns a directory service over it
func Open(url string) (*PostgresService, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("opening directory database: %w", err)
	}
	return NewPostgresService(db), nil
}

// ResolveCaller implements Service.ResolveCaller
func (s *PostgresService) ResolveCaller(ctx context.Context, username string) (Caller, error) {
	query := `
		SELECT role, COALESCE(community_id, 0)
		FROM audit_administrators
		WHERE username = $1
	`
	caller := Caller{Username: username}
	err := s.db.QueryRowContext(ctx, query, username).Scan(&caller.Role, &caller.CommunityID)
	if err == sql.ErrNoRows {
		caller.Role = RoleMember
		return caller, nil
	}
	if err != nil {
		return Caller{}, fmt.Errorf("failed to resolve caller: %w", err)
	}
	return caller, nil
}

// GroupByToken implements Service.GroupByToken
func (s *PostgresService) GroupByToken(ctx context.Context, token string) (Group, error) {
	var (
		query string
		arg   interface{}
	)
	if id, err := strconv.ParseInt(token, 10, 64); err == nil {
		query = `SELECT id, name, community_id, created_at FROM groups WHERE id = $1`
		arg = id
	} else {
		query = `SELECT id, name, community_id, created_at FROM groups WHERE name = $1`
		arg = token
	}

	group := Group{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&group.ID, &group.Name, &group.CommunityID, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return Group{}, ErrNotFound
	}
	if err != nil {
		return Group{}, fmt.Errorf("failed to resolve group: %w", err)
	}
	return group, nil
}

// GroupsOfCommunity implements Service.GroupsOfCommunity
func (s *PostgresService) GroupsOfCommunity(ctx context.Context, communityID int64) ([]int64, error) {
	query := `SELECT id FROM groups WHERE community_id = $1 ORDER BY id ASC`
	rows, err := s.db.QueryContext(ctx, query, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list community groups: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UsersOfGroup implements Service.UsersOfGroup
func (s *PostgresService) UsersOfGroup(ctx context.Context, groupID int64) ([]string, error) {
	query := `SELECT username FROM group_members WHERE group_id = $1 ORDER BY username ASC`
	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("failed to scan username: %w", err)
		}
		users = append(users, username)
	}
	return users, rows.Err()
}

// SearchUsernames implements Service.SearchUsernames
func (s *PostgresService) SearchUsernames(ctx context.Context, term string, limit int) ([]string, error) {
	query := `
		SELECT username FROM users
		WHERE username LIKE $1 || '%'
		ORDER BY username ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, term, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search usernames: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan username: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
