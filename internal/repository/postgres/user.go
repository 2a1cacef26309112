package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/EVCatalog/internal/domain"
	"github.com/utafrali/EVCatalog/pkg/database"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// Ensure creates the profile if it does not exist and returns the stored
// row. An existing profile keeps its name.
func (r *UserRepository) Ensure(ctx context.Context, id, name string) (_ *domain.User, err error) {
	insert := `
		INSERT INTO users (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`

	ctx, end := database.TraceQuery(ctx, "user.ensure", insert)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, insert, id, name); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	var u domain.User
	err = r.pool.QueryRow(ctx, `SELECT id, name, created_at FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
