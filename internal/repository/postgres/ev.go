package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/EVCatalog/internal/domain"
	"github.com/utafrali/EVCatalog/pkg/database"
	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
)

const evColumns = `id, name, manufacturer, year, battery_size, range_wltp, cost, power, created_at, updated_at`

// evNameConstraint is the UNIQUE constraint on evs.name.
const evNameConstraint = "evs_name_key"

// EVRepository implements repository.EVRepository using PostgreSQL.
type EVRepository struct {
	pool database.DBTX
}

// NewEVRepository creates a new PostgreSQL-backed EV repository.
func NewEVRepository(pool database.DBTX) *EVRepository {
	return &EVRepository{pool: pool}
}

// Create inserts a new EV. The name check and the write are one statement,
// so two concurrent creates with the same name cannot both succeed.
func (r *EVRepository) Create(ctx context.Context, ev *domain.EV) (err error) {
	query := `
		INSERT INTO evs (id, name, manufacturer, year, battery_size, range_wltp, cost, power, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (name) DO NOTHING
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, "ev.create", query)
	defer func() { end(err) }()

	var id string
	err = r.pool.QueryRow(ctx, query,
		ev.ID,
		ev.Name,
		ev.Manufacturer,
		ev.Year,
		ev.BatterySize,
		ev.RangeWLTP,
		ev.Cost,
		ev.Power,
		ev.CreatedAt,
		ev.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.DuplicateName("ev", ev.Name)
		}
		return fmt.Errorf("insert ev: %w", err)
	}

	return nil
}

// GetByID retrieves an EV by its ID.
func (r *EVRepository) GetByID(ctx context.Context, id string) (_ *domain.EV, err error) {
	query := `SELECT ` + evColumns + ` FROM evs WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "ev.get", query)
	defer func() { end(err) }()

	var ev domain.EV
	err = scanEV(r.pool.QueryRow(ctx, query, id), &ev)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("ev", id)
		}
		return nil, fmt.Errorf("get ev: %w", err)
	}

	return &ev, nil
}

// List returns a page of EVs ordered by name with the total count.
func (r *EVRepository) List(ctx context.Context, limit, offset int) (_ []domain.EV, _ int, err error) {
	query := `
		SELECT ` + evColumns + `, count(*) OVER() AS total_count
		FROM evs
		ORDER BY name
		LIMIT $1 OFFSET $2`

	ctx, end := database.TraceQuery(ctx, "ev.list", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list evs: %w", err)
	}
	defer rows.Close()

	var (
		evs        []domain.EV
		totalCount int
	)
	for rows.Next() {
		var ev domain.EV
		if err = rows.Scan(
			&ev.ID,
			&ev.Name,
			&ev.Manufacturer,
			&ev.Year,
			&ev.BatterySize,
			&ev.RangeWLTP,
			&ev.Cost,
			&ev.Power,
			&ev.CreatedAt,
			&ev.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan ev row: %w", err)
		}
		evs = append(evs, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ev rows: %w", err)
	}

	if evs == nil {
		evs = []domain.EV{}
	}
	return evs, totalCount, nil
}

// FindByAttribute returns EVs whose attribute equals value. attr must come
// from domain.LookupAttribute; its column name is interpolated.
func (r *EVRepository) FindByAttribute(ctx context.Context, attr domain.Attribute, value any) ([]domain.EV, error) {
	query := fmt.Sprintf(`SELECT %s FROM evs WHERE %s = $1 ORDER BY name`, evColumns, attr.Column)
	return r.queryEVs(ctx, "ev.filter", query, value)
}

// FindInRange returns EVs whose attribute lies in [lower, upper].
func (r *EVRepository) FindInRange(ctx context.Context, attr domain.Attribute, lower, upper any) ([]domain.EV, error) {
	query := fmt.Sprintf(`SELECT %s FROM evs WHERE %s BETWEEN $1 AND $2 ORDER BY %s, name`,
		evColumns, attr.Column, attr.Column)
	return r.queryEVs(ctx, "ev.range", query, lower, upper)
}

// Update replaces every attribute of an existing EV.
func (r *EVRepository) Update(ctx context.Context, ev *domain.EV) (err error) {
	query := `
		UPDATE evs
		SET name = $1, manufacturer = $2, year = $3, battery_size = $4,
		    range_wltp = $5, cost = $6, power = $7, updated_at = $8
		WHERE id = $9`

	ctx, end := database.TraceQuery(ctx, "ev.update", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query,
		ev.Name,
		ev.Manufacturer,
		ev.Year,
		ev.BatterySize,
		ev.RangeWLTP,
		ev.Cost,
		ev.Power,
		ev.UpdatedAt,
		ev.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err, evNameConstraint) {
			return apperrors.DuplicateName("ev", ev.Name)
		}
		return fmt.Errorf("update ev: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("ev", ev.ID)
	}
	return nil
}

// Delete removes an EV by ID. Its reviews go with it (ON DELETE CASCADE).
// A missing row is not an error.
func (r *EVRepository) Delete(ctx context.Context, id string) (_ bool, err error) {
	query := `DELETE FROM evs WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "ev.delete", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete ev: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// NameExists reports whether any EV other than excludeID is called name.
func (r *EVRepository) NameExists(ctx context.Context, name, excludeID string) (_ bool, err error) {
	query := `SELECT EXISTS(SELECT 1 FROM evs WHERE name = $1 AND id::text <> $2)`

	ctx, end := database.TraceQuery(ctx, "ev.name_exists", query)
	defer func() { end(err) }()

	var exists bool
	if err = r.pool.QueryRow(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check ev name: %w", err)
	}
	return exists, nil
}

func (r *EVRepository) queryEVs(ctx context.Context, op, query string, args ...any) (_ []domain.EV, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query evs: %w", err)
	}
	defer rows.Close()

	evs := []domain.EV{}
	for rows.Next() {
		var ev domain.EV
		if err = scanEV(rows, &ev); err != nil {
			return nil, fmt.Errorf("scan ev row: %w", err)
		}
		evs = append(evs, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ev rows: %w", err)
	}
	return evs, nil
}

func scanEV(row pgx.Row, ev *domain.EV) error {
	return row.Scan(
		&ev.ID,
		&ev.Name,
		&ev.Manufacturer,
		&ev.Year,
		&ev.BatterySize,
		&ev.RangeWLTP,
		&ev.Cost,
		&ev.Power,
		&ev.CreatedAt,
		&ev.UpdatedAt,
	)
}
