package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/price-tracker/internal/entity"
	"github.com/user/price-tracker/internal/repository"
)

const foreignKeyViolation = "23503"

// CompetitorRepoImpl provides a concrete implementation for the CompetitorRepository interface using PostgreSQL.
type CompetitorRepoImpl struct {
	db *pgxpool.Pool
}

// NewCompetitorRepo creates a new instance of CompetitorRepoImpl.
func NewCompetitorRepo(db *pgxpool.Pool) *CompetitorRepoImpl {
	return &CompetitorRepoImpl{db: db}
}

var _ repository.CompetitorRepository = (*CompetitorRepoImpl)(nil)

// Create inserts a competitor with a freshly generated id.
func (r *CompetitorRepoImpl) Create(ctx context.Context, c *entity.Competitor) error {
	id := uuid.NewString()
	query := `
		INSERT INTO competitors (id, product_id, url, name, current_price, last_checked, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db.Exec(ctx, query,
		id,
		c.ProductID,
		c.URL,
		c.Name,
		c.CurrentPrice,
		c.LastChecked,
		nullString(c.ImageURL),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("product %s: %w", c.ProductID, repository.ErrNotFound)
		}
		return fmt.Errorf("failed to insert competitor: %w", err)
	}
	c.ID = id
	return nil
}

// FindAll returns every stored competitor.
func (r *CompetitorRepoImpl) FindAll(ctx context.Context) ([]*entity.Competitor, error) {
	return queryCompetitors(ctx, r.db, `
		SELECT id, product_id, url, name, current_price, last_checked, image_url
		FROM competitors
		ORDER BY last_checked, id;
	`)
}

// FindByID retrieves a single competitor.
func (r *CompetitorRepoImpl) FindByID(ctx context.Context, id string) (*entity.Competitor, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, product_id, url, name, current_price, last_checked, image_url
		FROM competitors
		WHERE id = $1;
	`, id)
	c, err := scanCompetitor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// UpdatePrice sets current_price and last_checked in one statement.
func (r *CompetitorRepoImpl) UpdatePrice(ctx context.Context, id string, price float64, checkedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE competitors
		SET current_price = $2, last_checked = $3
		WHERE id = $1;
	`, id, price, checkedAt)
	if err != nil {
		return fmt.Errorf("failed to update competitor %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a competitor record if it exists.
func (r *CompetitorRepoImpl) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM competitors WHERE id = $1;`, id)
	return err
}

func queryCompetitors(ctx context.Context, db *pgxpool.Pool, query string, args ...any) ([]*entity.Competitor, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitors := []*entity.Competitor{}
	for rows.Next() {
		c, err := scanCompetitor(rows)
		if err != nil {
			return nil, err
		}
		competitors = append(competitors, c)
	}
	return competitors, rows.Err()
}

func scanCompetitor(row pgx.Row) (*entity.Competitor, error) {
	var c entity.Competitor
	var name, imageURL *string
	if err := row.Scan(
		&c.ID,
		&c.ProductID,
		&c.URL,
		&name,
		&c.CurrentPrice,
		&c.LastChecked,
		&imageURL,
	); err != nil {
		return nil, err
	}
	if name != nil {
		c.Name = *name
	}
	if imageURL != nil {
		c.ImageURL = *imageURL
	}
	return &c, nil
}
