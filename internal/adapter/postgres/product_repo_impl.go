package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/price-tracker/internal/entity"
	"github.com/user/price-tracker/internal/repository"
)

// ProductRepoImpl provides a concrete implementation for the ProductRepository interface using PostgreSQL.
type ProductRepoImpl struct {
	db *pgxpool.Pool
}

// NewProductRepo creates a new instance of ProductRepoImpl.
func NewProductRepo(db *pgxpool.Pool) *ProductRepoImpl {
	return &ProductRepoImpl{db: db}
}

var _ repository.ProductRepository = (*ProductRepoImpl)(nil)

// Create inserts a product with a freshly generated id.
func (r *ProductRepoImpl) Create(ctx context.Context, p *entity.Product) error {
	id := uuid.NewString()
	query := `
		INSERT INTO products (id, name, your_price, url)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at;
	`
	if err := r.db.QueryRow(ctx, query, id, p.Name, p.YourPrice, nullString(p.URL)).Scan(&p.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	p.ID = id
	p.Competitors = []*entity.Competitor{}
	return nil
}

// FindAll returns all products, oldest first, with their competitors attached.
func (r *ProductRepoImpl) FindAll(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, your_price, url, created_at
		FROM products
		ORDER BY created_at, id;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*entity.Product{}
	byID := make(map[string]*entity.Product)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	competitors, err := queryCompetitors(ctx, r.db, `
		SELECT id, product_id, url, name, current_price, last_checked, image_url
		FROM competitors
		ORDER BY last_checked, id;
	`)
	if err != nil {
		return nil, err
	}
	for _, c := range competitors {
		// A product inserted after the first query has no entry yet; skip its competitors.
		if p, ok := byID[c.ProductID]; ok {
			p.Competitors = append(p.Competitors, c)
		}
	}

	return products, nil
}

// FindByID retrieves a product and its competitors.
func (r *ProductRepoImpl) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, your_price, url, created_at
		FROM products
		WHERE id = $1;
	`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	p.Competitors, err = queryCompetitors(ctx, r.db, `
		SELECT id, product_id, url, name, current_price, last_checked, image_url
		FROM competitors
		WHERE product_id = $1
		ORDER BY last_checked, id;
	`, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product and its competitors in a single transaction.
// The foreign key cascades as well; the explicit delete keeps the guarantee
// independent of how the table was created.
func (r *ProductRepoImpl) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM competitors WHERE product_id = $1;`, id); err != nil {
		return fmt.Errorf("failed to delete competitors of product %s: %w", id, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return tx.Commit(ctx)
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var url *string
	if err := row.Scan(&p.ID, &p.Name, &p.YourPrice, &url, &p.CreatedAt); err != nil {
		return nil, err
	}
	if url != nil {
		p.URL = *url
	}
	p.Competitors = []*entity.Competitor{}
	return &p, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
