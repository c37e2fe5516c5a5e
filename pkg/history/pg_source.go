package history

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSource reads purchase history from the order system's PostgreSQL schema.
type PGSource struct {
	pool  *pgxpool.Pool
	query string
}

// defaultQuery matches the purchases table created by the bundled migrations.
// Override with NewPGSourceQuery when the order system uses its own schema.
const defaultQuery = `
	SELECT customer_id, product_id, purchase_date
	FROM purchases
	WHERE customer_id = $1
	ORDER BY purchase_date`

// NewPGSource creates a history source on the given pool. Panics on a nil
// pool to fail fast during initialization.
func NewPGSource(pool *pgxpool.Pool) *PGSource {
	return NewPGSourceQuery(pool, defaultQuery)
}

// NewPGSourceQuery creates a history source with a custom query. The query
// must accept the customer ID as $1 and select customer_id, product_id and
// purchase_date.
func NewPGSourceQuery(pool *pgxpool.Pool, query string) *PGSource {
	if pool == nil {
		panic("history: pgx pool is required")
	}
	return &PGSource{pool: pool, query: query}
}

// Purchases returns the customer's purchase records.
func (s *PGSource) Purchases(ctx context.Context, customerID string) ([]Purchase, error) {
	rows, err := s.pool.Query(ctx, s.query, customerID)
	if err != nil {
		return nil, errors.Join(ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.CustomerID, &p.ProductID, &p.PurchaseDate); err != nil {
			return nil, errors.Join(ErrSourceUnavailable, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrSourceUnavailable, err)
	}
	return out, nil
}
