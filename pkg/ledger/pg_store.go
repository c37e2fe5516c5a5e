package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is a PostgreSQL-backed ledger on a pgx connection pool. Schema is
// managed by the migrations under migrations/.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a ledger store on the given pool. Panics on a nil pool
// to fail fast during initialization.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("ledger: pgx pool is required")
	}
	return &PGStore{pool: pool}
}

// Append adds an event to the ledger.
func (s *PGStore) Append(ctx context.Context, event UsageEvent) error {
	if event.ProductID == "" || event.CustomerID == "" {
		return ErrMissingIdentifier
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO usage_events (product_id, customer_id, purchase_date, repurchase_date, observed_lifespan_days)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ProductID, event.CustomerID, event.PurchaseDate, event.RepurchaseDate, event.ObservedLifespanDays,
	)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// RecordPurchase appends an open purchase event and, within the same
// transaction, closes the most recent earlier open purchase of the pair.
func (s *PGStore) RecordPurchase(ctx context.Context, customerID, productID string, purchaseDate time.Time) (*UsageEvent, error) {
	if customerID == "" || productID == "" {
		return nil, ErrMissingIdentifier
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var closed *UsageEvent

	var prevDate time.Time
	err = tx.QueryRow(ctx, `
		SELECT purchase_date
		FROM usage_events
		WHERE customer_id = $1 AND product_id = $2 AND repurchase_date IS NULL
		ORDER BY purchase_date DESC
		LIMIT 1
		FOR UPDATE`,
		customerID, productID,
	).Scan(&prevDate)
	switch {
	case err == nil:
		c := UsageEvent{
			ProductID:    productID,
			CustomerID:   customerID,
			PurchaseDate: prevDate,
		}.CloseWith(purchaseDate)
		if _, err := tx.Exec(ctx, `
			INSERT INTO usage_events (product_id, customer_id, purchase_date, repurchase_date, observed_lifespan_days)
			VALUES ($1, $2, $3, $4, $5)`,
			c.ProductID, c.CustomerID, c.PurchaseDate, c.RepurchaseDate, c.ObservedLifespanDays,
		); err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		closed = &c
	case errors.Is(err, pgx.ErrNoRows):
		// First observed purchase for this pair.
	default:
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO usage_events (product_id, customer_id, purchase_date)
		VALUES ($1, $2, $3)`,
		productID, customerID, purchaseDate,
	); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return closed, nil
}

// EventsForProduct returns all events for a product in append order.
func (s *PGStore) EventsForProduct(ctx context.Context, productID string) ([]UsageEvent, error) {
	return s.query(ctx, `
		SELECT product_id, customer_id, purchase_date, repurchase_date, observed_lifespan_days
		FROM usage_events
		WHERE product_id = $1
		ORDER BY id`, productID)
}

// EventsForCustomerProduct returns all events for a pair in append order.
func (s *PGStore) EventsForCustomerProduct(ctx context.Context, customerID, productID string) ([]UsageEvent, error) {
	return s.query(ctx, `
		SELECT product_id, customer_id, purchase_date, repurchase_date, observed_lifespan_days
		FROM usage_events
		WHERE customer_id = $1 AND product_id = $2
		ORDER BY id`, customerID, productID)
}

// LastPurchase returns the most recent purchase date for the pair.
func (s *PGStore) LastPurchase(ctx context.Context, customerID, productID string) (time.Time, bool, error) {
	var last *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT MAX(purchase_date)
		FROM usage_events
		WHERE customer_id = $1 AND product_id = $2`,
		customerID, productID,
	).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, errors.Join(ErrStoreUnavailable, err)
	}
	if last == nil {
		return time.Time{}, false, nil
	}
	return *last, true, nil
}

func (s *PGStore) query(ctx context.Context, sql string, args ...any) ([]UsageEvent, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []UsageEvent
	for rows.Next() {
		var e UsageEvent
		if err := rows.Scan(&e.ProductID, &e.CustomerID, &e.PurchaseDate, &e.RepurchaseDate, &e.ObservedLifespanDays); err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return out, nil
}
