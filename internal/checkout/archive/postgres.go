package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"milsabores/internal/checkout"
	id "milsabores/pkg/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS receipts (
	id          UUID PRIMARY KEY,
	customer_id UUID,
	issued_at   TIMESTAMPTZ NOT NULL,
	total       BIGINT NOT NULL,
	payload     JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS receipts_customer_issued_idx ON receipts (customer_id, issued_at DESC);
`

// PostgresArchive persists receipts as JSONB next to the columns they are
// queried by.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresArchive {
	return &PostgresArchive{pool: pool}
}

// EnsureSchema creates the receipts table if it does not exist.
func (a *PostgresArchive) EnsureSchema(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create receipts schema: %w", err)
	}
	return nil
}

func (a *PostgresArchive) Save(ctx context.Context, receipt checkout.Receipt) error {
	payload, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}
	var customer *uuid.UUID
	if owner, ok := receipt.CustomerID(); ok {
		u := uuid.UUID(owner)
		customer = &u
	}
	_, err = a.pool.Exec(ctx, `
		INSERT INTO receipts (id, customer_id, issued_at, total, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, uuid.UUID(receipt.ID()), customer, receipt.IssuedAt(), receipt.Total().Int64(), payload)
	if err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}
	return nil
}

func (a *PostgresArchive) ListByCustomer(ctx context.Context, customer id.UserID) ([]checkout.Receipt, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT payload FROM receipts
		WHERE customer_id = $1
		ORDER BY issued_at DESC
	`, uuid.UUID(customer))
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	out := []checkout.Receipt{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		var receipt checkout.Receipt
		if err := json.Unmarshal(payload, &receipt); err != nil {
			return nil, fmt.Errorf("decode receipt: %w", err)
		}
		out = append(out, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	return out, nil
}
