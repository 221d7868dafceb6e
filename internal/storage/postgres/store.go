// Package postgres persists the ledger collections in postgres behind
// the same load/save ports as the flat-file store. Saves replace the
// whole collection inside one transaction, which keeps the accounting
// model's read-mutate-write step atomic at personal-ledger scale.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerbook/backend/internal/domain/ledger"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate bootstraps the schema. Repayments live inside their loan row:
// a repayment has no existence outside its loan.
func (s *Store) Migrate(ctx context.Context) error {
	q := `
CREATE TABLE IF NOT EXISTS borrowers (
  id    BIGINT PRIMARY KEY,
  name  TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS loans (
  id          BIGINT PRIMARY KEY,
  borrower_id BIGINT NOT NULL,
  amount      DOUBLE PRECISION NOT NULL,
  loan_type   TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  is_repaid   BOOLEAN NOT NULL DEFAULT FALSE,
  created_at  TIMESTAMPTZ NOT NULL,
  repayments  JSONB NOT NULL DEFAULT '[]'
);
`
	_, err := s.pool.Exec(ctx, q)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) LoadBorrowers(ctx context.Context) ([]ledger.Borrower, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, phone FROM borrowers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ledger.Borrower, 0)
	for rows.Next() {
		var b ledger.Borrower
		if err := rows.Scan(&b.ID, &b.Name, &b.Phone); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) SaveBorrowers(ctx context.Context, borrowers []ledger.Borrower) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM borrowers`); err != nil {
			return err
		}
		for _, b := range borrowers {
			if _, err := tx.Exec(ctx,
				`INSERT INTO borrowers (id, name, phone) VALUES ($1, $2, $3)`,
				b.ID, b.Name, b.Phone,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) LoadLoans(ctx context.Context) ([]ledger.Loan, error) {
	q := `
SELECT id, borrower_id, amount, loan_type, description, is_repaid, created_at, repayments
FROM loans ORDER BY id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ledger.Loan, 0)
	for rows.Next() {
		var item ledger.Loan
		var repayments []byte
		if err := rows.Scan(
			&item.ID, &item.BorrowerID, &item.Amount, &item.Type,
			&item.Description, &item.IsRepaid, &item.CreatedAt, &repayments,
		); err != nil {
			return nil, err
		}
		if len(repayments) > 0 {
			if err := json.Unmarshal(repayments, &item.Repayments); err != nil {
				return nil, fmt.Errorf("parse repayments for loan %d: %w", item.ID, err)
			}
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) SaveLoans(ctx context.Context, loans []ledger.Loan) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM loans`); err != nil {
			return err
		}
		for _, loan := range loans {
			repayments := loan.Repayments
			if repayments == nil {
				repayments = []ledger.Repayment{}
			}
			encoded, err := json.Marshal(repayments)
			if err != nil {
				return fmt.Errorf("encode repayments for loan %d: %w", loan.ID, err)
			}
			if _, err := tx.Exec(ctx, `
INSERT INTO loans (id, borrower_id, amount, loan_type, description, is_repaid, created_at, repayments)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				loan.ID, loan.BorrowerID, loan.Amount, loan.Type,
				loan.Description, loan.IsRepaid, loan.CreatedAt, encoded,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
