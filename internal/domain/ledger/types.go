package ledger

import (
	"context"
	"strings"
	"time"
)

type LoanType string

const (
	TypeLend   LoanType = "lend"
	TypeBorrow LoanType = "borrow"
)

type Borrower struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

type Repayment struct {
	ID     int64   `json:"id"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
	Note   string  `json:"note,omitempty"`
}

type Loan struct {
	ID          int64       `json:"id"`
	BorrowerID  int64       `json:"borrowerId"`
	Amount      float64     `json:"amount"`
	Type        LoanType    `json:"type"`
	Description string      `json:"description"`
	IsRepaid    bool        `json:"is_repaid"`
	CreatedAt   time.Time   `json:"created_at"`
	Repayments  []Repayment `json:"repayments,omitempty"`
}

type AddBorrowerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type CreateLoanInput struct {
	BorrowerID  int64    `json:"borrowerId"`
	Amount      float64  `json:"amount"`
	Type        LoanType `json:"type"`
	Description string   `json:"description"`
}

// RecordRepaymentInput accepts the date under either key; the classic
// web client posts repayment_date.
type RecordRepaymentInput struct {
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	RepaymentDate string  `json:"repayment_date"`
	Note          string  `json:"note"`
}

// EffectiveDate resolves the posted date, preferring the short key.
func (in RecordRepaymentInput) EffectiveDate() string {
	if d := strings.TrimSpace(in.Date); d != "" {
		return d
	}
	return strings.TrimSpace(in.RepaymentDate)
}

// Receivable mirrors the three figures the dashboard shows for money
// owed to the ledger owner: the gross per-borrower positive nets, the
// principal of fully repaid lend loans, and the outstanding remainder.
type Receivable struct {
	Total       float64 `json:"total"`
	Repaid      float64 `json:"repaid"`
	Outstanding float64 `json:"outstanding"`
}

type Totals struct {
	TotalReceivable Receivable `json:"total_receivable"`
	TotalDebt       float64    `json:"total_debt"`
}

type BorrowerBalance struct {
	BorrowerID int64   `json:"borrowerId"`
	Name       string  `json:"name"`
	Net        float64 `json:"net"`
}

type Summary struct {
	Totals        Totals            `json:"totals"`
	Balances      []BorrowerBalance `json:"balances"`
	OrphanLoanIDs []int64           `json:"orphan_loan_ids,omitempty"`
}

// BorrowerStore and LoanStore are the persistence ports. A missing or
// empty backing store loads as an empty collection, never an error.
type BorrowerStore interface {
	LoadBorrowers(ctx context.Context) ([]Borrower, error)
	SaveBorrowers(ctx context.Context, borrowers []Borrower) error
}

type LoanStore interface {
	LoadLoans(ctx context.Context) ([]Loan, error)
	SaveLoans(ctx context.Context, loans []Loan) error
}

// EventSink receives a notification after every successful mutation.
// Scope is one of "borrowers", "loans" or "summary".
type EventSink interface {
	LedgerChanged(scope, event string)
}
