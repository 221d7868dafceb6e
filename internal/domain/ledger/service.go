package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service runs every mutation as one logical step: load the full
// collection, apply the pure accounting function, write the collection
// back. It performs no I/O of its own beyond the storage ports and
// assumes a single writer (last write wins).
type Service struct {
	borrowerStore BorrowerStore
	loanStore     LoanStore
	events        EventSink
	now           func() time.Time
	lastID        int64
}

func NewService(borrowerStore BorrowerStore, loanStore LoanStore, events EventSink) *Service {
	return &Service{
		borrowerStore: borrowerStore,
		loanStore:     loanStore,
		events:        events,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// nextID derives ids from the creation-time millisecond clock, bumped
// past the previous id when two creations land in the same millisecond.
func (s *Service) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Service) emit(scope, event string) {
	if s.events != nil {
		s.events.LedgerChanged(scope, event)
	}
}

func (s *Service) Borrowers(ctx context.Context) ([]Borrower, error) {
	borrowers, err := s.borrowerStore.LoadBorrowers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load borrowers: %w", err)
	}
	return borrowers, nil
}

func (s *Service) AddBorrower(ctx context.Context, in AddBorrowerInput) (*Borrower, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	borrowers, err := s.borrowerStore.LoadBorrowers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load borrowers: %w", err)
	}

	created := Borrower{
		ID:    s.nextID(),
		Name:  name,
		Phone: strings.TrimSpace(in.Phone),
	}
	if err := s.borrowerStore.SaveBorrowers(ctx, append(borrowers, created)); err != nil {
		return nil, fmt.Errorf("save borrowers: %w", err)
	}

	s.emit("borrowers", "borrower_added")
	return &created, nil
}

// DeleteBorrower refuses to remove a borrower that any loan still
// references, regardless of those loans' repayment state.
func (s *Service) DeleteBorrower(ctx context.Context, borrowerID int64) error {
	loans, err := s.loanStore.LoadLoans(ctx)
	if err != nil {
		return fmt.Errorf("load loans: %w", err)
	}
	for _, loan := range loans {
		if loan.BorrowerID == borrowerID {
			return ErrHasDependentLoans
		}
	}

	borrowers, err := s.borrowerStore.LoadBorrowers(ctx)
	if err != nil {
		return fmt.Errorf("load borrowers: %w", err)
	}

	idx := -1
	for i, b := range borrowers {
		if b.ID == borrowerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrBorrowerNotFound
	}

	remaining := append(append([]Borrower(nil), borrowers[:idx]...), borrowers[idx+1:]...)
	if err := s.borrowerStore.SaveBorrowers(ctx, remaining); err != nil {
		return fmt.Errorf("save borrowers: %w", err)
	}

	s.emit("borrowers", "borrower_deleted")
	return nil
}

func (s *Service) Loans(ctx context.Context) ([]Loan, error) {
	loans, err := s.loanStore.LoadLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	return loans, nil
}

func (s *Service) CreateLoan(ctx context.Context, in CreateLoanInput) (*Loan, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	loanType := in.Type
	if loanType == "" {
		loanType = TypeLend
	}
	if loanType != TypeLend && loanType != TypeBorrow {
		return nil, ErrInvalidLoanType
	}

	borrowers, err := s.borrowerStore.LoadBorrowers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load borrowers: %w", err)
	}
	found := false
	for _, b := range borrowers {
		if b.ID == in.BorrowerID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrUnknownBorrower
	}

	loans, err := s.loanStore.LoadLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}

	created := Loan{
		ID:          s.nextID(),
		BorrowerID:  in.BorrowerID,
		Amount:      in.Amount,
		Type:        loanType,
		Description: strings.TrimSpace(in.Description),
		IsRepaid:    false,
		CreatedAt:   s.now(),
	}
	if err := s.loanStore.SaveLoans(ctx, append(loans, created)); err != nil {
		return nil, fmt.Errorf("save loans: %w", err)
	}

	s.emit("loans", "loan_created")
	return &created, nil
}

func (s *Service) DeleteLoan(ctx context.Context, loanID int64) error {
	loans, err := s.loanStore.LoadLoans(ctx)
	if err != nil {
		return fmt.Errorf("load loans: %w", err)
	}

	idx := -1
	for i, loan := range loans {
		if loan.ID == loanID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrLoanNotFound
	}

	remaining := append(append([]Loan(nil), loans[:idx]...), loans[idx+1:]...)
	if err := s.loanStore.SaveLoans(ctx, remaining); err != nil {
		return fmt.Errorf("save loans: %w", err)
	}

	s.emit("loans", "loan_deleted")
	return nil
}

// ToggleRepaid flips the is_repaid flag directly, independent of the
// repayment-derived recomputation. The manual override and the derived
// flag can disagree; both paths are kept on purpose.
func (s *Service) ToggleRepaid(ctx context.Context, loanID int64) (*Loan, error) {
	loans, err := s.loanStore.LoadLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}

	idx := -1
	for i, loan := range loans {
		if loan.ID == loanID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrLoanNotFound
	}

	loans[idx].IsRepaid = !loans[idx].IsRepaid
	if err := s.loanStore.SaveLoans(ctx, loans); err != nil {
		return nil, fmt.Errorf("save loans: %w", err)
	}

	s.emit("loans", "loan_toggled")
	out := loans[idx]
	return &out, nil
}

func (s *Service) Repayments(ctx context.Context, loanID int64) ([]Repayment, error) {
	loans, err := s.loanStore.LoadLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	for _, loan := range loans {
		if loan.ID == loanID {
			return loan.Repayments, nil
		}
	}
	return nil, ErrLoanNotFound
}

// RecordRepayment applies a partial repayment against a loan. The date
// defaults to today when absent. On over-repayment the stored loan is
// left untouched.
func (s *Service) RecordRepayment(ctx context.Context, loanID int64, in RecordRepaymentInput) (*Loan, error) {
	loans, err := s.loanStore.LoadLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}

	idx := -1
	for i, loan := range loans {
		if loan.ID == loanID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrLoanNotFound
	}

	date := in.EffectiveDate()
	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	updated, err := ApplyRepayment(loans[idx], Repayment{
		ID:     s.nextID(),
		Amount: in.Amount,
		Date:   date,
		Note:   strings.TrimSpace(in.Note),
	})
	if err != nil {
		return nil, err
	}

	loans[idx] = updated
	if err := s.loanStore.SaveLoans(ctx, loans); err != nil {
		return nil, fmt.Errorf("save loans: %w", err)
	}

	s.emit("loans", "repayment_recorded")
	out := updated
	return &out, nil
}

func (s *Service) RemoveRepayment(ctx context.Context, loanID, repaymentID int64) (*Loan, error) {
	loans, err := s.loanStore.LoadLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}

	idx := -1
	for i, loan := range loans {
		if loan.ID == loanID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrLoanNotFound
	}

	updated, err := DropRepayment(loans[idx], repaymentID)
	if err != nil {
		return nil, err
	}

	loans[idx] = updated
	if err := s.loanStore.SaveLoans(ctx, loans); err != nil {
		return nil, fmt.Errorf("save loans: %w", err)
	}

	s.emit("loans", "repayment_removed")
	out := updated
	return &out, nil
}

// Summary is the single computation the presentation layer consumes:
// per-borrower nets, portfolio totals and any loans whose borrower no
// longer resolves.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	borrowers, err := s.borrowerStore.LoadBorrowers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load borrowers: %w", err)
	}
	loans, err := s.loanStore.LoadLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}

	balances := make([]BorrowerBalance, 0, len(borrowers))
	for _, b := range borrowers {
		balances = append(balances, BorrowerBalance{
			BorrowerID: b.ID,
			Name:       b.Name,
			Net:        NetAmount(b.ID, loans),
		})
	}

	return &Summary{
		Totals:        ComputeTotals(loans),
		Balances:      balances,
		OrphanLoanIDs: OrphanLoanIDs(borrowers, loans),
	}, nil
}
