package ledger_test

import (
	"math"
	"testing"

	"github.com/ledgerbook/backend/internal/domain/ledger"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestRepaidAndRemainingAmount(t *testing.T) {
	loan := ledger.Loan{
		ID: 1, BorrowerID: 10, Amount: 100, Type: ledger.TypeLend,
		Repayments: []ledger.Repayment{
			{ID: 1, Amount: 40, Date: "2024-01-01"},
			{ID: 2, Amount: 60, Date: "2024-02-01"},
		},
	}
	if got := ledger.RepaidAmount(loan); !almostEqual(got, 100) {
		t.Fatalf("repaid = %v, want 100", got)
	}
	if got := ledger.RemainingAmount(loan); !almostEqual(got, 0) {
		t.Fatalf("remaining = %v, want 0", got)
	}
}

func TestRemainingAmountNeverNegative(t *testing.T) {
	loan := ledger.Loan{
		ID: 1, Amount: 50,
		Repayments: []ledger.Repayment{{ID: 1, Amount: 80}},
	}
	if got := ledger.RemainingAmount(loan); got != 0 {
		t.Fatalf("remaining = %v, want clamp to 0", got)
	}
}

func TestApplyRepaymentMarksRepaidAtExactSettlement(t *testing.T) {
	loan := ledger.Loan{ID: 1, Amount: 100, Type: ledger.TypeLend,
		Repayments: []ledger.Repayment{{ID: 1, Amount: 40}}}

	updated, err := ledger.ApplyRepayment(loan, ledger.Repayment{ID: 2, Amount: 60, Date: "2024-03-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.IsRepaid {
		t.Fatalf("expected is_repaid after exact settlement")
	}
	if len(updated.Repayments) != 2 {
		t.Fatalf("expected 2 repayments, got %d", len(updated.Repayments))
	}
	if len(loan.Repayments) != 1 {
		t.Fatalf("input loan must not be modified")
	}
}

func TestApplyRepaymentToleratesFloatRounding(t *testing.T) {
	loan := ledger.Loan{ID: 1, Amount: 0.3}
	loan, err := ledger.ApplyRepayment(loan, ledger.Repayment{ID: 1, Amount: 0.1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 0.1+0.2 overshoots 0.3 in binary floats; treated as settlement.
	updated, err := ledger.ApplyRepayment(loan, ledger.Repayment{ID: 2, Amount: 0.2})
	if err != nil {
		t.Fatalf("expected rounding tolerance, got %v", err)
	}
	if !updated.IsRepaid {
		t.Fatalf("expected is_repaid within tolerance")
	}
}

func TestApplyRepaymentRejectsOverRepayment(t *testing.T) {
	loan := ledger.Loan{ID: 1, Amount: 100,
		Repayments: []ledger.Repayment{{ID: 1, Amount: 70}}}

	out, err := ledger.ApplyRepayment(loan, ledger.Repayment{ID: 2, Amount: 31})
	if err != ledger.ErrOverRepayment {
		t.Fatalf("err = %v, want ErrOverRepayment", err)
	}
	if len(out.Repayments) != 1 {
		t.Fatalf("loan must be left unmodified on over-repayment")
	}
}

func TestApplyRepaymentRejectsNonPositiveAmount(t *testing.T) {
	loan := ledger.Loan{ID: 1, Amount: 100}
	for _, amount := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		if _, err := ledger.ApplyRepayment(loan, ledger.Repayment{ID: 2, Amount: amount}); err != ledger.ErrInvalidAmount {
			t.Fatalf("amount %v: err = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestDropRepaymentFlipsRepaidBack(t *testing.T) {
	loan := ledger.Loan{ID: 1, Amount: 100, IsRepaid: true,
		Repayments: []ledger.Repayment{{ID: 7, Amount: 100}}}

	updated, err := ledger.DropRepayment(loan, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.IsRepaid {
		t.Fatalf("expected is_repaid to flip back to false")
	}
	if len(updated.Repayments) != 0 {
		t.Fatalf("expected repayment removed")
	}
}

func TestDropRepaymentUnknownID(t *testing.T) {
	loan := ledger.Loan{ID: 1, Amount: 100,
		Repayments: []ledger.Repayment{{ID: 7, Amount: 10}}}
	if _, err := ledger.DropRepayment(loan, 99); err != ledger.ErrRepaymentNotFound {
		t.Fatalf("err = %v, want ErrRepaymentNotFound", err)
	}
}

func TestApplyThenDropRestoresState(t *testing.T) {
	loan := ledger.Loan{ID: 1, Amount: 100,
		Repayments: []ledger.Repayment{{ID: 1, Amount: 30}}}
	before := ledger.RepaidAmount(loan)

	applied, err := ledger.ApplyRepayment(loan, ledger.Repayment{ID: 2, Amount: 70})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	restored, err := ledger.DropRepayment(applied, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ledger.RepaidAmount(restored); !almostEqual(got, before) {
		t.Fatalf("repaid = %v, want %v", got, before)
	}
	if restored.IsRepaid != loan.IsRepaid {
		t.Fatalf("is_repaid not restored")
	}
}

func TestNetAmountMixedTypes(t *testing.T) {
	loans := []ledger.Loan{
		{ID: 1, BorrowerID: 42, Amount: 200, Type: ledger.TypeLend},
		{ID: 2, BorrowerID: 42, Amount: 50, Type: ledger.TypeBorrow},
		{ID: 3, BorrowerID: 99, Amount: 500, Type: ledger.TypeLend},
	}
	if got := ledger.NetAmount(42, loans); !almostEqual(got, 150) {
		t.Fatalf("net = %v, want 150", got)
	}
}

func TestNetAmountIgnoresRepaidLoans(t *testing.T) {
	loans := []ledger.Loan{
		{ID: 1, BorrowerID: 42, Amount: 200, Type: ledger.TypeLend, IsRepaid: true},
		{ID: 2, BorrowerID: 42, Amount: 80, Type: ledger.TypeBorrow},
	}
	if got := ledger.NetAmount(42, loans); !almostEqual(got, -80) {
		t.Fatalf("net = %v, want -80", got)
	}
}

func TestComputeTotalsNetsPerBorrowerBeforeAggregating(t *testing.T) {
	// Borrower 1 nets +150, borrower 2 nets -40: a per-type sum would
	// report 260 receivable and 150 debt instead.
	loans := []ledger.Loan{
		{ID: 1, BorrowerID: 1, Amount: 200, Type: ledger.TypeLend},
		{ID: 2, BorrowerID: 1, Amount: 50, Type: ledger.TypeBorrow},
		{ID: 3, BorrowerID: 2, Amount: 60, Type: ledger.TypeLend},
		{ID: 4, BorrowerID: 2, Amount: 100, Type: ledger.TypeBorrow},
	}
	totals := ledger.ComputeTotals(loans)
	if !almostEqual(totals.TotalReceivable.Total, 150) {
		t.Fatalf("receivable total = %v, want 150", totals.TotalReceivable.Total)
	}
	if !almostEqual(totals.TotalDebt, 40) {
		t.Fatalf("debt = %v, want 40", totals.TotalDebt)
	}
}

func TestComputeTotalsReducesOutstandingByRepaidLends(t *testing.T) {
	loans := []ledger.Loan{
		{ID: 1, BorrowerID: 1, Amount: 300, Type: ledger.TypeLend},
		{ID: 2, BorrowerID: 2, Amount: 500, Type: ledger.TypeLend, IsRepaid: true,
			Repayments: []ledger.Repayment{{ID: 1, Amount: 500}}},
	}
	totals := ledger.ComputeTotals(loans)
	if !almostEqual(totals.TotalReceivable.Repaid, 500) {
		t.Fatalf("repaid = %v, want 500", totals.TotalReceivable.Repaid)
	}
	// total 300 minus repaid 500 clamps at zero.
	if totals.TotalReceivable.Outstanding != 0 {
		t.Fatalf("outstanding = %v, want clamp to 0", totals.TotalReceivable.Outstanding)
	}
}

func TestComputeTotalsSuppressesDebtNoise(t *testing.T) {
	loans := []ledger.Loan{
		{ID: 1, BorrowerID: 1, Amount: 100.005, Type: ledger.TypeBorrow,
			Repayments: []ledger.Repayment{{ID: 1, Amount: 100}}},
	}
	totals := ledger.ComputeTotals(loans)
	if totals.TotalDebt != 0 {
		t.Fatalf("debt = %v, want noise suppressed to 0", totals.TotalDebt)
	}
}

func TestOrphanLoanIDs(t *testing.T) {
	borrowers := []ledger.Borrower{{ID: 1, Name: "a"}}
	loans := []ledger.Loan{
		{ID: 10, BorrowerID: 1, Amount: 5},
		{ID: 11, BorrowerID: 2, Amount: 5},
	}
	orphans := ledger.OrphanLoanIDs(borrowers, loans)
	if len(orphans) != 1 || orphans[0] != 11 {
		t.Fatalf("orphans = %v, want [11]", orphans)
	}
}
