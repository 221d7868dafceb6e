package ledger

import "math"

// amountEpsilon absorbs binary float rounding when comparing repayment
// sums against a loan's principal.
const amountEpsilon = 1e-9

// noiseThreshold zeroes aggregate figures that only differ from zero by
// accumulated float error.
const noiseThreshold = 0.01

// RepaidAmount sums the repayments applied against a loan. Zero for a
// loan with no repayments.
func RepaidAmount(loan Loan) float64 {
	var sum float64
	for _, r := range loan.Repayments {
		sum += r.Amount
	}
	return sum
}

// RemainingAmount is the outstanding principal, clamped at zero so an
// over-repaid record never displays negative.
func RemainingAmount(loan Loan) float64 {
	return math.Max(0, loan.Amount-RepaidAmount(loan))
}

// ApplyRepayment appends a repayment to a copy of the loan. The
// repayment must not push the repaid total past the principal; exact
// settlement within float tolerance is allowed and marks the loan
// repaid. The input loan is never modified.
func ApplyRepayment(loan Loan, repayment Repayment) (Loan, error) {
	if repayment.Amount <= 0 || math.IsNaN(repayment.Amount) || math.IsInf(repayment.Amount, 0) {
		return loan, ErrInvalidAmount
	}

	total := RepaidAmount(loan) + repayment.Amount
	if total > loan.Amount+amountEpsilon {
		return loan, ErrOverRepayment
	}

	out := loan
	out.Repayments = append(append([]Repayment(nil), loan.Repayments...), repayment)
	if total >= loan.Amount-amountEpsilon {
		out.IsRepaid = true
	}
	return out, nil
}

// DropRepayment removes the repayment with the given id from a copy of
// the loan and recomputes is_repaid, which can flip a settled loan back
// to outstanding.
func DropRepayment(loan Loan, repaymentID int64) (Loan, error) {
	idx := -1
	for i, r := range loan.Repayments {
		if r.ID == repaymentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return loan, ErrRepaymentNotFound
	}

	out := loan
	out.Repayments = make([]Repayment, 0, len(loan.Repayments)-1)
	out.Repayments = append(out.Repayments, loan.Repayments[:idx]...)
	out.Repayments = append(out.Repayments, loan.Repayments[idx+1:]...)
	out.IsRepaid = RepaidAmount(out) >= out.Amount-amountEpsilon
	return out, nil
}

// NetAmount is the signed balance for one borrower over all their
// loans: lend adds the remaining principal, borrow subtracts it, loans
// flagged repaid contribute nothing. Positive means the borrower owes
// the ledger owner.
func NetAmount(borrowerID int64, loans []Loan) float64 {
	var net float64
	for _, loan := range loans {
		if loan.BorrowerID != borrowerID || loan.IsRepaid {
			continue
		}
		switch loan.Type {
		case TypeBorrow:
			net -= RemainingAmount(loan)
		default:
			net += RemainingAmount(loan)
		}
	}
	return net
}

// ComputeTotals aggregates portfolio-wide figures. Loans are netted per
// borrower first, then split by sign: negative nets accumulate into
// TotalDebt, positive nets into the receivable side. The receivable
// outstanding figure is reduced by the principal of fully repaid lend
// loans and clamped at zero.
func ComputeTotals(loans []Loan) Totals {
	nets := map[int64]float64{}
	for _, loan := range loans {
		if _, ok := nets[loan.BorrowerID]; !ok {
			nets[loan.BorrowerID] = NetAmount(loan.BorrowerID, loans)
		}
	}

	var debt, receivable float64
	for _, net := range nets {
		if net < 0 {
			debt += math.Abs(net)
		} else if net > 0 {
			receivable += net
		}
	}
	if math.Abs(debt) < noiseThreshold {
		debt = 0
	}

	var repaid float64
	for _, loan := range loans {
		if loan.Type != TypeBorrow && loan.IsRepaid {
			repaid += loan.Amount
		}
	}

	return Totals{
		TotalReceivable: Receivable{
			Total:       receivable,
			Repaid:      repaid,
			Outstanding: math.Max(0, receivable-repaid),
		},
		TotalDebt: debt,
	}
}

// OrphanLoanIDs flags loans whose borrowerId does not resolve to a live
// borrower. Orphans are reported, never dropped.
func OrphanLoanIDs(borrowers []Borrower, loans []Loan) []int64 {
	known := make(map[int64]struct{}, len(borrowers))
	for _, b := range borrowers {
		known[b.ID] = struct{}{}
	}
	var orphans []int64
	for _, loan := range loans {
		if _, ok := known[loan.BorrowerID]; !ok {
			orphans = append(orphans, loan.ID)
		}
	}
	return orphans
}
