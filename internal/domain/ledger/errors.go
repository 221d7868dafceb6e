package ledger

import "errors"

var (
	ErrNameRequired    = errors.New("name_required")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidLoanType = errors.New("invalid_loan_type")
	ErrUnknownBorrower = errors.New("unknown_borrower")

	ErrOverRepayment     = errors.New("over_repayment")
	ErrHasDependentLoans = errors.New("borrower_has_loans")

	ErrBorrowerNotFound  = errors.New("borrower_not_found")
	ErrLoanNotFound      = errors.New("loan_not_found")
	ErrRepaymentNotFound = errors.New("repayment_not_found")
)

// IsValidation reports whether err is a rejected-input or integrity
// failure, as opposed to a missing entity or a storage fault.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrNameRequired, ErrInvalidAmount, ErrInvalidLoanType,
		ErrUnknownBorrower, ErrOverRepayment, ErrHasDependentLoans,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err means an entity id did not resolve.
func IsNotFound(err error) bool {
	for _, target := range []error{ErrBorrowerNotFound, ErrLoanNotFound, ErrRepaymentNotFound} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
