package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/backend/internal/domain/ledger"
)

type LoanService interface {
	Loans(ctx context.Context) ([]ledger.Loan, error)
	CreateLoan(ctx context.Context, in ledger.CreateLoanInput) (*ledger.Loan, error)
	DeleteLoan(ctx context.Context, loanID int64) error
	ToggleRepaid(ctx context.Context, loanID int64) (*ledger.Loan, error)
	Repayments(ctx context.Context, loanID int64) ([]ledger.Repayment, error)
	RecordRepayment(ctx context.Context, loanID int64, in ledger.RecordRepaymentInput) (*ledger.Loan, error)
	RemoveRepayment(ctx context.Context, loanID, repaymentID int64) (*ledger.Loan, error)
}

type LoanHandler struct {
	service LoanService
}

func NewLoanHandler(service LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

func (h *LoanHandler) List(c *gin.Context) {
	loans, err := h.service.Loans(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loans)
}

func (h *LoanHandler) Create(c *gin.Context) {
	var req ledger.CreateLoanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	created, err := h.service.CreateLoan(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *LoanHandler) Delete(c *gin.Context) {
	loanID, ok := pathID(c, "loanId")
	if !ok {
		return
	}
	if err := h.service.DeleteLoan(c.Request.Context(), loanID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *LoanHandler) ToggleRepaid(c *gin.Context) {
	loanID, ok := pathID(c, "loanId")
	if !ok {
		return
	}
	updated, err := h.service.ToggleRepaid(c.Request.Context(), loanID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *LoanHandler) ListRepayments(c *gin.Context) {
	loanID, ok := pathID(c, "loanId")
	if !ok {
		return
	}
	repayments, err := h.service.Repayments(c.Request.Context(), loanID)
	if err != nil {
		writeError(c, err)
		return
	}
	if repayments == nil {
		repayments = []ledger.Repayment{}
	}
	c.JSON(http.StatusOK, repayments)
}

func (h *LoanHandler) RecordRepayment(c *gin.Context) {
	loanID, ok := pathID(c, "loanId")
	if !ok {
		return
	}
	var req ledger.RecordRepaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	updated, err := h.service.RecordRepayment(c.Request.Context(), loanID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"loan":      updated,
		"remaining": ledger.RemainingAmount(*updated),
	})
}

func (h *LoanHandler) RemoveRepayment(c *gin.Context) {
	loanID, ok := pathID(c, "loanId")
	if !ok {
		return
	}
	repaymentID, ok := pathID(c, "repaymentId")
	if !ok {
		return
	}

	updated, err := h.service.RemoveRepayment(c.Request.Context(), loanID, repaymentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"loan":      updated,
		"remaining": ledger.RemainingAmount(*updated),
	})
}
