package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/backend/internal/domain/ledger"
)

type BorrowerService interface {
	Borrowers(ctx context.Context) ([]ledger.Borrower, error)
	AddBorrower(ctx context.Context, in ledger.AddBorrowerInput) (*ledger.Borrower, error)
	DeleteBorrower(ctx context.Context, borrowerID int64) error
}

type BorrowerHandler struct {
	service BorrowerService
}

func NewBorrowerHandler(service BorrowerService) *BorrowerHandler {
	return &BorrowerHandler{service: service}
}

func (h *BorrowerHandler) List(c *gin.Context) {
	borrowers, err := h.service.Borrowers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, borrowers)
}

func (h *BorrowerHandler) Add(c *gin.Context) {
	var req ledger.AddBorrowerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	created, err := h.service.AddBorrower(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BorrowerHandler) Delete(c *gin.Context) {
	borrowerID, ok := pathID(c, "borrowerId")
	if !ok {
		return
	}
	if err := h.service.DeleteBorrower(c.Request.Context(), borrowerID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})
		return 0, false
	}
	return id, true
}
