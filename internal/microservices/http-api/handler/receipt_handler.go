package handler

import (
	"errors"
	"net/http"
	"strconv"

	"coquiz/internal/microservices/http-api/dto"
	"coquiz/internal/receipts"

	"github.com/gin-gonic/gin"
)

const (
	defaultReceiptLimit = 20
	maxReceiptLimit     = 100
)

type ReceiptHandler struct {
	repo receipts.Repository
}

func NewReceiptHandler(repo receipts.Repository) *ReceiptHandler {
	return &ReceiptHandler{repo: repo}
}

// GetByTransaction handles GET /receipts/:transaction_id
func (h *ReceiptHandler) GetByTransaction(c *gin.Context) {
	receipt, err := h.repo.FindByTransaction(c.Request.Context(), c.Param("transaction_id"))
	if errors.Is(err, receipts.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load receipt"})
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// ListByMember handles GET /members/:mb_id/receipts?limit=N
func (h *ReceiptHandler) ListByMember(c *gin.Context) {
	limit := defaultReceiptLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxReceiptLimit)
	}

	memberID := c.Param("mb_id")
	list, err := h.repo.ListByMember(c.Request.Context(), memberID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list receipts"})
		return
	}
	c.JSON(http.StatusOK, dto.ReceiptListResponse{
		MemberID: memberID,
		Receipts: list,
		Count:    len(list),
	})
}
