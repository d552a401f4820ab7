package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rafiqe/internal/models"
	"rafiqe/internal/pagination"
	"rafiqe/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	budgetService services.BudgetServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(budgetService services.BudgetServicer) *TransactionHandler {
	return &TransactionHandler{budgetService: budgetService}
}

// TransactionRequest represents the request payload for creating or editing a transaction.
type TransactionRequest struct {
	BucketID    string          `json:"bucket_id" binding:"required,max=64"`
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0,money" swaggertype:"number"`
	Date        *time.Time      `json:"date"`
	Description string          `json:"description" binding:"max=255"`
}

func (r TransactionRequest) toInput() models.TransactionInput {
	date := time.Now().UTC()
	if r.Date != nil {
		date = *r.Date
	}
	return models.TransactionInput{
		BucketID:    r.BucketID,
		Amount:      r.Amount,
		Date:        date,
		Description: r.Description,
	}
}

// ListTransactions returns a page of the filtered history.
// @Summary     List transactions
// @Description Get a paginated, filtered list of transactions, newest first
// @Tags        transactions
// @Produce     json
// @Param       search     query string false "Description search"
// @Param       bucket     query string false "Bucket id or 'all'"
// @Param       min_amount query number false "Minimum amount"
// @Param       max_amount query number false "Maximum amount"
// @Param       sort       query string false "Order: date (default) or amount"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.budgetService.ListTransactions(filter, page))
}

// CreateTransaction records an expense.
// @Summary     Record a transaction
// @Description Record an expense; suggestions and advice are refreshed in the background
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	tx, err := h.budgetService.RecordTransaction(c.Request.Context(), req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// UpdateTransaction edits an expense.
// @Summary     Update a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path string             true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	tx, err := h.budgetService.UpdateTransaction(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// DeleteTransaction removes an expense.
// @Summary     Delete a transaction
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]interface{} "Transaction deleted"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	if err := h.budgetService.DeleteTransaction(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
