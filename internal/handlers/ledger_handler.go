package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "rafiqe/internal/errors"
	"rafiqe/internal/models"
	"rafiqe/internal/services"
)

// LedgerHandler handles income, settings and bucket requests.
type LedgerHandler struct {
	budgetService services.BudgetServicer
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(budgetService services.BudgetServicer) *LedgerHandler {
	return &LedgerHandler{budgetService: budgetService}
}

// SetIncomeRequest represents the request payload for setting the income.
type SetIncomeRequest struct {
	Income *decimal.Decimal `json:"income" binding:"required,gte=0,money" swaggertype:"number"`
}

// UpdateSettingsRequest represents the request payload for updating settings.
type UpdateSettingsRequest struct {
	Currency *string `json:"currency" binding:"omitempty,currency"`
	Locale   *string `json:"locale" binding:"omitempty,locale"`
}

// AddBucketRequest represents the request payload for creating a bucket.
type AddBucketRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Icon string `json:"icon" binding:"max=32"`
}

// UpdateAllocationRequest represents the request payload for a bucket allocation.
type UpdateAllocationRequest struct {
	Allocated *decimal.Decimal `json:"allocated" binding:"required,gte=0,money" swaggertype:"number"`
}

// GetState returns the whole application state.
// @Summary     Get state
// @Description Get the full budget state: phase, income, buckets, plans, advice and suggestions
// @Tags        state
// @Produce     json
// @Success     200 {object} services.AppState "Application state"
// @Router      /state [get]
func (h *LedgerHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.budgetService.State())
}

// GetDashboard returns the budget overview.
// @Summary     Get dashboard
// @Description Get summary metrics, buckets with spending, chart distribution and filtered transactions
// @Tags        state
// @Produce     json
// @Param       search     query string false "Description search"
// @Param       bucket     query string false "Bucket id or 'all'"
// @Param       min_amount query number false "Minimum amount"
// @Param       max_amount query number false "Maximum amount"
// @Success     200 {object} services.Dashboard "Dashboard"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /dashboard [get]
func (h *LedgerHandler) GetDashboard(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.budgetService.Dashboard(filter))
}

// SetIncome replaces the declared income.
// @Summary     Set income
// @Description Replace the income. Once onboarding is complete a changed income asks for a fresh plan.
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Param       request body SetIncomeRequest true "Income"
// @Success     200 {object} services.AppState "Updated state"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /income [put]
func (h *LedgerHandler) SetIncome(c *gin.Context) {
	var req SetIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	state, err := h.budgetService.SetIncome(c.Request.Context(), *req.Income)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// UpdateSettings changes the display currency and the advisory language.
// @Summary     Update settings
// @Description Change the currency label and/or the locale. Amounts are never converted.
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Param       request body UpdateSettingsRequest true "Settings"
// @Success     200 {object} map[string]interface{} "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /settings [put]
func (h *LedgerHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	if req.Currency == nil && req.Locale == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency or locale is required"))
		return
	}

	upd := services.SettingsUpdate{Currency: req.Currency}
	if req.Locale != nil {
		locale := models.Locale(*req.Locale)
		upd.Locale = &locale
	}
	state, err := h.budgetService.UpdateSettings(c.Request.Context(), upd)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"currency": state.Currency, "locale": state.Locale})
}

// GetCurrencies lists the selectable currencies.
// @Summary     List currencies
// @Tags        ledger
// @Produce     json
// @Success     200 {object} map[string]interface{} "Currencies"
// @Router      /currencies [get]
func (h *LedgerHandler) GetCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"currencies": models.Currencies})
}

// AddBucket creates an empty bucket.
// @Summary     Create a bucket
// @Tags        buckets
// @Accept      json
// @Produce     json
// @Param       request body AddBucketRequest true "Bucket details"
// @Success     201 {object} models.Bucket "Bucket created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /buckets [post]
func (h *LedgerHandler) AddBucket(c *gin.Context) {
	var req AddBucketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	bucket, err := h.budgetService.AddBucket(c.Request.Context(), req.Name, req.Icon)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bucket": bucket})
}

// UpdateBucketAllocation sets a bucket's allocation.
// @Summary     Set bucket allocation
// @Tags        buckets
// @Accept      json
// @Produce     json
// @Param       id      path string                  true "Bucket ID"
// @Param       request body UpdateAllocationRequest true "Allocation"
// @Success     200 {object} models.Bucket "Bucket updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Bucket not found"
// @Router      /buckets/{id}/allocation [put]
func (h *LedgerHandler) UpdateBucketAllocation(c *gin.Context) {
	var req UpdateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	bucket, err := h.budgetService.UpdateBucketAllocation(c.Request.Context(), c.Param("id"), *req.Allocated)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bucket": bucket})
}

// DeleteBucket removes a bucket. Its transactions stay in the history.
// @Summary     Delete a bucket
// @Tags        buckets
// @Produce     json
// @Param       id path string true "Bucket ID"
// @Success     200 {object} map[string]interface{} "Bucket deleted"
// @Failure     404 {object} ErrorResponse "Bucket not found"
// @Router      /buckets/{id} [delete]
func (h *LedgerHandler) DeleteBucket(c *gin.Context) {
	if err := h.budgetService.DeleteBucket(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bucket deleted successfully"})
}

// Reset wipes the budget and restarts onboarding.
// @Summary     Reset
// @Tags        state
// @Produce     json
// @Success     200 {object} services.AppState "Fresh state"
// @Router      /reset [post]
func (h *LedgerHandler) Reset(c *gin.Context) {
	state, err := h.budgetService.Reset(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}
