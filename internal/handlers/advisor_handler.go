package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rafiqe/internal/services"
)

// AdvisorHandler handles advice, suggestion and goal image requests.
type AdvisorHandler struct {
	budgetService services.BudgetServicer
}

// NewAdvisorHandler creates a new AdvisorHandler.
func NewAdvisorHandler(budgetService services.BudgetServicer) *AdvisorHandler {
	return &AdvisorHandler{budgetService: budgetService}
}

// GoalImageRequest represents the request payload for a goal picture.
type GoalImageRequest struct {
	Goal string `json:"goal" binding:"required,min=1,max=200"`
}

// GetSuggestions returns the suggestions about the latest transaction.
// @Summary     Get suggestions
// @Tags        advisor
// @Produce     json
// @Success     200 {object} map[string]interface{} "Suggestions"
// @Router      /suggestions [get]
func (h *AdvisorHandler) GetSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": h.budgetService.Suggestions()})
}

// ApplySuggestion applies the action attached to a suggestion.
// @Summary     Apply a suggestion
// @Description Apply the action of the suggestion at index; actions on deleted buckets change nothing
// @Tags        advisor
// @Produce     json
// @Param       index path int true "Suggestion index"
// @Success     200 {object} map[string]interface{} "Whether the budget changed"
// @Failure     400 {object} ErrorResponse "Suggestion has no action"
// @Failure     404 {object} ErrorResponse "Suggestion not found"
// @Router      /suggestions/{index}/apply [post]
func (h *AdvisorHandler) ApplySuggestion(c *gin.Context) {
	index, err := parsePathIndex(c, "index")
	if err != nil {
		respondWithError(c, err)
		return
	}

	changed, err := h.budgetService.ApplySuggestion(c.Request.Context(), index)
	if err != nil {
		respondWithError(c, err)
		return
	}

	state := h.budgetService.State()
	c.JSON(http.StatusOK, gin.H{
		"changed":     changed,
		"buckets":     state.Buckets,
		"suggestions": state.Suggestions,
	})
}

// DismissSuggestions clears the suggestions.
// @Summary     Dismiss suggestions
// @Tags        advisor
// @Produce     json
// @Success     200 {object} map[string]interface{} "Suggestions dismissed"
// @Router      /suggestions [delete]
func (h *AdvisorHandler) DismissSuggestions(c *gin.Context) {
	h.budgetService.DismissSuggestions(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Suggestions dismissed"})
}

// GetAdvice returns the latest advice.
// @Summary     Get advice
// @Tags        advisor
// @Produce     json
// @Success     200 {object} map[string]interface{} "Advice"
// @Router      /advice [get]
func (h *AdvisorHandler) GetAdvice(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"advice": h.budgetService.Advice()})
}

// RefreshAdvice asks for fresh advice and waits for it.
// @Summary     Refresh advice
// @Tags        advisor
// @Produce     json
// @Success     200 {object} map[string]interface{} "Advice"
// @Failure     409 {object} ErrorResponse "Budget not active yet"
// @Router      /advice/refresh [post]
func (h *AdvisorHandler) RefreshAdvice(c *gin.Context) {
	advice, err := h.budgetService.RefreshAdvice(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"advice": advice})
}

// GenerateGoalImage renders a picture of a savings goal.
// @Summary     Generate goal image
// @Description Render a decorative picture for a savings goal; an empty image means none could be made
// @Tags        advisor
// @Accept      json
// @Produce     json
// @Param       request body GoalImageRequest true "Goal"
// @Success     200 {object} map[string]interface{} "Image data URL"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /goal-image [post]
func (h *AdvisorHandler) GenerateGoalImage(c *gin.Context) {
	var req GoalImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	image, err := h.budgetService.GenerateGoalImage(c.Request.Context(), req.Goal)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image": image, "generated": image != ""})
}
