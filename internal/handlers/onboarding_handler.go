package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rafiqe/internal/models"
	"rafiqe/internal/services"
)

// OnboardingHandler handles the profile and budget plan requests.
type OnboardingHandler struct {
	budgetService services.BudgetServicer
}

// NewOnboardingHandler creates a new OnboardingHandler.
func NewOnboardingHandler(budgetService services.BudgetServicer) *OnboardingHandler {
	return &OnboardingHandler{budgetService: budgetService}
}

// ProfileRequest represents the onboarding answers.
type ProfileRequest struct {
	Persona         string `json:"persona" binding:"omitempty,persona"`
	Status          string `json:"status" binding:"omitempty,marital_status"`
	ChildrenCount   int    `json:"children_count" binding:"gte=0,lte=20"`
	Priorities      string `json:"priorities" binding:"max=500"`
	Age             int    `json:"age" binding:"omitempty,gte=1,lte=120"`
	FamilyStructure string `json:"family_structure" binding:"omitempty,family_structure"`
}

func (r ProfileRequest) toModel() models.UserProfile {
	return models.UserProfile{
		Persona:         models.Persona(r.Persona),
		Status:          models.MaritalStatus(r.Status),
		ChildrenCount:   r.ChildrenCount,
		Priorities:      r.Priorities,
		Age:             r.Age,
		FamilyStructure: models.FamilyStructure(r.FamilyStructure),
	}
}

// GeneratePlansRequest represents the request payload for asking for plans.
type GeneratePlansRequest struct {
	Regenerate bool `json:"regenerate"`
}

// Start leaves the welcome step.
// @Summary     Start onboarding
// @Tags        onboarding
// @Produce     json
// @Success     200 {object} map[string]interface{} "New phase"
// @Failure     409 {object} ErrorResponse "Onboarding already started"
// @Router      /onboarding/start [post]
func (h *OnboardingHandler) Start(c *gin.Context) {
	phase, err := h.budgetService.StartOnboarding(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"phase": phase})
}

// SubmitProfile stores the onboarding answers and waits for the initial plans.
// @Summary     Submit profile
// @Description Store the onboarding profile and generate the initial choice of plans
// @Tags        onboarding
// @Accept      json
// @Produce     json
// @Param       request body ProfileRequest true "Profile"
// @Success     200 {object} services.PlanState "Plans or the failure to get them"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Not collecting a profile"
// @Router      /onboarding/profile [post]
func (h *OnboardingHandler) SubmitProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	state, err := h.budgetService.SubmitProfile(c.Request.Context(), req.toModel())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// UpdateProfile edits the profile without asking for plans.
// @Summary     Update profile
// @Tags        onboarding
// @Accept      json
// @Produce     json
// @Param       request body ProfileRequest true "Profile"
// @Success     200 {object} models.UserProfile "Profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /profile [put]
func (h *OnboardingHandler) UpdateProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	profile, err := h.budgetService.UpdateProfile(c.Request.Context(), req.toModel())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GetPlans returns the plan generation status.
// @Summary     Get plans
// @Tags        plans
// @Produce     json
// @Success     200 {object} services.PlanState "Plans"
// @Router      /plans [get]
func (h *OnboardingHandler) GetPlans(c *gin.Context) {
	c.JSON(http.StatusOK, h.budgetService.Plans())
}

// GeneratePlans asks for plans again.
// @Summary     Generate plans
// @Description Ask for a fresh choice of plans, or a single replacement when regenerate is set
// @Tags        plans
// @Accept      json
// @Produce     json
// @Param       request body GeneratePlansRequest false "Options"
// @Success     200 {object} services.PlanState "Plans or the failure to get them"
// @Failure     409 {object} ErrorResponse "Profile not submitted"
// @Router      /plans/generate [post]
func (h *OnboardingHandler) GeneratePlans(c *gin.Context) {
	var req GeneratePlansRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, invalidInput(err))
			return
		}
	}

	state, err := h.budgetService.GeneratePlans(c.Request.Context(), req.Regenerate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// RetryPlans repeats a failed plan request.
// @Summary     Retry plans
// @Tags        plans
// @Produce     json
// @Success     200 {object} services.PlanState "Plans or the failure to get them"
// @Failure     409 {object} ErrorResponse "Nothing to retry"
// @Router      /plans/retry [post]
func (h *OnboardingHandler) RetryPlans(c *gin.Context) {
	state, err := h.budgetService.RetryPlans(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// ApplyPlan replaces the buckets with a presented plan.
// @Summary     Apply a plan
// @Tags        plans
// @Produce     json
// @Param       id path string true "Plan ID"
// @Success     200 {object} map[string]interface{} "Buckets"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     409 {object} ErrorResponse "No plan presented"
// @Failure     422 {object} ErrorResponse "Plan is malformed"
// @Router      /plans/{id}/apply [post]
func (h *OnboardingHandler) ApplyPlan(c *gin.Context) {
	buckets, err := h.budgetService.ApplyPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buckets": buckets})
}

// SkipPlans completes onboarding with the default buckets.
// @Summary     Skip plans
// @Tags        plans
// @Produce     json
// @Success     200 {object} map[string]interface{} "Buckets"
// @Failure     409 {object} ErrorResponse "Plans are still being generated"
// @Router      /plans/skip [post]
func (h *OnboardingHandler) SkipPlans(c *gin.Context) {
	buckets, err := h.budgetService.SkipPlans(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buckets": buckets})
}
