package gemini

import (
	"strings"

	"github.com/shopspring/decimal"

	"rafiqe/internal/models"
)

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType   string       `json:"responseMimeType,omitempty"`
	ResponseSchema     *Schema      `json:"responseSchema,omitempty"`
	ResponseModalities []string     `json:"responseModalities,omitempty"`
	ImageConfig        *imageConfig `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio"`
}

type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// text concatenates the text parts of the first candidate.
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}

// image returns the first inline image of the first candidate.
func (r *generateResponse) image() *inlineData {
	if len(r.Candidates) == 0 {
		return nil
	}
	for _, p := range r.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return p.InlineData
		}
	}
	return nil
}

// planEnvelope is the JSON shape of a plan response.
type planEnvelope struct {
	Feedback string     `json:"feedback"`
	Plans    []wirePlan `json:"plans"`
}

type wirePlan struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Buckets     []wireBucket `json:"buckets"`
}

type wireBucket struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Icon    string          `json:"icon"`
	Percent decimal.Decimal `json:"percent"`
}

func (p wirePlan) toModel() models.BudgetPlan {
	plan := models.BudgetPlan{
		ID:          strings.TrimSpace(p.ID),
		Title:       strings.TrimSpace(p.Title),
		Description: strings.TrimSpace(p.Description),
		Buckets:     make([]models.PlanBucket, len(p.Buckets)),
	}
	for i, b := range p.Buckets {
		plan.Buckets[i] = models.PlanBucket{
			ID:      strings.TrimSpace(b.ID),
			Name:    strings.TrimSpace(b.Name),
			Icon:    strings.TrimSpace(b.Icon),
			Percent: b.Percent,
		}
	}
	return plan
}

type wireSuggestion struct {
	Text   string      `json:"text"`
	Action *wireAction `json:"action,omitempty"`
}

type wireAction struct {
	Type           string           `json:"type"`
	FromID         string           `json:"fromId,omitempty"`
	ToID           string           `json:"toId,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	NewTarget      *decimal.Decimal `json:"newTarget,omitempty"`
	TargetBucketID string           `json:"targetBucketId,omitempty"`
}

func (a wireAction) payload() models.ActionPayload {
	return models.ActionPayload{
		Type:           models.ActionType(strings.ToUpper(strings.TrimSpace(a.Type))),
		FromID:         a.FromID,
		ToID:           a.ToID,
		Amount:         a.Amount,
		TargetBucketID: a.TargetBucketID,
		NewTarget:      a.NewTarget,
	}
}
