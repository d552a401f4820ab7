package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"rafiqe/internal/advisory"
	"rafiqe/internal/models"
)

const goalImageAspectRatio = "16:9"

// GeneratePlans implements advisory.Advisor.
func (c *Client) GeneratePlans(ctx context.Context, req advisory.PlanRequest) (advisory.PlanResponse, error) {
	var env planEnvelope
	if err := c.generateJSON(ctx, planPrompt(req), planSchema, &env); err != nil {
		return advisory.PlanResponse{}, err
	}

	plans := make([]models.BudgetPlan, 0, len(env.Plans))
	for _, p := range env.Plans {
		plans = append(plans, p.toModel())
	}
	return advisory.PlanResponse{Feedback: env.Feedback, Plans: plans}, nil
}

// GenerateAdvice implements advisory.Advisor.
func (c *Client) GenerateAdvice(ctx context.Context, req advisory.AdviceRequest) ([]string, error) {
	var advice []string
	if err := c.generateJSON(ctx, advicePrompt(req), adviceSchema, &advice); err != nil {
		return nil, err
	}
	return advice, nil
}

// GenerateSuggestions implements advisory.Advisor. Actions with an unknown
// tag or missing fields are dropped; the suggestion text is kept.
func (c *Client) GenerateSuggestions(ctx context.Context, req advisory.SuggestionRequest) ([]models.AISuggestion, error) {
	var raw []wireSuggestion
	if err := c.generateJSON(ctx, suggestionPrompt(req), suggestionSchema, &raw); err != nil {
		return nil, err
	}

	out := make([]models.AISuggestion, 0, len(raw))
	for _, s := range raw {
		suggestion := models.AISuggestion{Text: strings.TrimSpace(s.Text)}
		if s.Action != nil && s.Action.Type != "" {
			action, err := s.Action.payload().Action()
			if err != nil {
				c.log.Warnw("Dropping suggestion action", "type", s.Action.Type, "error", err)
			} else {
				suggestion.Action = action
			}
		}
		out = append(out, suggestion)
	}
	return out, nil
}

// GenerateGoalImage implements advisory.Advisor. The image is returned as a
// data URL.
func (c *Client) GenerateGoalImage(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generate(ctx, c.imageModel, &generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: goalImagePrompt(prompt)}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &imageConfig{AspectRatio: goalImageAspectRatio},
		},
	})
	if err != nil {
		return "", err
	}

	img := resp.image()
	if img == nil {
		return "", errors.Wrap(advisory.ErrMalformedResponse, "no image in response")
	}
	mime := img.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, img.Data), nil
}
