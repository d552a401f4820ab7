package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ActionType tags the kind of change a suggestion proposes.
type ActionType string

const (
	ActionReallocate   ActionType = "REALLOCATE"
	ActionAdjustTarget ActionType = "ADJUST_TARGET"
)

// SuggestionAction is a machine-applicable change attached to a suggestion.
// It is implemented only by Reallocate and AdjustTarget.
type SuggestionAction interface {
	Type() ActionType
	isSuggestionAction()
}

// Reallocate moves Amount of allocation from one bucket to another.
type Reallocate struct {
	FromID string
	ToID   string
	Amount decimal.Decimal
}

// Type implements SuggestionAction.
func (Reallocate) Type() ActionType { return ActionReallocate }
func (Reallocate) isSuggestionAction() {}

// AdjustTarget sets a bucket's allocation to NewTarget.
type AdjustTarget struct {
	TargetBucketID string
	NewTarget      decimal.Decimal
}

// Type implements SuggestionAction.
func (AdjustTarget) Type() ActionType { return ActionAdjustTarget }
func (AdjustTarget) isSuggestionAction() {}

// AISuggestion is advisory text with an optional applicable action.
type AISuggestion struct {
	Text   string
	Action SuggestionAction
}

// ActionPayload is the flat, tagged form of a SuggestionAction used on the wire.
type ActionPayload struct {
	Type           ActionType       `json:"type"`
	FromID         string           `json:"from_id,omitempty"`
	ToID           string           `json:"to_id,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	TargetBucketID string           `json:"target_bucket_id,omitempty"`
	NewTarget      *decimal.Decimal `json:"new_target,omitempty"`
}

// Action decodes the payload by its tag. Unknown tags and payloads missing
// the fields their tag requires are rejected rather than guessed at.
func (p ActionPayload) Action() (SuggestionAction, error) {
	switch p.Type {
	case ActionReallocate:
		if p.FromID == "" || p.ToID == "" || p.Amount == nil {
			return nil, fmt.Errorf("REALLOCATE action requires from, to and amount")
		}
		return Reallocate{FromID: p.FromID, ToID: p.ToID, Amount: *p.Amount}, nil
	case ActionAdjustTarget:
		if p.TargetBucketID == "" || p.NewTarget == nil {
			return nil, fmt.Errorf("ADJUST_TARGET action requires target bucket and new target")
		}
		return AdjustTarget{TargetBucketID: p.TargetBucketID, NewTarget: *p.NewTarget}, nil
	default:
		return nil, fmt.Errorf("unknown suggestion action type %q", p.Type)
	}
}

// PayloadOf flattens an action into its wire form. A nil action yields nil.
func PayloadOf(action SuggestionAction) *ActionPayload {
	switch a := action.(type) {
	case Reallocate:
		amount := a.Amount
		return &ActionPayload{Type: ActionReallocate, FromID: a.FromID, ToID: a.ToID, Amount: &amount}
	case AdjustTarget:
		target := a.NewTarget
		return &ActionPayload{Type: ActionAdjustTarget, TargetBucketID: a.TargetBucketID, NewTarget: &target}
	default:
		return nil
	}
}

type suggestionJSON struct {
	Text   string         `json:"text"`
	Action *ActionPayload `json:"action,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s AISuggestion) MarshalJSON() ([]byte, error) {
	return json.Marshal(suggestionJSON{Text: s.Text, Action: PayloadOf(s.Action)})
}

// UnmarshalJSON implements json.Unmarshaler. An undecodable action leaves
// the suggestion as plain text.
func (s *AISuggestion) UnmarshalJSON(data []byte) error {
	var raw suggestionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Text = raw.Text
	s.Action = nil
	if raw.Action != nil {
		if action, err := raw.Action.Action(); err == nil {
			s.Action = action
		}
	}
	return nil
}
