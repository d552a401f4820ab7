package gemini

import (
	"fmt"
	"strings"

	"rafiqe/internal/advisory"
	"rafiqe/internal/models"
)

const assistantName = "Rafiqe"

func currencyCaveat(c models.Currency, income string) string {
	return fmt.Sprintf("Important: account for the real purchasing power of %s (%s). "+
		"In a high-inflation currency such as the Syrian Pound, an income of a million is an ordinary salary, not wealth. "+
		"Judge the income %q against the reality of this currency.", c.Name, c.Code, income)
}

func profileLines(b *strings.Builder, p models.UserProfile) {
	fmt.Fprintf(b, "- Age: %d\n", p.Age)
	fmt.Fprintf(b, "- Financial persona: %s\n", orUnspecified(string(p.Persona)))
	fmt.Fprintf(b, "- Marital status: %s\n", orUnspecified(string(p.Status)))
	fmt.Fprintf(b, "- Children: %d\n", p.ChildrenCount)
	fmt.Fprintf(b, "- Family structure (if living with family): %s\n", orUnspecified(string(p.FamilyStructure)))
	fmt.Fprintf(b, "- Financial priorities: %q\n", p.Priorities)
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unspecified"
	}
	return s
}

func bucketLines(b *strings.Builder, buckets []models.BucketWithSpending, code string) {
	for _, bk := range buckets {
		fmt.Fprintf(b, "- id=%s name=%q allocated=%s spent=%s %s\n",
			bk.ID, bk.Name, bk.Allocated.String(), bk.Spent.String(), code)
	}
}

func planPrompt(req advisory.PlanRequest) string {
	income := req.Income.String()
	code := req.Currency.Code

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert financial advisor for %q.\n", assistantName)
	b.WriteString("Economic and personal data:\n")
	fmt.Fprintf(&b, "- Currency: %s (%s).\n", req.Currency.Name, code)
	fmt.Fprintf(&b, "- %s\n", currencyCaveat(req.Currency, income))
	profileLines(&b, req.Profile)
	fmt.Fprintf(&b, "- Current monthly income: %s %s\n", income, code)
	if req.PreviousIncome != nil {
		fmt.Fprintf(&b, "- Previous income was %s (income %s).\n", req.PreviousIncome.String(), req.IncomeTrend())
	}
	fmt.Fprintf(&b, "Respond in %s.\n\n", req.Locale.Language())

	b.WriteString("Your task:\n")
	fmt.Fprintf(&b, "1. Give a short, sharp comment on whether %s %s covers real living needs given this currency's value.\n", income, code)
	fmt.Fprintf(&b, "2. Design exactly %d budget plan(s).\n\n", req.Count())

	b.WriteString("Bucket rules:\n")
	b.WriteString("- The number of buckets must fit the user's responsibilities.\n")
	b.WriteString("  * A Family Head or a user with children needs more buckets, covering education, health, emergencies and debt.\n")
	b.WriteString("  * A user living with family may need less for housing, or a bucket for helping the family.\n")
	b.WriteString("- Every plan has at least 5 buckets.\n")
	b.WriteString("- Every bucket has one expressive emoji icon.\n")
	b.WriteString("- Bucket percents in each plan sum to exactly 100.\n")
	b.WriteString("- Bucket ids are unique within a plan.\n\n")
	b.WriteString("Answer with a JSON object only, with two fields: feedback (the analysis of the income and currency) and plans (the array of plans).")
	return b.String()
}

func advicePrompt(req advisory.AdviceRequest) string {
	income := req.Income.String()

	var b strings.Builder
	fmt.Fprintf(&b, "Give %d financial tips to a user of %q based on their current spending and their income of %s %s.\n",
		advisory.MaxAdvice, assistantName, income, req.Currency.Code)
	fmt.Fprintf(&b, "%s\n", currencyCaveat(req.Currency, income))
	b.WriteString("User profile:\n")
	profileLines(&b, req.Profile)
	if len(req.Buckets) > 0 {
		b.WriteString("Budget buckets:\n")
		bucketLines(&b, req.Buckets, req.Currency.Code)
	}
	fmt.Fprintf(&b, "Respond in %s. Answer with a JSON array of strings.", req.Locale.Language())
	return b.String()
}

func suggestionPrompt(req advisory.SuggestionRequest) string {
	tx := req.Transaction

	var b strings.Builder
	fmt.Fprintf(&b, "You are a financial expert for %q. The user just spent %s %s on %q.\n",
		assistantName, tx.Amount.String(), req.Currency.Code, tx.Description)
	fmt.Fprintf(&b, "Consider the value of the currency %s when advising. Monthly income: %s %s.\n",
		req.Currency.Name, req.Income.String(), req.Currency.Code)
	if len(req.Buckets) > 0 {
		b.WriteString("Budget buckets:\n")
		bucketLines(&b, req.Buckets, req.Currency.Code)
	}
	fmt.Fprintf(&b, "Give %d smart suggestions in %s. ", advisory.MaxSuggestions, req.Locale.Language())
	fmt.Fprintf(&b, "A suggestion may carry an action: {type:%q, fromId, toId, amount} to move allocation between buckets, ",
		models.ActionReallocate)
	fmt.Fprintf(&b, "or {type:%q, targetBucketId, newTarget} to set a bucket's allocation. ", models.ActionAdjustTarget)
	b.WriteString("Only use bucket ids listed above. Answer with a JSON array.")
	return b.String()
}

func goalImagePrompt(goal string) string {
	return fmt.Sprintf("A high-quality, cinematic 3D render representing this financial goal: %s. "+
		"Professional lighting, minimalist design, emerald and gold accents.", goal)
}
