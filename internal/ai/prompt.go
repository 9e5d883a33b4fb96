package ai

import (
	"fmt"
	"strconv"
	"strings"

	"example.com/finsight/backend/internal/prices"
)

const systemPrompt = "You are a personal finance assistant. Respond with JSON only, without extra text."

const adviceTask = `TASK:
1) Provide financial advice.
2) You must provide a conservative, diversified starting plan that refers to the live prices provided. For example, "Allocate X amount to Y ticker, which is currently priced at Z."
3) Call out overspending categories and suggest reduction strategies.
4) You must provide a 3-month habit plan with specific, actionable goals for each month. This is mandatory.
5) Add a risk disclaimer.

Return your response as a JSON object with exactly the following keys:
- "advice": a list of personalized advice strings.
- "investment_plan": an object describing a sample investment plan. Put a short summary under "overview"; every other key is a plan section whose value is a string or an object of string values.
- "reduction_strategies": a list of strategies to reduce spending.
- "habit_plan": a list of monthly habit plans, where each plan is an object with "month" (integer) and "goals" (list of strings).
- "disclaimer": a string with risk disclaimers.

Example format:
{
  "advice": [
    "advice point 1",
    "advice point 2"
  ],
  "investment_plan": {
    "overview": "summary of the plan",
    "item1": "details",
    "item2": {"key": "value"}
  },
  "reduction_strategies": [
    "strategy 1",
    "strategy 2"
  ],
  "habit_plan": [
    { "month": 1, "goals": ["goal 1", "goal 2"] },
    { "month": 2, "goals": ["goal 1", "goal 2"] }
  ],
  "disclaimer": "risk disclaimers"
}`

// Compose собирает текст запроса к модели из сводки бюджета и котировок.
func Compose(input PromptInput) string {
	summary := input.Summary

	var b strings.Builder
	b.WriteString("You are a certified personal finance advisor.\n\n")
	fmt.Fprintf(&b, "User's monthly income: %s\n", formatAmount(summary.Income))
	fmt.Fprintf(&b, "Current total spend: %s\n", formatAmount(summary.TotalSpend))
	fmt.Fprintf(&b, "Needs spend: %s\n", formatAmount(summary.NeedsCurrent))
	fmt.Fprintf(&b, "Wants spend: %s\n", formatAmount(summary.WantsCurrent))
	fmt.Fprintf(&b, "Surplus/Deficit: %s\n", formatAmount(summary.SurplusOrDeficit))
	fmt.Fprintf(&b, "Suggested savings minimum: %s\n", formatAmount(summary.SuggestedSavingsMin))
	fmt.Fprintf(&b, "Suggested savings target: %s\n", formatAmount(summary.SuggestedSavings))
	fmt.Fprintf(&b, "Suggested needs cap: %s\n", formatAmount(summary.SuggestedNeedsCap))
	fmt.Fprintf(&b, "Suggested wants cap: %s\n", formatAmount(summary.SuggestedWantsCap))

	b.WriteString("\nCategory totals (monthly):\n")
	if len(input.Categories) == 0 {
		b.WriteString("- none\n")
	}
	for _, category := range input.Categories.Ordered() {
		fmt.Fprintf(&b, "- %s: %s\n", category, formatAmount(input.Categories[category]))
	}

	b.WriteString("\nLive market prices (for context, not guarantees; 0 means unavailable):\n")
	b.WriteString("Stocks:\n")
	writeQuotes(&b, input.Prices.Stocks)
	b.WriteString("Crypto:\n")
	writeQuotes(&b, input.Prices.Crypto)

	b.WriteString("\n")
	b.WriteString(adviceTask)
	b.WriteString("\n")

	return b.String()
}

func buildMessages(prompt string) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}
}

func writeQuotes(b *strings.Builder, quotes prices.Quotes) {
	for _, quote := range quotes {
		fmt.Fprintf(b, "- %s: %s\n", quote.Symbol, formatAmount(quote.Price))
	}
}

func formatAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
