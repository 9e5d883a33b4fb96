package ai

import (
	"example.com/finsight/backend/internal/budget"
	"example.com/finsight/backend/internal/prices"
)

type PromptInput struct {
	Categories budget.CategoryTotals `json:"categories"`
	Summary    budget.Summary        `json:"summary"`
	Prices     prices.Snapshot       `json:"prices"`
}

// AdvicePayload - разобранный ответ модели. Отсутствующие поля остаются пустыми.
type AdvicePayload struct {
	Advice              []string       `json:"advice"`
	InvestmentPlan      InvestmentPlan `json:"investment_plan"`
	ReductionStrategies []string       `json:"reduction_strategies"`
	HabitPlan           []HabitMonth   `json:"habit_plan"`
	Disclaimer          string         `json:"disclaimer"`
}

type InvestmentPlan struct {
	Overview string        `json:"overview,omitempty"`
	Sections []PlanSection `json:"sections,omitempty"`
}

// PlanSection - раздел плана. Details заполнен, если значение было объектом, иначе Text.
type PlanSection struct {
	Key     string       `json:"key"`
	Details []PlanDetail `json:"details,omitempty"`
	Text    string       `json:"text,omitempty"`
}

type PlanDetail struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type HabitMonth struct {
	Month string   `json:"month"`
	Goals []string `json:"goals"`
}

type AdviceResult struct {
	Text    string
	Payload AdvicePayload
	Parsed  bool
	Prompt  string
	Content string
	Raw     []byte
}
