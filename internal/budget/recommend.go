package budget

import "math"

const (
	needsCapShare   = 0.5
	wantsCapShare   = 0.3
	savingsMinShare = 0.2
)

var needsCategories = map[Category]struct{}{
	CategoryHousing:    {},
	CategoryUtilities:  {},
	CategoryGroceries:  {},
	CategoryHealthcare: {},
	CategoryInsurance:  {},
	CategoryTransport:  {},
	CategoryDebt:       {},
}

var wantsCategories = map[Category]struct{}{
	CategoryDining:        {},
	CategoryEntertainment: {},
	CategoryPersonal:      {},
	CategoryEducation:     {},
	CategoryMisc:          {},
}

type Summary struct {
	NeedsCurrent        float64 `json:"needs_current"`
	WantsCurrent        float64 `json:"wants_current"`
	TotalSpend          float64 `json:"total_spend"`
	Income              float64 `json:"income"`
	SurplusOrDeficit    float64 `json:"surplus_or_deficit"`
	SuggestedSavings    float64 `json:"suggested_savings"`
	SuggestedNeedsCap   float64 `json:"suggested_needs_cap"`
	SuggestedWantsCap   float64 `json:"suggested_wants_cap"`
	SuggestedSavingsMin float64 `json:"suggested_savings_min"`
}

// IsNeed сообщает, относится ли категория к обязательным расходам.
func IsNeed(category Category) bool {
	_, ok := needsCategories[category]
	return ok
}

// IsWant сообщает, относится ли категория к необязательным расходам.
func IsWant(category Category) bool {
	_, ok := wantsCategories[category]
	return ok
}

// Recommend рассчитывает сводку бюджета по доходу и суммам категорий.
// Категории вне наборов needs/wants не попадают ни в одну из сумм.
func Recommend(income float64, totals CategoryTotals) Summary {
	var needsSpend, wantsSpend float64
	for category, amount := range totals {
		switch {
		case IsNeed(category):
			needsSpend += amount
		case IsWant(category):
			wantsSpend += amount
		}
	}
	totalSpend := needsSpend + wantsSpend

	savingsMin := math.Max(income*savingsMinShare, 0)
	capacity := income - totalSpend

	var savings float64
	if income != 0 {
		savings = math.Max(savingsMin, capacity*0.5+savingsMin*0.5)
	}
	savings = math.Max(0, math.Min(savings, math.Max(income-needsSpend, 0)))

	return Summary{
		NeedsCurrent:        Round2(needsSpend),
		WantsCurrent:        Round2(wantsSpend),
		TotalSpend:          Round2(totalSpend),
		Income:              Round2(income),
		SurplusOrDeficit:    Round2(income - totalSpend),
		SuggestedSavings:    Round2(savings),
		SuggestedNeedsCap:   Round2(income * needsCapShare),
		SuggestedWantsCap:   Round2(income * wantsCapShare),
		SuggestedSavingsMin: Round2(income * savingsMinShare),
	}
}

// Round2 округляет денежную сумму до двух знаков, половины - к четному.
func Round2(value float64) float64 {
	rounded := math.RoundToEven(value*100) / 100
	if rounded == 0 {
		return 0
	}
	return rounded
}
