package budget

import (
	"sort"
	"strings"
)

type ExpenseItem struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category,omitempty"`
}

// CategoryTotals хранит накопленные суммы по категориям.
type CategoryTotals map[Category]float64

// EffectiveCategory возвращает заданную пользователем категорию или результат классификатора.
func (e ExpenseItem) EffectiveCategory() Category {
	if preset := strings.TrimSpace(e.Category); preset != "" {
		return Category(preset)
	}

	return Classify(e.Name)
}

// Aggregate суммирует расходы по категориям.
func Aggregate(expenses []ExpenseItem) CategoryTotals {
	totals := make(CategoryTotals)
	for _, expense := range expenses {
		totals[expense.EffectiveCategory()] += expense.Amount
	}
	return totals
}

// Sum возвращает общую сумму по всем категориям.
func (t CategoryTotals) Sum() float64 {
	var total float64
	for _, amount := range t {
		total += amount
	}
	return total
}

// Ordered возвращает категории в порядке классификатора, затем пользовательские по алфавиту.
func (t CategoryTotals) Ordered() []Category {
	out := make([]Category, 0, len(t))
	known := make(map[Category]struct{}, len(keywordRules))
	for _, category := range Categories() {
		known[category] = struct{}{}
		if _, ok := t[category]; ok {
			out = append(out, category)
		}
	}

	custom := make([]Category, 0)
	for category := range t {
		if _, ok := known[category]; !ok {
			custom = append(custom, category)
		}
	}
	sort.Slice(custom, func(i, j int) bool { return custom[i] < custom[j] })

	return append(out, custom...)
}
