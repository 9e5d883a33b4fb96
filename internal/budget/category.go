package budget

import "strings"

type Category string

const (
	CategoryHousing       Category = "Housing"
	CategoryUtilities     Category = "Utilities"
	CategoryGroceries     Category = "Groceries"
	CategoryTransport     Category = "Transport"
	CategoryDining        Category = "Dining"
	CategoryInsurance     Category = "Insurance"
	CategoryHealthcare    Category = "Healthcare"
	CategoryEducation     Category = "Education"
	CategoryEntertainment Category = "Entertainment"
	CategoryPersonal      Category = "Personal"
	CategoryDebt          Category = "Debt"
	CategoryMisc          Category = "Misc"
)

type keywordRule struct {
	category Category
	keywords []string
}

// Порядок правил задает приоритет: побеждает первая совпавшая категория.
var keywordRules = []keywordRule{
	{CategoryHousing, []string{"rent", "mortgage", "emi", "hoa"}},
	{CategoryUtilities, []string{"electric", "water", "gas", "internet", "wifi", "utility"}},
	{CategoryGroceries, []string{"grocery", "groceries", "supermarket", "vegetable", "provision"}},
	{CategoryTransport, []string{"fuel", "petrol", "diesel", "uber", "ola", "bus", "metro", "transport", "parking"}},
	{CategoryDining, []string{"restaurant", "dining", "food", "coffee", "takeout"}},
	{CategoryInsurance, []string{"insurance", "premium"}},
	{CategoryHealthcare, []string{"pharmacy", "medical", "doctor", "hospital", "medicine"}},
	{CategoryEducation, []string{"tuition", "course", "udemy", "coursera", "books", "stationery"}},
	{CategoryEntertainment, []string{"movie", "netflix", "prime", "spotify", "game"}},
	{CategoryPersonal, []string{"clothes", "apparel", "salon", "gym", "fitness", "personal"}},
	{CategoryDebt, []string{"loan", "debt", "credit card", "interest"}},
	{CategoryMisc, nil},
}

// Categories возвращает перечень категорий в порядке приоритета классификации.
func Categories() []Category {
	out := make([]Category, 0, len(keywordRules))
	for _, rule := range keywordRules {
		out = append(out, rule.category)
	}
	return out
}

// Classify определяет категорию расхода по ключевым словам в названии.
func Classify(name string) Category {
	lower := strings.ToLower(name)
	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}

	return CategoryMisc
}

// ParseCategory ищет категорию по имени без учета регистра.
func ParseCategory(value string) (Category, bool) {
	trimmed := strings.TrimSpace(value)
	for _, rule := range keywordRules {
		if strings.EqualFold(string(rule.category), trimmed) {
			return rule.category, true
		}
	}

	return "", false
}
