package ai

import (
	"errors"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// FallbackAdvice возвращается вместо отчета, если ответ модели не удалось разобрать.
const FallbackAdvice = "I apologize, but I was unable to generate a structured financial plan at this time. Please try again."

const noHabitPlan = "* No specific 3-month plan was generated. This may be due to the data provided."

var (
	ErrNoJSON      = errors.New("ai response does not contain json")
	ErrInvalidJSON = errors.New("ai response contains invalid json")
)

// ExtractJSON вырезает кандидата в JSON-документ: от первой "{" до последней "}".
// Обрамление markdown-блоком оказывается снаружи скобок. Пустая строка - кандидата нет.
func ExtractJSON(input string) string {
	trimmed := strings.TrimSpace(input)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return trimmed[start : end+1]
}

// ParseAdvice разбирает ответ модели. Поля неожиданного типа приводятся к пустому виду или строке.
func ParseAdvice(raw string) (AdvicePayload, error) {
	candidate := ExtractJSON(raw)
	if candidate == "" {
		return AdvicePayload{}, ErrNoJSON
	}
	if !gjson.Valid(candidate) {
		return AdvicePayload{}, ErrInvalidJSON
	}

	doc := gjson.Parse(candidate)
	return AdvicePayload{
		Advice:              stringList(field(doc, "advice")),
		InvestmentPlan:      parseInvestmentPlan(field(doc, "investment_plan")),
		ReductionStrategies: stringList(field(doc, "reduction_strategies")),
		HabitPlan:           parseHabitPlan(field(doc, "habit_plan")),
		Disclaimer:          scalarString(field(doc, "disclaimer")),
	}, nil
}

// Render превращает ответ модели в markdown-отчет. Никогда не возвращает ошибку.
func Render(raw string) string {
	payload, err := ParseAdvice(raw)
	if err != nil {
		return FallbackAdvice
	}

	return payload.Markdown()
}

// Markdown выводит разделы отчета в фиксированном порядке.
func (p AdvicePayload) Markdown() string {
	var b strings.Builder

	b.WriteString("## Personalized Financial Advice\n")
	writeBullets(&b, p.Advice)

	b.WriteString("\n## Conservative Diversified Starting Plan\n")
	if p.InvestmentPlan.Overview != "" {
		b.WriteString(p.InvestmentPlan.Overview)
		b.WriteString("\n")
	}
	for _, section := range p.InvestmentPlan.Sections {
		b.WriteString("\n* **")
		b.WriteString(sectionTitle(section.Key))
		b.WriteString("**:\n")
		if section.Details != nil {
			for _, detail := range section.Details {
				b.WriteString("  * ")
				b.WriteString(detail.Key)
				b.WriteString(": ")
				b.WriteString(detail.Value)
				b.WriteString("\n")
			}
			continue
		}
		b.WriteString("  * ")
		b.WriteString(section.Text)
		b.WriteString("\n")
	}

	b.WriteString("\n## Overspending Categories and Reduction Strategies\n")
	writeBullets(&b, p.ReductionStrategies)

	b.WriteString("\n## 3-Month Habit Plan\n")
	if len(p.HabitPlan) == 0 {
		b.WriteString(noHabitPlan)
		b.WriteString("\n")
	}
	for _, month := range p.HabitPlan {
		b.WriteString("* Month ")
		b.WriteString(month.Month)
		b.WriteString(": ")
		b.WriteString(strings.Join(month.Goals, ", "))
		b.WriteString("\n")
	}

	b.WriteString("\n## Risk Disclaimers\n")
	b.WriteString(p.Disclaimer)

	return b.String()
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("* ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}

func parseInvestmentPlan(value gjson.Result) InvestmentPlan {
	var plan InvestmentPlan
	switch {
	case value.IsObject():
		plan.Overview = scalarString(field(value, "overview"))
		// ForEach идет в порядке документа, так разделы выводятся как их прислала модель.
		positions := make(map[string]int)
		value.ForEach(func(key, section gjson.Result) bool {
			name := key.String()
			if name == "overview" {
				return true
			}
			parsed := parseSection(name, section)
			if idx, ok := positions[name]; ok {
				plan.Sections[idx] = parsed
				return true
			}
			positions[name] = len(plan.Sections)
			plan.Sections = append(plan.Sections, parsed)
			return true
		})
	case value.Type == gjson.String:
		plan.Overview = value.String()
	}

	return plan
}

func parseSection(name string, value gjson.Result) PlanSection {
	section := PlanSection{Key: name}
	if !value.IsObject() {
		section.Text = scalarString(value)
		return section
	}

	section.Details = make([]PlanDetail, 0)
	positions := make(map[string]int)
	value.ForEach(func(key, detail gjson.Result) bool {
		parsed := PlanDetail{Key: key.String(), Value: scalarString(detail)}
		if idx, ok := positions[parsed.Key]; ok {
			section.Details[idx] = parsed
			return true
		}
		positions[parsed.Key] = len(section.Details)
		section.Details = append(section.Details, parsed)
		return true
	})
	return section
}

// parseHabitPlan оставляет только записи, где есть и month, и goals.
func parseHabitPlan(value gjson.Result) []HabitMonth {
	if !value.IsArray() {
		return nil
	}

	out := make([]HabitMonth, 0)
	for _, entry := range value.Array() {
		if !entry.IsObject() {
			continue
		}

		month := field(entry, "month")
		goals := field(entry, "goals")
		if !present(month) || !present(goals) {
			continue
		}

		out = append(out, HabitMonth{Month: month.String(), Goals: stringList(goals)})
	}
	return out
}

// field возвращает значение ключа объекта; при повторах ключа побеждает последнее вхождение.
func field(object gjson.Result, key string) gjson.Result {
	var out gjson.Result
	object.ForEach(func(name, value gjson.Result) bool {
		if name.String() == key {
			out = value
		}
		return true
	})
	return out
}

func stringList(value gjson.Result) []string {
	if value.IsArray() {
		items := value.Array()
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, scalarString(item))
		}
		return out
	}

	if text := scalarString(value); text != "" {
		return []string{text}
	}
	return nil
}

// scalarString возвращает строку для скаляров и исходный JSON для объектов и массивов.
func scalarString(value gjson.Result) string {
	if !present(value) {
		return ""
	}
	if value.IsObject() || value.IsArray() {
		return value.Raw
	}
	return value.String()
}

func present(value gjson.Result) bool {
	return value.Exists() && value.Type != gjson.Null
}

// sectionTitle заменяет подчеркивания пробелами и делает заглавной первую букву каждого слова.
func sectionTitle(key string) string {
	runes := []rune(strings.ReplaceAll(key, "_", " "))
	previousLetter := false
	for i, r := range runes {
		if unicode.IsLetter(r) {
			if previousLetter {
				runes[i] = unicode.ToLower(r)
			} else {
				runes[i] = unicode.ToUpper(r)
			}
			previousLetter = true
			continue
		}
		previousLetter = false
	}
	return string(runes)
}
