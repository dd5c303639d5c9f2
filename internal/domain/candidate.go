package domain

import "strings"

// SplitList разбивает строку формы по разделителю и обрезает пробелы у каждого элемента.
// Пустая строка даёт пустой срез, а не срез из одного пустого элемента.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ListDelimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// JoinList склеивает элементы через ", " - так выглядят ячейки сохранённой таблицы.
func JoinList(items []string) string {
	trimmed := make([]string, len(items))
	for i, item := range items {
		trimmed[i] = strings.TrimSpace(item)
	}
	return strings.Join(trimmed, ListDelimiter+" ")
}

// ParseCandidate строит кандидата из сырых строк формы:
// продукты и количества перечисляются через запятую в одном поле.
func ParseCandidate(name, address, productsRaw, quantitiesRaw string) Candidate {
	return Candidate{
		CustomerName: name,
		Address:      address,
		Products:     SplitList(productsRaw),
		Quantities:   SplitList(quantitiesRaw),
	}
}
