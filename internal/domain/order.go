package domain

import (
	"strconv"
	"strings"
	"time"
)

// ListDelimiter разделяет элементы списков продуктов и количеств внутри одной ячейки.
const ListDelimiter = ","

// OrderRecord описывает один заказ клиента в реестре.
type OrderRecord struct {
	// ID назначается реестром при создании и не меняется при редактировании.
	ID           string
	CustomerName string
	// Address необязателен: в части выгрузок колонки адреса нет.
	Address string
	// Products и Quantities выровнены по индексу: Quantities[i] относится к Products[i].
	Products   []string
	Quantities []int
	// CreatedAt фиксируется один раз при создании.
	CreatedAt time.Time
}

// Clone возвращает копию записи, не разделяющую срезы с оригиналом.
func (r OrderRecord) Clone() OrderRecord {
	out := r
	out.Products = append([]string(nil), r.Products...)
	out.Quantities = append([]int(nil), r.Quantities...)
	return out
}

// Lines возвращает пары продукт/количество в порядке заказа.
func (r OrderRecord) Lines() []OrderLine {
	n := min(len(r.Products), len(r.Quantities))
	lines := make([]OrderLine, 0, n)
	for i := 0; i < n; i++ {
		lines = append(lines, OrderLine{Product: r.Products[i], Quantity: r.Quantities[i]})
	}
	return lines
}

// TotalUnits суммирует количество единиц по всем позициям.
func (r OrderRecord) TotalUnits() int {
	total := 0
	for _, q := range r.Quantities {
		total += q
	}
	return total
}

// OrderLine - одна позиция заказа.
type OrderLine struct {
	Product  string
	Quantity int
}

// Candidate - сырые данные формы, из которых реестр строит запись.
// Количества остаются строками: разбор и проверка выполняются при валидации.
type Candidate struct {
	CustomerName string
	Address      string
	Products     []string
	Quantities   []string
}

// ValidatedOrder - результат успешной проверки кандидата.
type ValidatedOrder struct {
	CustomerName string
	Address      string
	Products     []string
	Quantities   []int
}

// Validate проверяет кандидата и возвращает нормализованные поля.
// Возвращает первую найденную ошибку типа *ValidationError.
func (c Candidate) Validate() (ValidatedOrder, error) {
	name := strings.TrimSpace(c.CustomerName)
	if name == "" {
		return ValidatedOrder{}, &ValidationError{Kind: KindMissingField, Field: "customerName", Index: -1}
	}
	if len(c.Products) == 0 {
		return ValidatedOrder{}, &ValidationError{Kind: KindMissingField, Field: "products", Index: -1}
	}
	if len(c.Quantities) == 0 {
		return ValidatedOrder{}, &ValidationError{Kind: KindMissingField, Field: "quantities", Index: -1}
	}
	if len(c.Products) != len(c.Quantities) {
		return ValidatedOrder{}, &ValidationError{Kind: KindLengthMismatch, Field: "quantities", Index: -1}
	}

	products := make([]string, len(c.Products))
	for i, p := range c.Products {
		p = strings.TrimSpace(p)
		if p == "" {
			return ValidatedOrder{}, &ValidationError{Kind: KindMissingField, Field: "products", Index: i}
		}
		if strings.Contains(p, ListDelimiter) {
			return ValidatedOrder{}, &ValidationError{Kind: KindInvalidProduct, Field: "products", Index: i}
		}
		products[i] = p
	}

	quantities := make([]int, len(c.Quantities))
	for i, raw := range c.Quantities {
		q, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || q <= 0 {
			return ValidatedOrder{}, &ValidationError{Kind: KindInvalidQuantity, Field: "quantities", Index: i}
		}
		quantities[i] = q
	}

	return ValidatedOrder{
		CustomerName: name,
		Address:      strings.TrimSpace(c.Address),
		Products:     products,
		Quantities:   quantities,
	}, nil
}
