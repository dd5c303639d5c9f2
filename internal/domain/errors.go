package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation - общий признак ошибки валидации кандидата.
	ErrValidation = errors.New("order validation failed")
	// ErrOrderNotFound возвращается, если заказа с таким идентификатором нет в реестре.
	ErrOrderNotFound = errors.New("order not found")
	// ErrPersistence - хранилище не смогло прочитать или записать таблицу заказов.
	ErrPersistence = errors.New("order ledger persistence failed")
	// ErrCorruptSnapshot - сохранённая таблица содержит строку, нарушающую инварианты.
	ErrCorruptSnapshot = errors.New("order snapshot is corrupt")
	// ErrOutboxPublish - ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// ValidationKind классифицирует нарушение правил валидации.
type ValidationKind string

const (
	// KindMissingField - обязательное поле пустое или отсутствует.
	KindMissingField ValidationKind = "missing_field"
	// KindLengthMismatch - число продуктов не совпадает с числом количеств.
	KindLengthMismatch ValidationKind = "length_mismatch"
	// KindInvalidQuantity - количество не является положительным целым.
	KindInvalidQuantity ValidationKind = "invalid_quantity"
	// KindInvalidProduct - название продукта содержит разделитель списка.
	KindInvalidProduct ValidationKind = "invalid_product"
)

// ValidationError описывает первое найденное нарушение.
// Index указывает позицию элемента списка или -1, если ошибка относится к полю целиком.
type ValidationError struct {
	Kind  ValidationKind
	Field string
	Index int
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMissingField:
		if e.Index >= 0 {
			return fmt.Sprintf("%s[%d] is required", e.Field, e.Index)
		}
		return fmt.Sprintf("%s is required", e.Field)
	case KindLengthMismatch:
		return "products and quantities must have the same length"
	case KindInvalidQuantity:
		return fmt.Sprintf("quantities[%d] must be a positive integer", e.Index)
	case KindInvalidProduct:
		return fmt.Sprintf("products[%d] must not contain %q", e.Index, ListDelimiter)
	default:
		return ErrValidation.Error()
	}
}

// Is позволяет сопоставлять ошибку с ErrValidation через errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError - заказ с указанным ID отсутствует.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrOrderNotFound
}

// PersistenceError оборачивает сбой хранилища. Состояние реестра в памяти при этом не меняется.
type PersistenceError struct {
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Op, ErrPersistence.Error())
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrPersistence.Error(), e.Cause)
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// ValidationKindOf извлекает вид нарушения, если err - ошибка валидации.
func ValidationKindOf(err error) (ValidationKind, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Kind, true
	}
	return "", false
}

// IsNotFound проверяет, что заказ не найден.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}
