package schema

import (
	"fmt"
	"strings"
)

// DecodeErrorKind классифицирует ошибку декодирования ответа модели.
type DecodeErrorKind string

const (
	// KindNotValidJSON — ответ не является валидным JSON-объектом нужной формы.
	KindNotValidJSON DecodeErrorKind = "not_valid_json"
	// KindMissingRequiredField — отсутствует (или имеет неверный тип) обязательное поле.
	KindMissingRequiredField DecodeErrorKind = "missing_required_field"
	// KindInvalidEnumValue — значение вне закрытого перечисления.
	KindInvalidEnumValue DecodeErrorKind = "invalid_enum_value"
)

// DecodeError описывает, почему ответ модели не прошел валидацию схемы.
// Любая такая ошибка фатальна для всего события: частично декодированные
// события наружу не отдаются.
type DecodeError struct {
	Kind     DecodeErrorKind
	Field    string   // имя поля в wire-формате
	Entity   string   // сущность, которой принадлежит поле
	Got      string   // полученное значение (для invalid enum)
	Expected []string // допустимые значения (для invalid enum)
	Err      error    // исходная ошибка json-парсера (для not valid json)
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case KindNotValidJSON:
		if e.Err != nil {
			return fmt.Sprintf("response is not valid JSON: %v", e.Err)
		}
		return "response is not valid JSON"
	case KindMissingRequiredField:
		return fmt.Sprintf("missing required field %q of %s", e.Field, e.Entity)
	case KindInvalidEnumValue:
		return fmt.Sprintf("invalid value %q for field %q of %s, expected one of: %s",
			e.Got, e.Field, e.Entity, strings.Join(e.Expected, ", "))
	}
	return "decode error"
}

func (e *DecodeError) Unwrap() error { return e.Err }

func notValidJSON(err error) *DecodeError {
	return &DecodeError{Kind: KindNotValidJSON, Err: err}
}

func missingField(field, entity string) *DecodeError {
	return &DecodeError{Kind: KindMissingRequiredField, Field: field, Entity: entity}
}

func invalidEnum(field, entity, got string, expected []string) *DecodeError {
	return &DecodeError{Kind: KindInvalidEnumValue, Field: field, Entity: entity, Got: got, Expected: expected}
}
