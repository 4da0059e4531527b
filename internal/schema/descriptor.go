package schema

import (
	"fmt"
	"strings"

	"genrpg-server/internal/domain"
)

// Дескриптор схемы — общий структурный контракт между текстом инструкции
// для модели и декодером. Он строится механически из доменных перечислений,
// поэтому список значений в промпте и список значений, которые принимает
// декодер, всегда совпадают.

// EntityKind определяет сущность wire-формата, для которой строится дескриптор.
type EntityKind string

const (
	KindEvent       EntityKind = "event"
	KindOption      EntityKind = "option"
	KindConsequence EntityKind = "consequence"
	KindItem        EntityKind = "item"
	KindItemEffect  EntityKind = "effect"
	KindLocation    EntityKind = "location"
)

// Field описывает одно поле wire-формата.
type Field struct {
	Name     string
	Type     string // string | integer | array | object
	Required bool
	Enum     []string    // допустимые значения для закрытых перечислений
	Of       *Descriptor // дескриптор элемента для массивов объектов
	Object   *Descriptor // дескриптор вложенного объекта
	Note     string      // дополнительное ограничение в свободной форме
}

// Descriptor описывает структуру одной сущности wire-формата.
type Descriptor struct {
	Entity string
	Fields []Field
}

// Encode возвращает дескриптор для указанной сущности.
func Encode(kind EntityKind) Descriptor {
	switch kind {
	case KindEvent:
		options := Encode(KindOption)
		return Descriptor{
			Entity: string(KindEvent),
			Fields: []Field{
				{Name: "description", Type: "string", Required: true},
				{Name: "options", Type: "array", Required: true, Of: &options, Note: "2-4 options"},
			},
		}
	case KindOption:
		consequences := Encode(KindConsequence)
		return Descriptor{
			Entity: string(KindOption),
			Fields: []Field{
				{Name: "id", Type: "string", Required: false},
				{Name: "text", Type: "string", Required: true},
				{Name: "consequences", Type: "array", Required: true, Of: &consequences, Note: "at least 1 consequence"},
			},
		}
	case KindConsequence:
		item := Encode(KindItem)
		location := Encode(KindLocation)
		return Descriptor{
			Entity: string(KindConsequence),
			Fields: []Field{
				{Name: "type", Type: "string", Required: true, Enum: consequenceTypeValues()},
				{Name: "amount", Type: "integer", Required: false, Note: "required for gainXP, loseXP, gainGold, loseGold, changeHealth"},
				{Name: "item", Type: "object", Required: false, Object: &item, Note: "required for gainItem, loseItem"},
				{Name: "location", Type: "object", Required: false, Object: &location, Note: "required for changeLocation"},
			},
		}
	case KindItem:
		effect := Encode(KindItemEffect)
		return Descriptor{
			Entity: string(KindItem),
			Fields: []Field{
				{Name: "id", Type: "string", Required: false},
				{Name: "name", Type: "string", Required: true},
				{Name: "description", Type: "string", Required: true},
				{Name: "value", Type: "integer", Required: true},
				{Name: "type", Type: "string", Required: true, Enum: itemTypeValues()},
				{Name: "effect", Type: "object", Required: true, Object: &effect},
			},
		}
	case KindItemEffect:
		return Descriptor{
			Entity: string(KindItemEffect),
			Fields: []Field{
				{Name: "type", Type: "string", Required: true, Enum: effectTypeValues()},
				{Name: "value", Type: "integer", Required: true},
			},
		}
	case KindLocation:
		return Descriptor{
			Entity: string(KindLocation),
			Fields: []Field{
				{Name: "id", Type: "string", Required: false},
				{Name: "name", Type: "string", Required: true},
				{Name: "description", Type: "string", Required: true},
				{Name: "type", Type: "string", Required: true, Enum: locationTypeValues()},
			},
		}
	}
	return Descriptor{Entity: string(kind)}
}

// Render возвращает текстовое представление формы JSON для встраивания
// в инструкцию модели.
func (d Descriptor) Render() string {
	var b strings.Builder
	d.render(&b, 0)
	return b.String()
}

func (d Descriptor) render(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	inner := strings.Repeat("  ", depth+1)

	b.WriteString("{\n")
	for i, f := range d.Fields {
		b.WriteString(inner)
		fmt.Fprintf(b, "%q: ", f.Name)

		switch {
		case len(f.Enum) > 0:
			b.WriteString(renderEnum(f.Enum))
		case f.Type == "array" && f.Of != nil:
			b.WriteString("[")
			f.Of.render(b, depth+1)
			b.WriteString("]")
		case f.Type == "object" && f.Object != nil:
			f.Object.render(b, depth+1)
		default:
			b.WriteString(f.Type)
		}

		if i < len(d.Fields)-1 {
			b.WriteString(",")
		}

		notes := fieldNotes(f)
		if notes != "" {
			b.WriteString("  // " + notes)
		}
		b.WriteString("\n")
	}
	b.WriteString(indent + "}")
}

func renderEnum(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, " | ")
}

func fieldNotes(f Field) string {
	var notes []string
	if !f.Required {
		notes = append(notes, "optional")
	}
	if f.Note != "" {
		notes = append(notes, f.Note)
	}
	return strings.Join(notes, ", ")
}

func consequenceTypeValues() []string {
	types := domain.ConsequenceTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func itemTypeValues() []string {
	types := domain.ItemTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func effectTypeValues() []string {
	types := domain.EffectTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func locationTypeValues() []string {
	types := domain.LocationTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
