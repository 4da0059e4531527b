package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"genrpg-server/internal/domain"
)

func TestRenderContainsAllEnumValues(t *testing.T) {
	rendered := Encode(KindEvent).Render()

	for _, v := range domain.ConsequenceTypes() {
		assert.Contains(t, rendered, `"`+string(v)+`"`)
	}
	for _, v := range domain.ItemTypes() {
		assert.Contains(t, rendered, `"`+string(v)+`"`)
	}
	for _, v := range domain.EffectTypes() {
		assert.Contains(t, rendered, `"`+string(v)+`"`)
	}
	for _, v := range domain.LocationTypes() {
		assert.Contains(t, rendered, `"`+string(v)+`"`)
	}
}

func TestRenderMarksOptionalFields(t *testing.T) {
	rendered := Encode(KindConsequence).Render()

	assert.Contains(t, rendered, `"type"`)
	assert.Contains(t, rendered, "optional")
	assert.Contains(t, rendered, "required for gainItem, loseItem")
}

func TestEncodeEventStructure(t *testing.T) {
	d := Encode(KindEvent)

	assert.Equal(t, "event", d.Entity)
	assert.Len(t, d.Fields, 2)
	assert.Equal(t, "description", d.Fields[0].Name)
	assert.Equal(t, "options", d.Fields[1].Name)
	assert.NotNil(t, d.Fields[1].Of)
}
