package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genrpg-server/internal/domain"
	"genrpg-server/internal/schema"
)

type fakeTextGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeTextGenerator) Generate(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.response, f.err
}

func testLocation() domain.Location {
	return domain.Location{
		ID:          uuid.New(),
		Name:        "Lake Village",
		Description: "A quaint village with cobblestone paths and friendly faces.",
		Type:        domain.LocationVillage,
	}
}

const validResponse = `{
	"description": "A dog blocks your path.",
	"options": [{"text": "Pet the dog", "consequences": [{"type": "gainXP", "amount": 5}]}]
}`

func TestGenerateSuccess(t *testing.T) {
	fake := &fakeTextGenerator{response: validResponse}
	g := New(fake, zerolog.Nop())

	event, err := g.Generate(context.Background(), domain.NewCharacter("Hero"), testLocation())
	require.NoError(t, err)

	// Ровно один вызов внешнего генератора на Generate.
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "A dog blocks your path.", event.Description)
	require.Len(t, event.Options, 1)
}

func TestGenerateTransportFailure(t *testing.T) {
	fake := &fakeTextGenerator{err: errors.New("connection refused")}
	g := New(fake, zerolog.Nop())

	_, err := g.Generate(context.Background(), domain.NewCharacter("Hero"), testLocation())
	require.Error(t, err)

	genErr, ok := AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, KindTransportFailure, genErr.Kind)
	assert.Empty(t, genErr.Raw)
	assert.Equal(t, 1, fake.calls)
}

func TestGenerateInvalidResponse(t *testing.T) {
	fake := &fakeTextGenerator{response: "I refuse to answer in JSON."}
	g := New(fake, zerolog.Nop())

	_, err := g.Generate(context.Background(), domain.NewCharacter("Hero"), testLocation())
	require.Error(t, err)

	genErr, ok := AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidResponse, genErr.Kind)
	// Сырой текст сохранен для диагностики.
	assert.Equal(t, "I refuse to answer in JSON.", genErr.Raw)

	var decodeErr *schema.DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestBuildInstruction(t *testing.T) {
	character := domain.NewCharacter("Hero")
	character.Level = 3
	character.Strength = 14

	instruction := BuildInstruction(character, testLocation())

	assert.Contains(t, instruction, "Lake Village")
	assert.Contains(t, instruction, "village")
	assert.Contains(t, instruction, "level is 3")
	assert.Contains(t, instruction, "Strength: 14")
	// Структурный контракт встроен в инструкцию.
	assert.Contains(t, instruction, `"consequences"`)
	assert.Contains(t, instruction, `"gainXP"`)
}
