package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genrpg-server/internal/engine"
	"genrpg-server/internal/generator"
	"genrpg-server/internal/repository"
	"genrpg-server/internal/session"
	"genrpg-server/pkg/tasks"
)

type stubTextGenerator struct{ response string }

func (s *stubTextGenerator) Generate(_ context.Context, _ string) (string, error) {
	return s.response, nil
}

type stubRepo struct{ saves map[string]repository.GameSave }

func (r *stubRepo) Save(_ context.Context, slot string, save repository.GameSave) error {
	r.saves[slot] = save
	return nil
}

func (r *stubRepo) Load(_ context.Context, slot string) (repository.GameSave, error) {
	save, ok := r.saves[slot]
	if !ok {
		return repository.GameSave{}, repository.ErrSaveNotFound
	}
	return save, nil
}

func (r *stubRepo) Delete(_ context.Context, slot string) error {
	delete(r.saves, slot)
	return nil
}

func newTestRouter(t *testing.T) (*mux.Router, *session.Service) {
	t.Helper()
	log := zerolog.Nop()

	text := &stubTextGenerator{response: `{
		"description": "A cat watches you from a fence.",
		"options": [{"text": "Wave", "consequences": [{"type": "gainXP", "amount": 5}]}]
	}`}

	svc := session.New(
		session.Config{Slot: "test", MaxAttempts: 1},
		&stubRepo{saves: make(map[string]repository.GameSave)},
		generator.New(text, log),
		engine.New(log),
		nil, nil, nil,
		log,
	)
	require.NoError(t, svc.Start(context.Background()))

	router := mux.NewRouter()
	New(svc, tasks.New(tasks.Config{}, log)).RegisterRoutes(router)
	return router, svc
}

func TestGetGame(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/game", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, session.StatusAwaitingChoice, snap.Status)
	require.NotNil(t, snap.Event)
	assert.Equal(t, "A cat watches you from a fence.", snap.Event.Description)
}

func TestMakeChoice(t *testing.T) {
	router, svc := newTestRouter(t)
	optionID := svc.Snapshot().Event.Options[0].ID

	body := fmt.Sprintf(`{"option_id": %q}`, optionID)
	req := httptest.NewRequest(http.MethodPost, "/game/choice", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 5, snap.State.Character.XP)
}

func TestMakeChoiceBadOptionID(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/game/choice", strings.NewReader(`{"option_id": "not-a-uuid"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMakeChoiceForeignOption(t *testing.T) {
	router, _ := newTestRouter(t)

	body := fmt.Sprintf(`{"option_id": %q}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/game/choice", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRetryWithoutFailure(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/game/retry", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCompleteQuestUnknown(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/game/quests/"+uuid.New().String()+"/complete", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompleteQuestBadID(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/game/quests/not-a-uuid/complete", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTaskStatusNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/tasks/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
