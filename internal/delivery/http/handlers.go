package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"genrpg-server/internal/engine"
	"genrpg-server/internal/session"
	"genrpg-server/pkg/tasks"
)

// Handler представляет HTTP обработчик
type Handler struct {
	session *session.Service
	tasks   *tasks.Manager
}

// New создает новый экземпляр обработчика
func New(sessionService *session.Service, taskManager *tasks.Manager) *Handler {
	return &Handler{
		session: sessionService,
		tasks:   taskManager,
	}
}

// RegisterRoutes регистрирует маршруты API
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/game", h.GetGame).Methods("GET")
	router.HandleFunc("/game/new", h.NewGame).Methods("POST")
	router.HandleFunc("/game/choice", h.MakeChoice).Methods("POST")
	router.HandleFunc("/game/retry", h.RetryGeneration).Methods("POST")
	router.HandleFunc("/game/quests/{id}/complete", h.CompleteQuest).Methods("POST")

	router.HandleFunc("/tasks/{id}", h.GetTaskStatus).Methods("GET")
}

// GetGame возвращает текущий снимок сессии
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.session.Snapshot())
}

// NewGame сбрасывает сессию и начинает новую игру
func (h *Handler) NewGame(w http.ResponseWriter, r *http.Request) {
	if err := h.session.NewGame(r.Context()); err != nil {
		// Снимок отдаем и при ошибке: в нем статус failed и причина,
		// клиент показывает кнопку повтора.
		RespondWithJSON(w, http.StatusBadGateway, h.session.Snapshot())
		return
	}
	RespondWithJSON(w, http.StatusOK, h.session.Snapshot())
}

type choiceRequest struct {
	OptionID string `json:"option_id"`
}

// MakeChoice применяет вариант текущего события
func (h *Handler) MakeChoice(w http.ResponseWriter, r *http.Request) {
	var req choiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("неверный формат запроса: %v", err))
		return
	}

	optionID, err := uuid.Parse(req.OptionID)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "неверный формат option_id")
		return
	}

	if err := h.session.Choose(r.Context(), optionID); err != nil {
		switch {
		case errors.Is(err, session.ErrWrongStatus):
			RespondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, engine.ErrOptionNotInEvent):
			RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			RespondWithJSON(w, http.StatusBadGateway, h.session.Snapshot())
		}
		return
	}

	RespondWithJSON(w, http.StatusOK, h.session.Snapshot())
}

// RetryGeneration повторяет неудачный шаг генерации
func (h *Handler) RetryGeneration(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Retry(r.Context()); err != nil {
		if errors.Is(err, session.ErrWrongStatus) {
			RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		RespondWithJSON(w, http.StatusBadGateway, h.session.Snapshot())
		return
	}
	RespondWithJSON(w, http.StatusOK, h.session.Snapshot())
}

// CompleteQuest завершает активный квест и начисляет награду
func (h *Handler) CompleteQuest(w http.ResponseWriter, r *http.Request) {
	questID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "неверный формат ID квеста")
		return
	}

	if err := h.session.CompleteQuest(r.Context(), questID); err != nil {
		switch {
		case errors.Is(err, session.ErrWrongStatus):
			RespondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, session.ErrQuestNotFound):
			RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			RespondWithJSON(w, http.StatusBadGateway, h.session.Snapshot())
		}
		return
	}

	RespondWithJSON(w, http.StatusOK, h.session.Snapshot())
}

// GetTaskStatus возвращает состояние фоновой задачи
func (h *Handler) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	taskID, err := uuid.Parse(idStr)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "неверный формат ID задачи")
		return
	}

	task, err := h.tasks.Get(taskID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"task_id": task.ID,
		"kind":    task.Kind,
		"status":  task.Status,
		"message": task.Message,
		"result":  task.Result,
	})
}

// RespondWithError отправляет ошибку в формате JSON
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// RespondWithJSON отправляет ответ в формате JSON
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
