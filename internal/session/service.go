package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"genrpg-server/internal/domain"
	"genrpg-server/internal/engine"
	"genrpg-server/internal/generator"
	"genrpg-server/internal/repository"
	"genrpg-server/pkg/tasks"
)

// Status представляет состояние игровой сессии.
type Status string

const (
	// StatusGenerating — идет генерация очередного события.
	StatusGenerating Status = "generating"
	// StatusAwaitingChoice — событие готово, сессия ждет выбора игрока.
	StatusAwaitingChoice Status = "awaiting_choice"
	// StatusFailed — генерация не удалась, доступен повтор.
	StatusFailed Status = "failed"
	// StatusGameOver — здоровье персонажа исчерпано, сессия завершена.
	StatusGameOver Status = "game_over"
)

// ErrWrongStatus возвращается, когда операция недопустима в текущем статусе
// сессии: выбор без готового события, повтор без ошибки и так далее.
var ErrWrongStatus = errors.New("operation is not allowed in the current session status")

// ErrQuestNotFound возвращается, когда активный незавершенный квест
// с указанным ID отсутствует в состоянии игры.
var ErrQuestNotFound = errors.New("active quest not found")

// ImageGenerator — внешняя способность иллюстрирования событий.
type ImageGenerator interface {
	GenerateEventImage(ctx context.Context, eventID uuid.UUID, description string) (string, error)
}

// Notifier рассылает уведомления подключенным клиентам.
type Notifier interface {
	Broadcast(messageType string, payload interface{})
}

// Snapshot — снимок сессии для выдачи наружу.
type Snapshot struct {
	Status    Status            `json:"status"`
	State     *domain.GameState `json:"state"`
	Event     *domain.GameEvent `json:"event,omitempty"`
	ImagePath string            `json:"image_path,omitempty"`
	LastError string            `json:"last_error,omitempty"`
}

// Config содержит настройки сессии.
type Config struct {
	// Slot — ключ слота сохранения.
	Slot string
	// MaxAttempts — число попыток генерации события в рамках одного шага.
	MaxAttempts int
}

// Service ведет одну игровую сессию: хранит подтвержденное состояние,
// крутит цикл выбор-разрешение-генерация и публикует изменения.
// Все операции сериализованы одним мьютексом: одновременных переходов
// состояния не бывает.
type Service struct {
	mu sync.Mutex

	repo     repository.GameStateRepository
	gen      *generator.EventGenerator
	engine   *engine.Engine
	images   ImageGenerator // nil, если иллюстрации выключены
	tasks    *tasks.Manager
	notifier Notifier
	log      zerolog.Logger

	slot        string
	maxAttempts int

	status    Status
	state     *domain.GameState
	event     *domain.GameEvent
	imagePath string
	lastErr   string

	// pending — состояние, уже прошедшее разрешение выбора, но еще не
	// подтвержденное: следующее событие для него не сгенерировано.
	// Используется повтором после неудачной генерации.
	pending *domain.GameState
}

// New создает сервис сессии.
func New(
	cfg Config,
	repo repository.GameStateRepository,
	gen *generator.EventGenerator,
	eng *engine.Engine,
	images ImageGenerator,
	taskManager *tasks.Manager,
	notifier Notifier,
	log zerolog.Logger,
) *Service {
	slot := cfg.Slot
	if slot == "" {
		slot = "default"
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	return &Service{
		repo:        repo,
		gen:         gen,
		engine:      eng,
		images:      images,
		tasks:       taskManager,
		notifier:    notifier,
		log:         log.With().Str("component", "session").Logger(),
		slot:        slot,
		maxAttempts: maxAttempts,
	}
}

// Start восстанавливает сессию из сохранения или начинает новую игру,
// если сохранения нет.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	save, err := s.repo.Load(ctx, s.slot)
	if err != nil {
		if errors.Is(err, repository.ErrSaveNotFound) {
			s.log.Info().Msg("Сохранение не найдено, начинаем новую игру")
			return s.newGameLocked(ctx)
		}
		return fmt.Errorf("failed to restore session: %w", err)
	}

	s.state = save.State
	s.event = save.Event
	s.imagePath = save.ImagePath
	s.pending = nil
	s.lastErr = ""

	switch {
	case !s.state.Character.IsAlive():
		s.status = StatusGameOver
	case s.event != nil:
		s.status = StatusAwaitingChoice
	default:
		// Сохранение без события: шаг генерации был прерван. Доигрываем его.
		s.pending = s.state
		return s.advanceLocked(ctx, s.state)
	}

	s.log.Info().Str("status", string(s.status)).Int("level", s.state.Character.Level).
		Msg("Сессия восстановлена из сохранения")
	return nil
}

// NewGame сбрасывает сессию и начинает новую игру со стартовым состоянием.
func (s *Service) NewGame(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newGameLocked(ctx)
}

func (s *Service) newGameLocked(ctx context.Context) error {
	s.state = nil
	s.event = nil
	s.imagePath = ""
	s.lastErr = ""

	fresh := domain.NewInitialGameState()
	s.pending = fresh
	return s.advanceLocked(ctx, fresh)
}

// Choose применяет вариант текущего события и генерирует следующее событие.
func (s *Service) Choose(ctx context.Context, optionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusAwaitingChoice || s.event == nil {
		return fmt.Errorf("%w: status %s", ErrWrongStatus, s.status)
	}

	next, warnings, err := s.engine.ApplyOption(s.state, s.event, optionID)
	if err != nil {
		return err
	}
	if len(warnings) > 0 {
		s.log.Warn().Int("count", len(warnings)).Msg("Часть последствий выбора пропущена")
	}

	if !next.Character.IsAlive() {
		return s.finishGameLocked(ctx, next)
	}

	s.pending = next
	return s.advanceLocked(ctx, next)
}

// CompleteQuest завершает активный квест: награда применяется тем же
// механизмом последствий, что и выбор в событии, квест помечается
// завершенным. Текущее событие не меняется, новая генерация не запускается.
func (s *Service) CompleteQuest(ctx context.Context, questID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusAwaitingChoice {
		return fmt.Errorf("%w: status %s", ErrWrongStatus, s.status)
	}

	quest, ok := s.state.ActiveQuestByID(questID)
	if !ok || quest.IsCompleted {
		return fmt.Errorf("%w: %s", ErrQuestNotFound, questID)
	}

	next, warnings := s.engine.ApplyQuestReward(s.state, *quest)
	if len(warnings) > 0 {
		s.log.Warn().Int("count", len(warnings)).Msg("Часть награды квеста пропущена")
	}

	if done, ok := next.ActiveQuestByID(questID); ok {
		done.IsCompleted = true
		done.IsActive = false
	}

	// Награда может быть и наказанием: отрицательное здоровье завершает игру.
	if !next.Character.IsAlive() {
		return s.finishGameLocked(ctx, next)
	}

	save := repository.GameSave{State: next, Event: s.event, ImagePath: s.imagePath}
	if err := s.repo.Save(ctx, s.slot, save); err != nil {
		// Подтвержденное состояние не тронуто, повторный вызов безопасен.
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.state = next
	s.log.Info().Str("questID", questID.String()).Msg("Квест завершен")
	s.notify("quest_completed", s.snapshotLocked())
	return nil
}

// Retry повторяет неудачный шаг генерации для уже разрешенного состояния.
func (s *Service) Retry(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusFailed || s.pending == nil {
		return fmt.Errorf("%w: status %s", ErrWrongStatus, s.status)
	}
	return s.advanceLocked(ctx, s.pending)
}

// Snapshot возвращает текущий снимок сессии.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Status:    s.status,
		Event:     s.event,
		ImagePath: s.imagePath,
		LastError: s.lastErr,
	}
	if s.status == StatusFailed && s.pending != nil {
		snap.State = s.pending
	} else {
		snap.State = s.state
	}
	return snap
}

// advanceLocked генерирует событие для состояния next и подтверждает шаг.
// Подтверждение происходит только после успешной записи сохранения: при
// любой ошибке подтвержденное состояние и сохранение остаются прежними,
// сессия переходит в failed и ждет повтора.
func (s *Service) advanceLocked(ctx context.Context, next *domain.GameState) error {
	s.status = StatusGenerating
	s.lastErr = ""

	event, err := s.generateWithRetries(ctx, next)
	if err != nil {
		s.status = StatusFailed
		s.lastErr = err.Error()
		s.log.Error().Err(err).Msg("Генерация события не удалась")
		s.notify("generation_failed", map[string]interface{}{"error": s.lastErr})
		return err
	}

	save := repository.GameSave{State: next, Event: event}
	if err := s.repo.Save(ctx, s.slot, save); err != nil {
		s.status = StatusFailed
		s.lastErr = err.Error()
		s.log.Error().Err(err).Msg("Не удалось записать сохранение")
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.state = next
	s.event = event
	s.imagePath = ""
	s.pending = nil
	s.status = StatusAwaitingChoice

	s.notify("event_ready", s.snapshotLocked())
	s.submitImageTask(event)
	return nil
}

// finishGameLocked фиксирует конец игры: состояние сохраняется без события.
func (s *Service) finishGameLocked(ctx context.Context, next *domain.GameState) error {
	save := repository.GameSave{State: next}
	if err := s.repo.Save(ctx, s.slot, save); err != nil {
		s.status = StatusFailed
		s.lastErr = err.Error()
		s.pending = next
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.state = next
	s.event = nil
	s.imagePath = ""
	s.pending = nil
	s.status = StatusGameOver

	s.log.Info().Int("level", next.Character.Level).Msg("Игра окончена: здоровье исчерпано")
	s.notify("game_over", s.snapshotLocked())
	return nil
}

// generateWithRetries выполняет до maxAttempts попыток генерации события.
func (s *Service) generateWithRetries(ctx context.Context, state *domain.GameState) (*domain.GameEvent, error) {
	location, ok := state.CurrentLocation()
	if !ok {
		return nil, errors.New("current location is missing from the game state")
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		event, err := s.gen.Generate(ctx, state.Character, location)
		if err == nil {
			return event, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, lastErr
		}
		s.log.Warn().Err(err).Int("attempt", attempt).Int("maxAttempts", s.maxAttempts).
			Msg("Попытка генерации события не удалась")
	}
	return nil, lastErr
}

// submitImageTask запускает фоновую генерацию иллюстрации события.
// Иллюстрация — украшение: ее отсутствие или ошибка не влияет на цикл игры.
func (s *Service) submitImageTask(event *domain.GameEvent) {
	if s.images == nil || s.tasks == nil {
		return
	}

	eventID := event.ID
	description := event.Description

	_, err := s.tasks.Submit("event_image", func(ctx context.Context) (interface{}, error) {
		fileName, err := s.images.GenerateEventImage(ctx, eventID, description)
		if err != nil {
			return nil, err
		}
		s.attachImage(ctx, eventID, fileName)
		return fileName, nil
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("Не удалось запустить задачу генерации иллюстрации")
	}
}

// attachImage прикрепляет готовую иллюстрацию к текущему событию. Если
// игрок уже успел сделать выбор и событие сменилось, результат отбрасывается.
func (s *Service) attachImage(ctx context.Context, eventID uuid.UUID, fileName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.event == nil || s.event.ID != eventID {
		return
	}

	s.imagePath = fileName
	save := repository.GameSave{State: s.state, Event: s.event, ImagePath: fileName}
	if err := s.repo.Save(ctx, s.slot, save); err != nil {
		s.log.Warn().Err(err).Msg("Не удалось сохранить путь иллюстрации")
	}

	s.notify("image_ready", map[string]interface{}{
		"event_id":   eventID,
		"image_path": fileName,
	})
}

func (s *Service) snapshotLocked() Snapshot {
	return Snapshot{
		Status:    s.status,
		State:     s.state,
		Event:     s.event,
		ImagePath: s.imagePath,
		LastError: s.lastErr,
	}
}

func (s *Service) notify(messageType string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.Broadcast(messageType, payload)
	}
}
