package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Status представляет статус задачи
type Status string

// Возможные статусы задач
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Func представляет функцию, выполняемую в задаче
type Func func(ctx context.Context) (interface{}, error)

// Task представляет асинхронную задачу
type Task struct {
	ID        uuid.UUID
	Kind      string
	Status    Status
	Message   string
	Result    interface{}
	CreatedAt time.Time
	UpdatedAt time.Time
	cancel    context.CancelFunc
}

// Notifier получает уведомления об изменении статуса задачи. Сессия одна,
// поэтому адресной доставки нет, только широковещание.
type Notifier interface {
	Broadcast(messageType string, payload interface{})
}

// Manager управляет асинхронными задачами: фоновая генерация иллюстраций
// и другая работа, которую не нужно держать в HTTP-запросе.
type Manager struct {
	mu       sync.RWMutex
	tasks    map[uuid.UUID]*Task
	maxTasks int
	notifier Notifier
	closing  chan struct{}
	wg       sync.WaitGroup
	log      zerolog.Logger
}

// Config содержит конфигурацию для Manager
type Config struct {
	MaxTasks int
}

// New создает новый экземпляр Manager
func New(cfg Config, log zerolog.Logger) *Manager {
	maxTasks := cfg.MaxTasks
	if maxTasks <= 0 {
		maxTasks = 10
	}

	return &Manager{
		tasks:    make(map[uuid.UUID]*Task),
		maxTasks: maxTasks,
		closing:  make(chan struct{}),
		log:      log.With().Str("component", "tasks").Logger(),
	}
}

// SetNotifier устанавливает получателя уведомлений о статусах задач.
func (m *Manager) SetNotifier(notifier Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifier = notifier
}

// Submit создает и запускает новую задачу указанного вида.
// Контекст задачи независим от контекста запроса: завершение HTTP-запроса
// не отменяет фоновую работу.
func (m *Manager) Submit(kind string, fn Func) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.closing:
		return uuid.UUID{}, errors.New("менеджер задач останавливается")
	default:
	}

	active := 0
	for _, task := range m.tasks {
		if task.Status == StatusPending || task.Status == StatusRunning {
			active++
		}
	}
	if active >= m.maxTasks {
		return uuid.UUID{}, errors.New("превышено максимальное количество активных задач")
	}

	taskCtx, cancel := context.WithCancel(context.Background())

	task := &Task{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		cancel:    cancel,
	}
	m.tasks[task.ID] = task

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()
		m.run(taskCtx, task, fn)
	}()

	return task.ID, nil
}

func (m *Manager) run(ctx context.Context, task *Task, fn Func) {
	m.update(task, StatusRunning, "Задача запущена", nil)

	result, err := fn(ctx)

	if ctx.Err() != nil {
		m.update(task, StatusCancelled, "Задача отменена", nil)
		return
	}

	if err != nil {
		m.log.Error().Err(err).Str("taskID", task.ID.String()).Str("kind", task.Kind).
			Msg("Задача завершилась с ошибкой")
		m.update(task, StatusFailed, fmt.Sprintf("Ошибка: %v", err), nil)
		return
	}

	m.update(task, StatusCompleted, "Задача успешно выполнена", result)
}

// update обновляет статус задачи и рассылает уведомление.
func (m *Manager) update(task *Task, status Status, message string, result interface{}) {
	m.mu.Lock()
	task.Status = status
	task.Message = message
	task.UpdatedAt = time.Now()
	if result != nil {
		task.Result = result
	}
	notifier := m.notifier
	m.mu.Unlock()

	if notifier != nil {
		payload := map[string]interface{}{
			"task_id": task.ID,
			"kind":    task.Kind,
			"status":  task.Status,
			"message": task.Message,
		}
		if status == StatusCompleted && task.Result != nil {
			payload["result"] = task.Result
		}
		notifier.Broadcast("task_update", payload)
	}

	m.log.Debug().
		Str("taskID", task.ID.String()).
		Str("kind", task.Kind).
		Str("status", string(status)).
		Msg("Статус задачи обновлен")
}

// Get возвращает снимок задачи по ID. Именно копию: живой объект продолжает
// изменяться горутиной задачи под мьютексом, и читать его поля после
// освобождения мьютекса было бы гонкой.
func (m *Manager) Get(taskID uuid.UUID) (Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, ok := m.tasks[taskID]
	if !ok {
		return Task{}, fmt.Errorf("задача с ID %s не найдена", taskID)
	}

	snapshot := *task
	snapshot.cancel = nil
	return snapshot, nil
}

// Cancel отменяет выполнение задачи
func (m *Manager) Cancel(taskID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok {
		return fmt.Errorf("задача с ID %s не найдена", taskID)
	}
	if task.Status != StatusPending && task.Status != StatusRunning {
		return fmt.Errorf("невозможно отменить задачу в статусе %s", task.Status)
	}

	task.cancel()
	return nil
}

// Cleanup удаляет завершенные задачи старше указанного возраста.
func (m *Manager) Cleanup(age time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, task := range m.tasks {
		done := task.Status == StatusCompleted || task.Status == StatusFailed || task.Status == StatusCancelled
		if done && now.Sub(task.UpdatedAt) > age {
			delete(m.tasks, id)
		}
	}
}

// Shutdown отменяет незавершенные задачи и ждет остановки всех горутин
// либо истечения контекста.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	select {
	case <-m.closing:
	default:
		close(m.closing)
	}
	for _, task := range m.tasks {
		if task.Status == StatusPending || task.Status == StatusRunning {
			task.cancel()
		}
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.New("таймаут при ожидании завершения задач")
	}
}
