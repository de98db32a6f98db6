package sync

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-sync/internal/model"
	"github.com/BuzzLyutic/task-sync/internal/remote"
)

type State string

const (
	StateOK    State = "ok"
	StateEmpty State = "empty"
	StateError State = "error"
)

// Snapshot - размеченный результат подписки: Ok с задачами, Empty при
// отсутствии данных, Error при транспортном сбое. Потребитель может отличить
// "задач нет" от "подписка сломалась".
type Snapshot struct {
	State State
	Tasks []model.Task
	Err   error
}

type Callback func(Snapshot)

// SubscriptionManager держит живую подписку на коллекцию задач и отдает
// потребителю только строки текущего пользователя
type SubscriptionManager struct {
	client remote.Client
	logger *zap.Logger
}

func NewSubscriptionManager(client remote.Client, logger *zap.Logger) *SubscriptionManager {
	return &SubscriptionManager{
		client: client,
		logger: logger,
	}
}

// Subscribe attaches a live listener for userID's tasks. The callback fires
// once per remote change with the complete current set, in arrival order (no
// ordering guarantee). The returned function detaches the listener and is
// safe to call multiple times.
//
// An empty userID means no authenticated session: the callback fires once
// with an empty snapshot and nothing is subscribed.
func (m *SubscriptionManager) Subscribe(ctx context.Context, userID string, cb Callback) (func(), error) {
	if userID == "" {
		cb(Snapshot{State: StateEmpty, Tasks: []model.Task{}})
		return func() {}, nil
	}

	events, cancel, err := m.client.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			close(done)
		})
	}

	go func() {
		for ev := range events {
			select {
			case <-done:
				return
			default:
			}
			cb(m.translate(userID, ev))
		}
	}()

	return unsubscribe, nil
}

// translate фильтрует снапшот по владельцу; чужие строки молча отбрасываются
func (m *SubscriptionManager) translate(userID string, ev remote.Event) Snapshot {
	if ev.Err != nil {
		m.logger.Warn("subscription error", zap.Error(ev.Err))
		return Snapshot{State: StateError, Err: ev.Err}
	}

	if len(ev.Tasks) == 0 {
		return Snapshot{State: StateEmpty, Tasks: []model.Task{}}
	}

	tasks := make([]model.Task, 0, len(ev.Tasks))
	for id, rec := range ev.Tasks {
		if rec.OwnerID != userID {
			continue
		}
		tasks = append(tasks, model.TaskFromRecord(id, rec))
	}
	return Snapshot{State: StateOK, Tasks: tasks}
}
