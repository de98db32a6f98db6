package sync

import (
	"sort"
	"strings"
	"sync/atomic"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

// Store держит последний известный снапшот задач активного пользователя.
// Каждый новый снапшот полностью замещает предыдущий: атомарная подмена
// неизменяемого среза, читатели никогда не видят частичное обновление.
// Единственный писатель - callback подписки.
type Store struct {
	snapshot atomic.Pointer[[]model.Task]
	lastErr  atomic.Pointer[error]
}

func NewStore() *Store {
	s := &Store{}
	empty := make([]model.Task, 0)
	s.snapshot.Store(&empty)
	return s
}

// Apply is the subscription callback. OK and Empty snapshots replace the
// current collection wholesale; an Error snapshot keeps the last known-good
// collection and records the cause.
func (s *Store) Apply(snap Snapshot) {
	if snap.State == StateError {
		err := snap.Err
		s.lastErr.Store(&err)
		return
	}

	tasks := make([]model.Task, len(snap.Tasks))
	copy(tasks, snap.Tasks)

	// Стабильный порядок показа: по времени создания, затем по id.
	// Удаленный источник порядок не гарантирует.
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt != tasks[j].CreatedAt {
			return tasks[i].CreatedAt < tasks[j].CreatedAt
		}
		return tasks[i].ID < tasks[j].ID
	})

	s.snapshot.Store(&tasks)
	s.lastErr.Store(nil)
}

// Current возвращает последний снапшот; срез нельзя мутировать
func (s *Store) Current() []model.Task {
	return *s.snapshot.Load()
}

// Err returns the error from the most recent failed snapshot, or nil if the
// last delivery succeeded.
func (s *Store) Err() error {
	p := s.lastErr.Load()
	if p == nil {
		return nil
	}
	return *p
}

func (s *Store) Get(id string) (model.Task, bool) {
	for _, t := range s.Current() {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Filter applies the spec over the current snapshot: completion state narrows
// to pending/completed, the search term is a case-insensitive substring match
// against title or description. Both conditions AND together.
func (s *Store) Filter(spec model.FilterSpec) []model.Task {
	current := s.Current()
	term := strings.ToLower(strings.TrimSpace(spec.Search))

	out := make([]model.Task, 0, len(current))
	for _, t := range current {
		switch spec.Completion {
		case model.CompletionPending:
			if t.Completed {
				continue
			}
		case model.CompletionCompleted:
			if !t.Completed {
				continue
			}
		}

		if term != "" &&
			!strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			continue
		}

		out = append(out, t)
	}
	return out
}
