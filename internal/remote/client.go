package remote

import (
	"context"
	"errors"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

var (
	ErrorUnavailable = errors.New("remote unavailable")
	ErrorPermission  = errors.New("permission denied")
)

// Event несет полный снапшот общей коллекции задач либо транспортную ошибку,
// завершившую подписку. Nil Tasks означает отсутствие данных по пути.
type Event struct {
	Tasks map[string]model.TaskRecord
	Err   error
}

// Client определяет примитивы удаленного хранилища: запись/слияние/удаление
// по ключу и подписка на снапшоты всей коллекции. Доставка at-least-once,
// транзакций нет.
type Client interface {
	Put(ctx context.Context, id string, rec model.TaskRecord) error
	Merge(ctx context.Context, id string, fields map[string]any) error
	Remove(ctx context.Context, id string) error
	Subscribe(ctx context.Context) (<-chan Event, func(), error)
}
