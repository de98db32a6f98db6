package repo

import (
	"context"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

// TaskRepository повторяет примитивы удаленного хранилища: upsert целой
// записи, слияние полей, идемпотентное удаление и полный снапшот коллекции
type TaskRepository interface {
	Put(ctx context.Context, id string, rec model.TaskRecord) error
	Merge(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	Snapshot(ctx context.Context) (map[string]model.TaskRecord, error)
}

// UserRepository определяет интерфейс для работы с пользователями
type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
}
