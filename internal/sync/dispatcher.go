package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-sync/internal/model"
	"github.com/BuzzLyutic/task-sync/internal/remote"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNoSession  = errors.New("no authenticated session")
)

type CreateInput struct {
	Title       string         `validate:"required,max=100"`
	Description string         `validate:"max=500"`
	Priority    model.Priority `validate:"omitempty,oneof=low medium high"`
}

// Dispatcher превращает намерение пользователя в одиночную запись против
// удаленного хранилища. Валидация выполняется до любого сетевого вызова;
// локальный снапшот не трогается - он обновится со следующей доставкой.
type Dispatcher struct {
	client   remote.Client
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

func NewDispatcher(client remote.Client) *Dispatcher {
	return &Dispatcher{
		client:   client,
		validate: validator.New(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Create записывает новую задачу и возвращает ее id, не дожидаясь следующего
// снапшота подписки
func (d *Dispatcher) Create(ctx context.Context, userID string, in CreateInput) (string, error) {
	if userID == "" {
		return "", ErrNoSession
	}
	if strings.TrimSpace(in.Title) == "" {
		return "", fmt.Errorf("%w: empty title", ErrValidation)
	}
	if err := d.validate.Struct(in); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	id := d.newID()
	rec := model.TaskRecord{
		Title:       in.Title,
		Description: in.Description,
		Priority:    string(model.NormalizePriority(string(in.Priority))),
		Completed:   false,
		OwnerID:     userID,
		CreatedAt:   d.now().UTC().Format(time.RFC3339),
	}

	if err := d.client.Put(ctx, id, rec); err != nil {
		return "", err
	}
	return id, nil
}

// Update merges only the supplied fields into the remote record, stamping
// updatedAt. Unknown or immutable fields are rejected locally. Last write
// wins per field, no version check.
func (d *Dispatcher) Update(ctx context.Context, id string, fields map[string]any) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrValidation)
	}

	merged := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		switch key {
		case "title":
			title, ok := value.(string)
			if !ok || strings.TrimSpace(title) == "" || len(title) > model.MaxTitleLen {
				return fmt.Errorf("%w: invalid title", ErrValidation)
			}
		case "description":
			desc, ok := value.(string)
			if !ok || len(desc) > model.MaxDescriptionLen {
				return fmt.Errorf("%w: invalid description", ErrValidation)
			}
		case "priority":
			raw, ok := value.(string)
			if !ok || model.NormalizePriority(raw) != model.Priority(raw) {
				return fmt.Errorf("%w: invalid priority", ErrValidation)
			}
		case "completed":
			if _, ok := value.(bool); !ok {
				return fmt.Errorf("%w: invalid completed flag", ErrValidation)
			}
		default:
			return fmt.Errorf("%w: field %q is not updatable", ErrValidation, key)
		}
		merged[key] = value
	}

	merged["updatedAt"] = d.now().UTC().Format(time.RFC3339)
	return d.client.Merge(ctx, id, merged)
}

// Delete идемпотентен: удаление несуществующего id - тихий no-op
func (d *Dispatcher) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrValidation)
	}
	return d.client.Remove(ctx, id)
}

// ToggleCompletion flips the flag based on the value the caller last saw.
// Not atomic: concurrent toggles resolve last-write-wins.
func (d *Dispatcher) ToggleCompletion(ctx context.Context, id string, current bool) error {
	return d.Update(ctx, id, map[string]any{"completed": !current})
}
