package tests

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BuzzLyutic/task-sync/internal/model"
	"github.com/BuzzLyutic/task-sync/internal/repo"
)

// SetupTestDB создает тестовую БД с помощью testcontainers
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	ctx := context.Background()

	// Находим путь к миграциям
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filename))
	migrationsPath := filepath.Join(projectRoot, "migrations")

	// Создаем PostgreSQL контейнер
	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.WithInitScripts(filepath.Join(migrationsPath, "001_init.up.sql")),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// TruncateTables очищает все таблицы
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, "TRUNCATE tasks, users CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// WaitForCondition ждет выполнения условия с таймаутом
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// MemoryTaskRepo - репозиторий задач в памяти для тестов без БД
type MemoryTaskRepo struct {
	mu      sync.Mutex
	records map[string]model.TaskRecord
}

func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{records: make(map[string]model.TaskRecord)}
}

func (r *MemoryTaskRepo) Put(ctx context.Context, id string, rec model.TaskRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[id] = rec
	return nil
}

func (r *MemoryTaskRepo) Merge(ctx context.Context, id string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil
	}
	for key, value := range fields {
		switch key {
		case "title":
			if s, ok := value.(string); ok {
				rec.Title = s
			}
		case "description":
			if s, ok := value.(string); ok {
				rec.Description = s
			}
		case "priority":
			if s, ok := value.(string); ok {
				rec.Priority = s
			}
		case "completed":
			if b, ok := value.(bool); ok {
				rec.Completed = b
			}
		case "updatedAt":
			if s, ok := value.(string); ok {
				rec.UpdatedAt = s
			}
		}
	}
	r.records[id] = rec
	return nil
}

func (r *MemoryTaskRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *MemoryTaskRepo) Snapshot(ctx context.Context) (map[string]model.TaskRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]model.TaskRecord, len(r.records))
	for id, rec := range r.records {
		out[id] = rec
	}
	return out, nil
}

// MemoryUserRepo - репозиторий пользователей в памяти
type MemoryUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]model.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byEmail: make(map[string]model.User)}
}

func (r *MemoryUserRepo) CreateUser(ctx context.Context, email, passwordHash string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return model.User{}, repo.ErrorConflict
	}
	user := model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  passwordHash,
		CreatedAt: time.Now(),
	}
	r.byEmail[email] = user

	public := user
	public.Password = ""
	return public, nil
}

func (r *MemoryUserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byEmail[email]
	if !ok {
		return model.User{}, repo.ErrorNotFound
	}
	return user, nil
}
