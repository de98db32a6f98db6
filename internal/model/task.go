package model

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 500
)

// NormalizePriority возвращает medium для пустых и неизвестных значений
func NormalizePriority(raw string) Priority {
	switch Priority(raw) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(raw)
	default:
		return PriorityMedium
	}
}

type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Completed   bool     `json:"completed"`
	Priority    Priority `json:"priority"`
	OwnerID     string   `json:"ownerId"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// TaskRecord - запись на проводе; id живет в ключе коллекции, не в записи
type TaskRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Completed   bool   `json:"completed"`
	OwnerID     string `json:"ownerId"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

func TaskFromRecord(id string, rec TaskRecord) Task {
	return Task{
		ID:          id,
		Title:       rec.Title,
		Description: rec.Description,
		Completed:   rec.Completed,
		Priority:    NormalizePriority(rec.Priority),
		OwnerID:     rec.OwnerID,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func (t Task) Record() TaskRecord {
	return TaskRecord{
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(NormalizePriority(string(t.Priority))),
		Completed:   t.Completed,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type CompletionState string

const (
	CompletionAll       CompletionState = "all"
	CompletionPending   CompletionState = "pending"
	CompletionCompleted CompletionState = "completed"
)

type FilterSpec struct {
	Completion CompletionState
	Search     string
}
