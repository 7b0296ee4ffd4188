package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dayslot/core/internal/domain/entities"
	"github.com/dayslot/core/internal/domain/schedule"
	"github.com/dayslot/core/internal/ports"
)

// MemoryTaskRepository is an in-memory TaskRepository honouring the same
// owner-scoping, soft-delete and ordering contract as the Postgres
// implementation. It backs the service tests and local development.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]entities.Task
}

// NewMemoryTaskRepository creates an empty in-memory task repository.
func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{tasks: make(map[uuid.UUID]entities.Task)}
}

var _ ports.TaskRepository = (*MemoryTaskRepository)(nil)

func (r *MemoryTaskRepository) ListByDate(ctx context.Context, ownerID uuid.UUID, date schedule.Date) ([]*entities.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Task, 0)
	for _, t := range r.tasks {
		if t.OwnerID != ownerID || t.Date != date || t.IsDeleted() {
			continue
		}
		t := t
		out = append(out, &t)
	}

	// start_time asc, then priority asc; both orders are plain string/int
	// comparisons because the stored forms are canonical.
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].Priority < out[j].Priority
	})

	return out, nil
}

func (r *MemoryTaskRepository) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*entities.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, entities.ErrTaskNotFound
	}
	return &t, nil
}

func (r *MemoryTaskRepository) Create(ctx context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	task.ID = uuid.New()
	task.CreatedAt = now
	task.UpdatedAt = now

	r.tasks[task.ID] = *task
	return nil
}

func (r *MemoryTaskRepository) Update(ctx context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID || existing.IsDeleted() {
		return entities.ErrTaskNotFound
	}

	existing.Title = task.Title
	existing.Notes = task.Notes
	existing.Date = task.Date
	existing.StartTime = task.StartTime
	existing.EndTime = task.EndTime
	existing.Priority = task.Priority
	existing.IsAllDay = task.IsAllDay
	existing.UpdatedAt = time.Now()

	r.tasks[task.ID] = existing

	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *MemoryTaskRepository) SoftDelete(ctx context.Context, id, ownerID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[id]
	if !ok || existing.OwnerID != ownerID || existing.IsDeleted() {
		return entities.ErrTaskNotFound
	}

	existing.DeletedAt = &at
	existing.UpdatedAt = at
	r.tasks[id] = existing
	return nil
}
