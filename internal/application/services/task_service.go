package services

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dayslot/core/internal/domain/entities"
	"github.com/dayslot/core/internal/domain/schedule"
	"github.com/dayslot/core/internal/infrastructure/logger"
	"github.com/dayslot/core/internal/ports"
)

// TaskService owns the task lifecycle and the per-user editing session.
//
// Every mutating operation re-reads the clock and re-checks the lock rule
// immediately before touching the store: network latency can carry a slot
// across the lock boundary between the moment an edit was proposed and the
// moment it is committed, and a UI decision made earlier is not trusted.
type TaskService struct {
	taskRepo ports.TaskRepository
	clock    schedule.Clock
	logger   *logger.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]ports.EditSession
}

// NewTaskService creates a new task service.
func NewTaskService(taskRepo ports.TaskRepository, clock schedule.Clock, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		clock:    clock,
		logger:   logger,
		sessions: make(map[uuid.UUID]ports.EditSession),
	}
}

// savedTask is a validated, canonicalized form submission.
type savedTask struct {
	title    string
	notes    *string
	date     schedule.Date
	start    schedule.ClockTime
	end      schedule.ClockTime
	priority entities.Priority
}

// validate canonicalizes the form fields. Title, date and start time are
// required by the application even though the store would accept their
// absence.
func validate(req ports.SaveTaskRequest) (savedTask, error) {
	var out savedTask

	out.title = strings.TrimSpace(req.Title)
	if out.title == "" {
		return out, &entities.ValidationError{Field: "title"}
	}

	if req.Date == "" {
		return out, &entities.ValidationError{Field: "date"}
	}
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		return out, &entities.ValidationError{Field: "date", Reason: err.Error()}
	}
	out.date = date

	if req.StartTime == "" {
		return out, &entities.ValidationError{Field: "start time"}
	}
	start, err := schedule.ParseClockTime(req.StartTime)
	if err != nil {
		return out, &entities.ValidationError{Field: "start time", Reason: err.Error()}
	}
	out.start = start

	// End time is optional and no ordering against start is enforced.
	end, err := schedule.ParseClockTime(req.EndTime)
	if err != nil {
		return out, &entities.ValidationError{Field: "end time", Reason: err.Error()}
	}
	out.end = end

	out.notes = req.Notes
	out.priority = entities.PriorityFromSlug(req.Priority)

	return out, nil
}

// List returns the owner's non-deleted tasks for the day, ordered by start
// time then priority, each annotated with its lock status. The reference
// instant is read once so the whole listing is consistent with a single
// point-in-time evaluation.
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID, date schedule.Date) ([]*entities.Task, error) {
	if ownerID == uuid.Nil {
		return nil, &entities.AuthRequiredError{}
	}

	tasks, err := s.taskRepo.ListByDate(ctx, ownerID, date)
	if err != nil {
		return nil, entities.Storef("list tasks", err)
	}

	now := s.clock.Now()
	for _, t := range tasks {
		t.Locked = t.LockedAt(now)
	}

	return tasks, nil
}

// Create validates the candidate and inserts it with the owner stamped. A slot
// that is already past or started is rejected before any store call.
func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, req ports.SaveTaskRequest) (*entities.Task, error) {
	if ownerID == uuid.Nil {
		return nil, &entities.AuthRequiredError{}
	}

	saved, err := validate(req)
	if err != nil {
		return nil, err
	}

	if schedule.LockedNow(s.clock, saved.date, saved.start) {
		return nil, entities.ErrSlotLocked()
	}

	task := &entities.Task{
		OwnerID:   ownerID,
		Title:     saved.title,
		Notes:     saved.notes,
		Date:      saved.date,
		StartTime: saved.start,
		EndTime:   saved.end,
		Priority:  saved.priority,
		IsAllDay:  false,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, entities.Storef("create task", err)
	}

	s.logger.Info("Task created", "task_id", task.ID, "owner_id", ownerID, "date", task.Date)

	return task, nil
}

// Update saves an edit to the task currently being edited. Two independent
// lock checks must pass against a fresh clock reading: the proposed slot must
// still be open, and the original snapshot taken at BeginEdit must not have
// locked in the meantime. A lock failure aborts before the store call and
// clears the session so the user is not stuck mid-edit on a task that has
// become read-only.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID uuid.UUID, req ports.SaveTaskRequest) (*entities.Task, error) {
	if ownerID == uuid.Nil {
		return nil, &entities.AuthRequiredError{}
	}

	saved, err := validate(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[ownerID]
	if !ok || sess.TaskID != taskID {
		return nil, entities.ErrNoTaskSelected()
	}

	// Either lock failure aborts before the store call and clears the
	// session, so the user is not left mid-edit on a now-invalid task.
	if schedule.LockedNow(s.clock, saved.date, saved.start) {
		delete(s.sessions, ownerID)
		return nil, entities.ErrSlotLocked()
	}
	if schedule.LockedNow(s.clock, sess.Date, sess.StartTime) {
		// The stored record has crossed into the locked state since
		// editing began; it must not be retroactively altered.
		delete(s.sessions, ownerID)
		return nil, entities.ErrOriginalLocked()
	}

	task := &entities.Task{
		ID:        taskID,
		OwnerID:   ownerID,
		Title:     saved.title,
		Notes:     saved.notes,
		Date:      saved.date,
		StartTime: saved.start,
		EndTime:   saved.end,
		Priority:  saved.priority,
		IsAllDay:  false,
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		// Session stays intact so the same edit can be retried.
		return nil, entities.Storef("update task", err)
	}

	delete(s.sessions, ownerID)
	s.logger.Info("Task updated", "task_id", taskID, "owner_id", ownerID, "date", task.Date)

	return task, nil
}

// SoftDelete marks the task deleted, never removing the row. The quick-delete
// path from a list row supplies the row's own schedule, which populates the
// session exactly as BeginEdit would; otherwise an active session matching the
// id is required. The snapshot must be unlocked and the caller must have
// confirmed.
func (s *TaskService) SoftDelete(ctx context.Context, ownerID, taskID uuid.UUID, req ports.DeleteTaskRequest) error {
	if ownerID == uuid.Nil {
		return &entities.AuthRequiredError{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Date != nil && req.StartTime != nil {
		date, err := schedule.ParseDate(*req.Date)
		if err != nil {
			return &entities.ValidationError{Field: "date", Reason: err.Error()}
		}
		start, err := schedule.ParseClockTime(*req.StartTime)
		if err != nil {
			return &entities.ValidationError{Field: "start time", Reason: err.Error()}
		}
		s.sessions[ownerID] = ports.EditSession{TaskID: taskID, Date: date, StartTime: start}
	}

	sess, ok := s.sessions[ownerID]
	if !ok || sess.TaskID != taskID {
		return entities.ErrNoTaskSelected()
	}

	if schedule.LockedNow(s.clock, sess.Date, sess.StartTime) {
		delete(s.sessions, ownerID)
		return entities.ErrOriginalLocked()
	}

	if !req.Confirmed {
		// The confirmation gate lives in the presentation layer; without
		// an affirmative signal nothing is touched and the session is
		// kept so the user can confirm and retry.
		return entities.ErrConfirmationRequired()
	}

	if err := s.taskRepo.SoftDelete(ctx, taskID, ownerID, s.clock.Now()); err != nil {
		return entities.Storef("delete task", err)
	}

	delete(s.sessions, ownerID)
	s.logger.Info("Task soft-deleted", "task_id", taskID, "owner_id", ownerID)

	return nil
}

// BeginEdit captures the task's id, date and start time into the editing
// session. A locked task is rejected with no state change.
func (s *TaskService) BeginEdit(ctx context.Context, ownerID, taskID uuid.UUID) (*entities.Task, error) {
	if ownerID == uuid.Nil {
		return nil, &entities.AuthRequiredError{}
	}

	task, err := s.taskRepo.GetByID(ctx, taskID, ownerID)
	if err != nil {
		if err == entities.ErrTaskNotFound {
			return nil, err
		}
		return nil, entities.Storef("get task", err)
	}
	if task.IsDeleted() {
		return nil, entities.ErrTaskNotFound
	}

	if schedule.LockedNow(s.clock, task.Date, task.StartTime) {
		return nil, entities.ErrOriginalLocked()
	}

	s.mu.Lock()
	s.sessions[ownerID] = ports.EditSession{
		TaskID:    task.ID,
		Date:      task.Date,
		StartTime: task.StartTime,
	}
	s.mu.Unlock()

	task.Locked = false
	return task, nil
}

// Session returns the owner's editing session, if any.
func (s *TaskService) Session(ownerID uuid.UUID) (ports.EditSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[ownerID]
	return sess, ok
}

// ResetSession clears the owner's editing session (the "cancel" path).
func (s *TaskService) ResetSession(ownerID uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, ownerID)
	s.mu.Unlock()
}
