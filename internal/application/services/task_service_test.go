package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayslot/core/internal/adapters/repository"
	"github.com/dayslot/core/internal/domain/entities"
	"github.com/dayslot/core/internal/domain/schedule"
	"github.com/dayslot/core/internal/infrastructure/config"
	"github.com/dayslot/core/internal/infrastructure/logger"
	"github.com/dayslot/core/internal/ports"
)

// fakeClock is a settable clock so tests can walk a task across the lock
// boundary.
type fakeClock struct{ at time.Time }

func (f *fakeClock) Now() time.Time { return f.at }

func (f *fakeClock) set(year int, month time.Month, day, hour, min int) {
	f.at = time.Date(year, month, day, hour, min, 0, 0, time.Local)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(config.LoggerConfig{Level: "error", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	return l
}

func newTestService(t *testing.T) (*TaskService, *repository.MemoryTaskRepository, *fakeClock) {
	t.Helper()
	repo := repository.NewMemoryTaskRepository()
	clock := &fakeClock{}
	clock.set(2025, time.March, 10, 12, 0)
	return NewTaskService(repo, clock, testLogger(t)), repo, clock
}

func saveReq(title, date, start string) ports.SaveTaskRequest {
	return ports.SaveTaskRequest{Title: title, Date: date, StartTime: start, Priority: "normal"}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	cases := []struct {
		name  string
		req   ports.SaveTaskRequest
		field string
	}{
		// Title is checked before scheduling, so an empty title fails
		// validation even when the slot itself would conflict.
		{"empty title, past slot", saveReq("", "2025-03-10", "10:00"), "title"},
		{"empty title, future slot", saveReq("", "2025-03-10", "18:00"), "title"},
		{"whitespace title", saveReq("   ", "2025-03-11", "10:00"), "title"},
		{"missing date", saveReq("errands", "", "10:00"), "date"},
		{"malformed date", saveReq("errands", "2025-3-10", "10:00"), "date"},
		{"missing start", saveReq("errands", "2025-03-11", ""), "start time"},
		{"malformed start", saveReq("errands", "2025-03-11", "9am"), "start time"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Create(ctx, owner, c.req)
			var ve *entities.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, c.field, ve.Field)
		})
	}
}

func TestCreate_RejectsLockedSlot(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	clock.set(2025, time.March, 10, 12, 0)

	// One minute in the past.
	_, err := svc.Create(ctx, owner, saveReq("too late", "2025-03-10", "11:59"))
	assert.True(t, entities.IsConflict(err))

	// Exactly now: already underway.
	_, err = svc.Create(ctx, owner, saveReq("right now", "2025-03-10", "12:00"))
	assert.True(t, entities.IsConflict(err))

	// Yesterday, any time.
	_, err = svc.Create(ctx, owner, saveReq("yesterday", "2025-03-09", "23:59"))
	assert.True(t, entities.IsConflict(err))

	// One minute ahead is fine.
	task, err := svc.Create(ctx, owner, saveReq("soon", "2025-03-10", "12:01"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, owner, task.OwnerID)
}

func TestCreate_RequiresOwner(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), uuid.Nil, saveReq("x", "2025-03-11", "10:00"))
	var ar *entities.AuthRequiredError
	assert.ErrorAs(t, err, &ar)
}

func TestList_OrderingAndAnnotations(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	clock.set(2025, time.March, 10, 7, 0)

	a := ports.SaveTaskRequest{Title: "A", Date: "2025-03-10", StartTime: "09:00", Priority: "normal"}
	b := ports.SaveTaskRequest{Title: "B", Date: "2025-03-10", StartTime: "09:00", Priority: "most_important"}
	c := ports.SaveTaskRequest{Title: "C", Date: "2025-03-10", StartTime: "08:00", Priority: "important"}
	for _, req := range []ports.SaveTaskRequest{a, b, c} {
		_, err := svc.Create(ctx, owner, req)
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, owner, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Start time ascending, then priority ascending within the 09:00 tie.
	assert.Equal(t, []string{"C", "B", "A"}, []string{got[0].Title, got[1].Title, got[2].Title})

	// Nothing has started at 07:00.
	for _, task := range got {
		assert.False(t, task.Locked, task.Title)
	}

	// At 08:30, C (08:00) has started; B and A (09:00) have not.
	clock.set(2025, time.March, 10, 8, 30)
	got, err = svc.List(ctx, owner, "2025-03-10")
	require.NoError(t, err)
	assert.True(t, got[0].Locked)
	assert.False(t, got[1].Locked)
	assert.False(t, got[2].Locked)
}

func TestList_Idempotent(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	clock.set(2025, time.March, 10, 7, 0)

	for _, req := range []ports.SaveTaskRequest{
		saveReq("one", "2025-03-10", "09:00"),
		saveReq("two", "2025-03-10", "10:00"),
	} {
		_, err := svc.Create(ctx, owner, req)
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, owner, "2025-03-10")
	require.NoError(t, err)
	second, err := svc.List(ctx, owner, "2025-03-10")
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Locked, second[i].Locked)
	}
}

func TestList_ScopedToOwnerAndDate(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	clock.set(2025, time.March, 10, 7, 0)

	_, err := svc.Create(ctx, alice, saveReq("alice today", "2025-03-10", "09:00"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice, saveReq("alice tomorrow", "2025-03-11", "09:00"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, saveReq("bob today", "2025-03-10", "09:00"))
	require.NoError(t, err)

	got, err := svc.List(ctx, alice, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice today", got[0].Title)
}

func TestBeginEdit(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	clock.set(2025, time.March, 10, 7, 0)

	task, err := svc.Create(ctx, owner, saveReq("review notes", "2025-03-10", "09:00"))
	require.NoError(t, err)

	_, err = svc.BeginEdit(ctx, owner, task.ID)
	require.NoError(t, err)

	sess, ok := svc.Session(owner)
	require.True(t, ok)
	assert.Equal(t, task.ID, sess.TaskID)
	assert.Equal(t, schedule.Date("2025-03-10"), sess.Date)
	assert.Equal(t, schedule.ClockTime("09:00"), sess.StartTime)
}

func TestBeginEdit_LockedTaskRejected(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	clock.set(2025, time.March, 10, 7, 0)

	task, err := svc.Create(ctx, owner, saveReq("early slot", "2025-03-10", "09:00"))
	require.NoError(t, err)

	// The slot passes before the user clicks Edit.
	clock.set(2025, time.March, 10, 9, 0)

	_, err = svc.BeginEdit(ctx, owner, task.ID)
	assert.True(t, entities.IsConflict(err))

	// No state change on rejection.
	_, ok := svc.Session(owner)
	assert.False(t, ok)
}

func TestUpdate_NoSessionRejected(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	clock.set(2025, time.March, 10, 7, 0)

	task, err := svc.Create(ctx, owner, saveReq("untracked", "2025-03-10", "09:00"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, owner, task.ID, saveReq("untracked", "2025-03-10", "10:00"))
	var se *entities.StateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "no task selected", se.Reason)
}

func TestUpdate_HappyPathClearsSession(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	clock.set(2025, time.March, 10, 7, 0)

	task, err := svc.Create(ctx, owner, saveReq("movable", "2025-03-10", "09:00"))
	require.NoError(t, err)
	_, err = svc.BeginEdit(ctx, owner, task.ID)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, owner, task.ID, saveReq("moved", "2025-03-10", "10:30"))
	require.NoError(t, err)
	assert.Equal(t, "moved", updated.Title)
	assert.Equal(t, schedule.ClockTime("10:30"), updated.StartTime)

	_, ok := svc.Session(owner)
	assert.False(t, ok, "session cleared on save success")
}

func TestUpdate_ProposedSlotLocked(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	clock.set(2025, time.March, 10, 7, 0)

	task, err := svc.Create(ctx, owner, saveReq("fixed", "2025-03-10", "09:00"))
	require.NoError(t, err)
	_, err = svc.BeginEdit(ctx, owner, task.ID)
	require.NoError(t, err)

	// Moving into an already-past slot is rejected before any store call,
	// and the session is cleared like every lock-check failure.
	_, err = svc.Update(ctx, owner, task.ID, saveReq("fixed", "2025-03-10", "06:00"))
	assert.True(t, entities.IsConflict(err))

	_, ok := svc.Session(owner)
	assert.False(t, ok)
}

func TestUpdate_OriginalLockedSinceEditBegan(t *testing.T) {
	svc, repo, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	clock.set(2025, time.March, 10, 8, 55)

	task, err := svc.Create(ctx, owner, saveReq("about to start", "2025-03-10", "09:00"))
	require.NoError(t, err)
	_, err = svc.BeginEdit(ctx, owner, task.ID)
	require.NoError(t, err)

	// The task starts while the edit form is open. A later proposed slot
	// is itself valid, but the stored record has become read-only.
	clock.set(2025, time.March, 10, 9, 0)

	_, err = svc.Update(ctx, owner, task.ID, saveReq("about to start", "2025-03-10", "18:00"))
	assert.True(t, entities.IsConflict(err))

	_, ok := svc.Session(owner)
	assert.False(t, ok, "session cleared on original-lock conflict")

	// The record is untouched.
	stored, err := repo.GetByID(ctx, task.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, schedule.ClockTime("09:00"), stored.StartTime)
}

func TestSoftDelete_ViaSession(t *testing.T) {
	svc, repo, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	clock.set(2025, time.March, 10, 7, 0)

	task, err := svc.Create(ctx, owner, saveReq("doomed", "2025-03-10", "09:00"))
	require.NoError(t, err)
	_, err = svc.BeginEdit(ctx, owner, task.ID)
	require.NoError(t, err)

	err = svc.SoftDelete(ctx, owner, task.ID, ports.DeleteTaskRequest{Confirmed: true})
	require.NoError(t, err)

	// Absent from listings.
	got, err := svc.List(ctx, owner, "2025-03-10")
	require.NoError(t, err)
	assert.Empty(t, got)

	// But the row survives with its deletion timestamp set.
	stored, err := repo.GetByID(ctx, task.ID, owner)
	require.NoError(t, err)
	require.NotNil(t, stored.DeletedAt)

	_, ok := svc.Session(owner)
	assert.False(t, ok)
}

func TestSoftDelete_QuickDeletePath(t *testing.T) {
	svc, repo, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	clock.set(2025, time.March, 10, 7, 0)

	task, err := svc.Create(ctx, owner, saveReq("row delete", "2025-03-10", "09:00"))
	require.NoError(t, err)

	// No BeginEdit: the row supplies its own snapshot.
	date, start := "2025-03-10", "09:00"
	err = svc.SoftDelete(ctx, owner, task.ID, ports.DeleteTaskRequest{
		Confirmed: true,
		Date:      &date,
		StartTime: &start,
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, task.ID, owner)
	require.NoError(t, err)
	assert.NotNil(t, stored.DeletedAt)
}

func TestSoftDelete_LockedSnapshotRejected(t *testing.T) {
	svc, repo, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	clock.set(2025, time.March, 10, 8, 55)

	task, err := svc.Create(ctx, owner, saveReq("starts soon", "2025-03-10", "09:00"))
	require.NoError(t, err)
	_, err = svc.BeginEdit(ctx, owner, task.ID)
	require.NoError(t, err)

	clock.set(2025, time.March, 10, 9, 0)

	err = svc.SoftDelete(ctx, owner, task.ID, ports.DeleteTaskRequest{Confirmed: true})
	assert.True(t, entities.IsConflict(err))

	_, ok := svc.Session(owner)
	assert.False(t, ok, "session cleared on conflict")

	stored, err := repo.GetByID(ctx, task.ID, owner)
	require.NoError(t, err)
	assert.Nil(t, stored.DeletedAt)
}

func TestSoftDelete_RequiresConfirmation(t *testing.T) {
	svc, repo, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	clock.set(2025, time.March, 10, 7, 0)

	task, err := svc.Create(ctx, owner, saveReq("needs confirm", "2025-03-10", "09:00"))
	require.NoError(t, err)
	_, err = svc.BeginEdit(ctx, owner, task.ID)
	require.NoError(t, err)

	err = svc.SoftDelete(ctx, owner, task.ID, ports.DeleteTaskRequest{Confirmed: false})
	var se *entities.StateError
	require.ErrorAs(t, err, &se)

	// Nothing touched; session kept so the user can confirm and retry.
	stored, err := repo.GetByID(ctx, task.ID, owner)
	require.NoError(t, err)
	assert.Nil(t, stored.DeletedAt)
	_, ok := svc.Session(owner)
	assert.True(t, ok)
}

// failingRepo wraps the memory repo to fail specific operations, modelling a
// store outage.
type failingRepo struct {
	*repository.MemoryTaskRepository
	failUpdate bool
}

func (r *failingRepo) Update(ctx context.Context, task *entities.Task) error {
	if r.failUpdate {
		return errors.New("connection refused")
	}
	return r.MemoryTaskRepository.Update(ctx, task)
}

func TestUpdate_StoreErrorKeepsSession(t *testing.T) {
	repo := &failingRepo{MemoryTaskRepository: repository.NewMemoryTaskRepository()}
	clock := &fakeClock{}
	clock.set(2025, time.March, 10, 7, 0)
	svc := NewTaskService(repo, clock, testLogger(t))
	ctx := context.Background()
	owner := uuid.New()

	task, err := svc.Create(ctx, owner, saveReq("flaky save", "2025-03-10", "09:00"))
	require.NoError(t, err)
	_, err = svc.BeginEdit(ctx, owner, task.ID)
	require.NoError(t, err)

	repo.failUpdate = true
	_, err = svc.Update(ctx, owner, task.ID, saveReq("flaky save", "2025-03-10", "10:00"))
	var se *entities.StoreError
	require.ErrorAs(t, err, &se)

	// The session survives a store failure so the same edit can be retried.
	_, ok := svc.Session(owner)
	require.True(t, ok)

	repo.failUpdate = false
	_, err = svc.Update(ctx, owner, task.ID, saveReq("flaky save", "2025-03-10", "10:00"))
	require.NoError(t, err)
}

func TestResetSession(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	clock.set(2025, time.March, 10, 7, 0)

	task, err := svc.Create(ctx, owner, saveReq("cancel me", "2025-03-10", "09:00"))
	require.NoError(t, err)
	_, err = svc.BeginEdit(ctx, owner, task.ID)
	require.NoError(t, err)

	svc.ResetSession(owner)
	_, ok := svc.Session(owner)
	assert.False(t, ok)
}
