package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/db"
	"github.com/osasdev/osas/internal/pkg/apperrors"
)

// fakeViolationStore is an in-memory ViolationStore for service tests.
type fakeViolationStore struct {
	violations []*models.Violation
	nextID     int64
	types      map[int64]*models.ViolationType
	levels     map[int64]*models.ViolationLevel

	claimedPeriods map[string]bool
	resets         []*models.MonthlyReset

	// createErrs is consumed one entry per Create call to simulate
	// constraint collisions.
	createErrs []error

	incrementCalls []string
	archivedBefore []time.Time
	levelResets    int

	// clock stamps created_at on inserts, mirroring the database default.
	clock func() time.Time
}

func newFakeViolationStore() *fakeViolationStore {
	return &fakeViolationStore{
		nextID: 1,
		clock:  func() time.Time { return time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC) },
		types: map[int64]*models.ViolationType{
			1: {ID: 1, Name: models.TypeImproperUniform},
			2: {ID: 2, Name: models.TypeNoID},
		},
		levels: map[int64]*models.ViolationLevel{
			1: {ID: 1, Name: "permitted", Rank: models.RankPermitted},
			2: {ID: 2, Name: "warning", Rank: models.RankWarning},
			3: {ID: 3, Name: "disciplinary", Rank: models.RankDisciplinary},
		},
		claimedPeriods: map[string]bool{},
	}
}

// CountInYear filters on created_at like the SQL it stands in for, not on
// the reported violation date.
func (f *fakeViolationStore) CountInYear(_ context.Context, year int) (int, error) {
	count := 0
	for _, v := range f.violations {
		if v.CreatedAt.Year() == year {
			count++
		}
	}
	return count, nil
}

func (f *fakeViolationStore) Create(_ context.Context, v *models.Violation) error {
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	v.ID = f.nextID
	f.nextID++
	v.CreatedAt = f.clock()
	stored := *v
	f.violations = append(f.violations, &stored)
	return nil
}

func (f *fakeViolationStore) FindExactDuplicate(_ context.Context, studentID models.StudentID, typeID, levelID int64, date time.Time, timeStr, location string) (int64, bool, error) {
	for _, v := range f.violations {
		if v.IsArchived {
			continue
		}
		if v.StudentID == studentID && v.TypeID == typeID && v.LevelID == levelID &&
			v.ViolationDate.Equal(date) && v.ViolationTime == timeStr && v.Location == location {
			return v.ID, true, nil
		}
	}
	return 0, false, nil
}

func (f *fakeViolationStore) FindWindowCandidates(_ context.Context, studentID models.StudentID, typeID, levelID int64, date time.Time, location string) ([]*models.Violation, error) {
	var out []*models.Violation
	for _, v := range f.violations {
		if v.IsArchived {
			continue
		}
		if v.StudentID == studentID && v.TypeID == typeID && v.LevelID == levelID &&
			v.ViolationDate.Equal(date) && v.Location == location {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeViolationStore) List(_ context.Context, _ dto.ViolationListQuery, _ uint64, _ int) ([]*models.Violation, error) {
	return f.violations, nil
}

func (f *fakeViolationStore) Count(_ context.Context, _ dto.ViolationListQuery) (int64, error) {
	return int64(len(f.violations)), nil
}

func (f *fakeViolationStore) GetByID(_ context.Context, id int64) (*models.Violation, error) {
	for _, v := range f.violations {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, apperrors.ErrViolationNotFound
}

func (f *fakeViolationStore) UpdateStatus(_ context.Context, id int64, status models.ViolationStatus) error {
	for _, v := range f.violations {
		if v.ID == id {
			v.Status = status
			return nil
		}
	}
	return apperrors.ErrViolationNotFound
}

func (f *fakeViolationStore) IncrementCounters(_ context.Context, studentID models.StudentID, levelName string) error {
	f.incrementCalls = append(f.incrementCalls, studentID.String()+"/"+levelName)
	return nil
}

func (f *fakeViolationStore) GetTypeByID(_ context.Context, id int64) (*models.ViolationType, error) {
	t, ok := f.types[id]
	if !ok {
		return nil, apperrors.ErrViolationTypeNotFound
	}
	return t, nil
}

func (f *fakeViolationStore) GetLevelByID(_ context.Context, id int64) (*models.ViolationLevel, error) {
	l, ok := f.levels[id]
	if !ok {
		return nil, apperrors.ErrViolationLevelNotFound
	}
	return l, nil
}

func (f *fakeViolationStore) ListTypes(_ context.Context) ([]*models.ViolationType, error) {
	var out []*models.ViolationType
	for _, t := range f.types {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeViolationStore) ListLevels(_ context.Context) ([]*models.ViolationLevel, error) {
	var out []*models.ViolationLevel
	for _, l := range f.levels {
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeViolationStore) ClaimPeriod(_ context.Context, _ pgx.Tx, period string) (bool, error) {
	if f.claimedPeriods[period] {
		return false, nil
	}
	f.claimedPeriods[period] = true
	return true, nil
}

func (f *fakeViolationStore) HasAnyReset(_ context.Context) (bool, error) {
	return len(f.resets) > 0, nil
}

func (f *fakeViolationStore) GetLastReset(_ context.Context) (*models.MonthlyReset, error) {
	if len(f.resets) == 0 {
		return nil, nil
	}
	return f.resets[len(f.resets)-1], nil
}

func (f *fakeViolationStore) ArchiveBefore(_ context.Context, _ pgx.Tx, cutoff time.Time) (int64, error) {
	f.archivedBefore = append(f.archivedBefore, cutoff)
	var archived int64
	for _, v := range f.violations {
		if !v.IsArchived && v.ViolationDate.Before(cutoff) {
			v.IsArchived = true
			archived++
		}
	}
	return archived, nil
}

func (f *fakeViolationStore) ResetAllStudentLevels(_ context.Context, _ pgx.Tx) (int64, error) {
	f.levelResets++
	return 7, nil
}

func (f *fakeViolationStore) RecordResetCounts(_ context.Context, _ pgx.Tx, period string, archived, reset int64) error {
	f.resets = append(f.resets, &models.MonthlyReset{
		Period:        period,
		ArchivedCount: int(archived),
		ResetCount:    int(reset),
		RanAt:         time.Now(),
	})
	return nil
}

// fakeStudentLookup resolves any ID present in its set.
type fakeStudentLookup struct {
	known map[models.StudentID]*models.Student
}

func (f *fakeStudentLookup) GetByStudentID(_ context.Context, studentID models.StudentID) (*models.Student, error) {
	s, ok := f.known[studentID]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return s, nil
}

// fakeTxRunner invokes the callback directly; repository fakes ignore the tx.
type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	return fn(ctx, nil)
}

func newViolationServiceForTest(store *fakeViolationStore) *ViolationService {
	students := &fakeStudentLookup{known: map[models.StudentID]*models.Student{
		"S001": {ID: 1, StudentID: "S001", FirstName: "Juan", LastName: "Cruz"},
	}}
	svc := NewViolationService(store, students, fakeTxRunner{}, 5*time.Minute, zerolog.Nop())
	svc.now = store.clock
	return svc
}

func violationRequest() *dto.CreateViolationRequest {
	return &dto.CreateViolationRequest{
		StudentID:     "S001",
		TypeID:        1,
		LevelID:       1,
		ViolationDate: "2026-03-10",
		ViolationTime: "08:30",
		Location:      "Main Gate",
		ReportedBy:    "Guard Dela Cruz",
	}
}

func caseIDConflictErr() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "violations_case_id_key"}
}

func TestCreateViolationAssignsSequentialCaseIDs(t *testing.T) {
	store := newFakeViolationStore()
	svc := newViolationServiceForTest(store)

	first, err := svc.CreateViolation(context.Background(), violationRequest())
	require.NoError(t, err)
	assert.Equal(t, "VIOL-2026-001", first.CaseID)

	req := violationRequest()
	req.ViolationTime = "10:30"
	second, err := svc.CreateViolation(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "VIOL-2026-002", second.CaseID)
}

func TestCreateViolationRetriesOnCaseIDCollision(t *testing.T) {
	store := newFakeViolationStore()
	store.createErrs = []error{caseIDConflictErr()}
	svc := newViolationServiceForTest(store)

	created, err := svc.CreateViolation(context.Background(), violationRequest())
	require.NoError(t, err)
	// The first sequence collided, so the retry claimed the next one.
	assert.Equal(t, "VIOL-2026-002", created.CaseID)
}

func TestCreateViolationGivesUpAfterRepeatedCollisions(t *testing.T) {
	store := newFakeViolationStore()
	store.createErrs = []error{caseIDConflictErr(), caseIDConflictErr(), caseIDConflictErr()}
	svc := newViolationServiceForTest(store)

	_, err := svc.CreateViolation(context.Background(), violationRequest())
	assert.Error(t, err)
}

func TestCreateViolationRejectsExactDuplicate(t *testing.T) {
	store := newFakeViolationStore()
	svc := newViolationServiceForTest(store)

	created, err := svc.CreateViolation(context.Background(), violationRequest())
	require.NoError(t, err)

	_, err = svc.CreateViolation(context.Background(), violationRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateViolation)

	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, created.ID, custom.Details["existingId"])
}

func TestCreateViolationRejectsNearDuplicateWithinWindow(t *testing.T) {
	store := newFakeViolationStore()
	svc := newViolationServiceForTest(store)

	_, err := svc.CreateViolation(context.Background(), violationRequest())
	require.NoError(t, err)

	// Same submission with the time nudged by exactly the window width.
	req := violationRequest()
	req.ViolationTime = "08:35"
	_, err = svc.CreateViolation(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateViolation)
}

func TestCreateViolationAllowsSubmissionOutsideWindow(t *testing.T) {
	store := newFakeViolationStore()
	svc := newViolationServiceForTest(store)

	_, err := svc.CreateViolation(context.Background(), violationRequest())
	require.NoError(t, err)

	req := violationRequest()
	req.ViolationTime = "08:36"
	created, err := svc.CreateViolation(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "VIOL-2026-002", created.CaseID)
}

func TestCreateViolationValidatesInput(t *testing.T) {
	store := newFakeViolationStore()
	svc := newViolationServiceForTest(store)

	req := violationRequest()
	req.StudentID = "S 001"
	_, err := svc.CreateViolation(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStudentID)

	req = violationRequest()
	req.StudentID = "S999"
	_, err = svc.CreateViolation(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	req = violationRequest()
	req.ViolationDate = "10-03-2026"
	_, err = svc.CreateViolation(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	req = violationRequest()
	req.ViolationTime = "8:30 AM"
	_, err = svc.CreateViolation(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	req = violationRequest()
	req.LevelID = 99
	_, err = svc.CreateViolation(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrViolationLevelNotFound)
}

func TestCreateViolationInitialStatusFollowsLevel(t *testing.T) {
	store := newFakeViolationStore()
	svc := newViolationServiceForTest(store)

	req := violationRequest()
	req.LevelID = 3
	created, err := svc.CreateViolation(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.ViolationDisciplinary, created.Status)
	assert.Equal(t, []string{"S001/disciplinary"}, store.incrementCalls)
}

func TestUpdateStatusEnforcesProgression(t *testing.T) {
	store := newFakeViolationStore()
	svc := newViolationServiceForTest(store)

	created, err := svc.CreateViolation(context.Background(), violationRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), created.ID, models.ViolationWarning)
	require.NoError(t, err)
	assert.Equal(t, models.ViolationWarning, updated.Status)

	// Skipping a step is rejected.
	_, err = svc.UpdateStatus(context.Background(), created.ID, models.ViolationWarning)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatusChange)

	_, err = svc.UpdateStatus(context.Background(), created.ID, models.ViolationResolved)
	require.NoError(t, err)

	// Resolved is terminal.
	_, err = svc.UpdateStatus(context.Background(), created.ID, models.ViolationDisciplinary)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatusChange)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	store := newFakeViolationStore()
	svc := newViolationServiceForTest(store)

	_, err := svc.UpdateStatus(context.Background(), 1, models.ViolationStatus("escalated"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestGenerateCaseIDUsesYearCount(t *testing.T) {
	store := newFakeViolationStore()
	store.violations = []*models.Violation{
		{ID: 1, CreatedAt: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)},
		{ID: 2, CreatedAt: time.Date(2026, 2, 5, 8, 0, 0, 0, time.UTC)},
		{ID: 3, CreatedAt: time.Date(2025, 12, 5, 8, 0, 0, 0, time.UTC)},
	}
	svc := newViolationServiceForTest(store)

	caseID, err := svc.GenerateCaseID(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, "VIOL-2026-003", caseID)
}

func TestCreateViolationSequencesBackdatedReportsInCurrentYear(t *testing.T) {
	store := newFakeViolationStore()
	svc := newViolationServiceForTest(store)

	// Four reports for an incident date in the previous calendar year,
	// spaced outside the duplicate window. Numbering follows the year the
	// rows are created in, so none of them collide.
	times := []string{"08:00", "09:00", "10:00", "11:00"}
	for i, at := range times {
		req := violationRequest()
		req.ViolationDate = "2025-11-20"
		req.ViolationTime = at
		created, err := svc.CreateViolation(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, models.FormatCaseID(2026, i+1), created.CaseID)
	}
}

func TestAutoArchiveFirstRunClaimsWithoutArchiving(t *testing.T) {
	store := newFakeViolationStore()
	store.violations = []*models.Violation{
		{ID: 1, StudentID: "S001", ViolationDate: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)},
	}
	svc := newViolationServiceForTest(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC) }

	result, err := svc.CheckAndTriggerAutoArchive(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Ran)
	assert.Equal(t, "2026-03", result.Period)

	// History is intact and the period is checkpointed.
	assert.False(t, store.violations[0].IsArchived)
	require.Len(t, store.resets, 1)
	assert.Equal(t, 0, store.resets[0].ArchivedCount)
}

func TestAutoArchiveArchivesOnlyPriorMonths(t *testing.T) {
	store := newFakeViolationStore()
	store.resets = []*models.MonthlyReset{{Period: "2026-02"}}
	store.claimedPeriods["2026-02"] = true
	store.violations = []*models.Violation{
		{ID: 1, StudentID: "S001", ViolationDate: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)},
		{ID: 2, StudentID: "S001", ViolationDate: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{ID: 3, StudentID: "S001", ViolationDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	svc := newViolationServiceForTest(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC) }

	result, err := svc.CheckAndTriggerAutoArchive(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Ran)
	assert.Equal(t, 2, result.ArchivedCount)

	// Violations dated in the current month survive.
	assert.True(t, store.violations[0].IsArchived)
	assert.True(t, store.violations[1].IsArchived)
	assert.False(t, store.violations[2].IsArchived)

	// All counters reset regardless of what was archived.
	assert.Equal(t, 1, store.levelResets)
	assert.Equal(t, 7, result.ResetCount)
}

func TestCreateViolationRollsOverPriorMonth(t *testing.T) {
	store := newFakeViolationStore()
	store.resets = []*models.MonthlyReset{{Period: "2026-02"}}
	store.claimedPeriods["2026-02"] = true
	store.violations = []*models.Violation{
		{ID: 1, StudentID: "S001", TypeID: 1, LevelID: 1, CaseID: "VIOL-2026-001",
			ViolationDate: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), ViolationTime: "08:30", Location: "Main Gate",
			CreatedAt: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)},
	}
	store.nextID = 2
	svc := newViolationServiceForTest(store)

	// First submission of March archives February before inserting.
	created, err := svc.CreateViolation(context.Background(), violationRequest())
	require.NoError(t, err)

	assert.True(t, store.violations[0].IsArchived)
	assert.False(t, created.IsArchived)
	assert.Equal(t, 1, store.levelResets)
	assert.True(t, store.claimedPeriods["2026-03"])
}

func TestAutoArchiveIsIdempotentPerPeriod(t *testing.T) {
	store := newFakeViolationStore()
	store.resets = []*models.MonthlyReset{{Period: "2026-02"}}
	svc := newViolationServiceForTest(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC) }

	first, err := svc.CheckAndTriggerAutoArchive(context.Background())
	require.NoError(t, err)
	assert.True(t, first.Ran)

	second, err := svc.CheckAndTriggerAutoArchive(context.Background())
	require.NoError(t, err)
	assert.False(t, second.Ran)
	assert.Equal(t, 1, store.levelResets)
}

func TestCheckDuplicateInTimeWindowSkipsMalformedStoredTimes(t *testing.T) {
	store := newFakeViolationStore()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	store.violations = []*models.Violation{
		{ID: 1, StudentID: "S001", TypeID: 1, LevelID: 1, ViolationDate: date, ViolationTime: "garbage", Location: "Main Gate"},
		{ID: 2, StudentID: "S001", TypeID: 1, LevelID: 1, ViolationDate: date, ViolationTime: "08:33", Location: "Main Gate"},
	}
	svc := newViolationServiceForTest(store)

	id, dup, err := svc.CheckDuplicateInTimeWindow(context.Background(), "S001", 1, 1, date, "08:30", "Main Gate")
	require.NoError(t, err)
	assert.True(t, dup)
	assert.Equal(t, int64(2), id)
}

func TestCreateViolationSurfacesNonConstraintCreateErrors(t *testing.T) {
	store := newFakeViolationStore()
	store.createErrs = []error{errors.New("connection reset")}
	svc := newViolationServiceForTest(store)

	_, err := svc.CreateViolation(context.Background(), violationRequest())
	assert.EqualError(t, err, "connection reset")
}
