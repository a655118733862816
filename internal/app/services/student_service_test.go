package services

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/pkg/apperrors"
)

// fakeStudentStore is an in-memory StudentStore for service tests.
type fakeStudentStore struct {
	students []*models.Student
	nextID   int64
	levels   map[models.StudentID]*models.StudentViolationLevel
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{nextID: 1, levels: map[models.StudentID]*models.StudentViolationLevel{}}
}

func (f *fakeStudentStore) List(_ context.Context, _ dto.StudentListQuery, _ uint64, _ int) ([]*models.Student, error) {
	return f.students, nil
}

func (f *fakeStudentStore) Count(_ context.Context, _ dto.StudentListQuery) (int64, error) {
	return int64(len(f.students)), nil
}

func (f *fakeStudentStore) GetByID(_ context.Context, id int64) (*models.Student, error) {
	for _, s := range f.students {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeStudentStore) GetByStudentID(_ context.Context, studentID models.StudentID) (*models.Student, error) {
	for _, s := range f.students {
		if s.StudentID == studentID {
			return s, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeStudentStore) Create(_ context.Context, student *models.Student) error {
	for _, s := range f.students {
		if s.StudentID == student.StudentID {
			return apperrors.ErrStudentIDAlreadyExists
		}
	}
	student.ID = f.nextID
	f.nextID++
	stored := *student
	f.students = append(f.students, &stored)
	return nil
}

func (f *fakeStudentStore) Update(_ context.Context, student *models.Student) error {
	for i, s := range f.students {
		if s.ID == student.ID {
			stored := *student
			f.students[i] = &stored
			return nil
		}
	}
	return apperrors.ErrStudentNotFound
}

func (f *fakeStudentStore) SetStatus(_ context.Context, id int64, status models.StudentStatus) error {
	for _, s := range f.students {
		if s.ID == id {
			s.Status = status
			return nil
		}
	}
	return apperrors.ErrStudentNotFound
}

func (f *fakeStudentStore) EmailExists(_ context.Context, email string, excludeID int64) (bool, error) {
	for _, s := range f.students {
		if s.ID != excludeID && s.Email != "" && strings.EqualFold(s.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentStore) CountByStatus(_ context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, s := range f.students {
		out[string(s.Status)]++
	}
	return out, nil
}

func (f *fakeStudentStore) GetViolationLevel(_ context.Context, studentID models.StudentID) (*models.StudentViolationLevel, error) {
	lvl, ok := f.levels[studentID]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return lvl, nil
}

// fakeDepartmentLookup / fakeSectionLookup resolve fixed reference data.
type fakeDepartmentLookup struct {
	departments map[int64]*models.Department
}

func (f *fakeDepartmentLookup) GetByID(_ context.Context, id int64) (*models.Department, error) {
	d, ok := f.departments[id]
	if !ok {
		return nil, apperrors.ErrDepartmentNotFound
	}
	return d, nil
}

type fakeSectionLookup struct {
	sections map[int64]*models.Section
}

func (f *fakeSectionLookup) GetByID(_ context.Context, id int64) (*models.Section, error) {
	s, ok := f.sections[id]
	if !ok {
		return nil, apperrors.ErrSectionNotFound
	}
	return s, nil
}

func newStudentServiceForTest(store *fakeStudentStore) *StudentService {
	departments := &fakeDepartmentLookup{departments: map[int64]*models.Department{
		1: {ID: 1, Code: "CAS", Name: "College of Arts and Sciences"},
	}}
	sections := &fakeSectionLookup{sections: map[int64]*models.Section{
		1: {ID: 1, DepartmentID: 1, Code: "A"},
		2: {ID: 2, DepartmentID: 2, Code: "B"},
	}}
	return NewStudentService(store, departments, sections, zerolog.Nop())
}

func studentRequest() *dto.CreateStudentRequest {
	return &dto.CreateStudentRequest{
		StudentID:    "S001",
		FirstName:    "Juan",
		LastName:     "Cruz",
		Email:        "juan.cruz@example.com",
		DepartmentID: 1,
		SectionID:    1,
		YearLevel:    2,
	}
}

func TestCreateStudent(t *testing.T) {
	store := newFakeStudentStore()
	svc := newStudentServiceForTest(store)

	student, err := svc.CreateStudent(context.Background(), studentRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StudentID("S001"), student.StudentID)
	assert.Equal(t, models.StudentActive, student.Status)
}

func TestCreateStudentNormalizesIdentifier(t *testing.T) {
	store := newFakeStudentStore()
	svc := newStudentServiceForTest(store)

	req := studentRequest()
	req.StudentID = " s001 "
	student, err := svc.CreateStudent(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.StudentID("S001"), student.StudentID)

	// The normalized form collides with itself regardless of input casing.
	req = studentRequest()
	req.StudentID = "S001"
	req.Email = "other@example.com"
	_, err = svc.CreateStudent(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrStudentIDAlreadyExists)
}

func TestCreateStudentRejectsMismatchedSection(t *testing.T) {
	store := newFakeStudentStore()
	svc := newStudentServiceForTest(store)

	req := studentRequest()
	req.SectionID = 2 // belongs to department 2
	_, err := svc.CreateStudent(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateStudentRejectsDuplicateEmail(t *testing.T) {
	store := newFakeStudentStore()
	svc := newStudentServiceForTest(store)

	_, err := svc.CreateStudent(context.Background(), studentRequest())
	require.NoError(t, err)

	req := studentRequest()
	req.StudentID = "S002"
	_, err = svc.CreateStudent(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestRestoreStudentRequiresArchivedStatus(t *testing.T) {
	store := newFakeStudentStore()
	svc := newStudentServiceForTest(store)

	student, err := svc.CreateStudent(context.Background(), studentRequest())
	require.NoError(t, err)

	err = svc.RestoreStudent(context.Background(), student.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	require.NoError(t, svc.ArchiveStudent(context.Background(), student.ID))
	require.NoError(t, svc.RestoreStudent(context.Background(), student.ID))

	restored, err := svc.GetStudentByID(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StudentActive, restored.Status)
}

func TestImportCSVSkipsHeaderAndCollectsRowErrors(t *testing.T) {
	store := newFakeStudentStore()
	svc := newStudentServiceForTest(store)

	input := strings.Join([]string{
		"student_id,first_name,middle_name,last_name,email,department_id,section_id,year_level",
		"S001,Juan,,Cruz,juan@example.com,1,1,2",
		"S002,Ana,,Reyes,,1,1,9",
		"S003,Pedro,,Santos,,1,1,3",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "year level")
}

func TestImportCSVContinuesPastDuplicates(t *testing.T) {
	store := newFakeStudentStore()
	svc := newStudentServiceForTest(store)

	input := strings.Join([]string{
		"S001,Juan,,Cruz,,1,1,2",
		"S001,Juan,,Cruz,,1,1,2",
		"S002,Ana,,Reyes,,1,1,1",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, "student ID already exists", result.Errors[0].Message)
}

func TestImportCSVRejectsShortRows(t *testing.T) {
	store := newFakeStudentStore()
	svc := newStudentServiceForTest(store)

	result, err := svc.ImportCSV(context.Background(), strings.NewReader("S001,Juan,Cruz\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "expected 8 columns")
}

func TestImportJSON(t *testing.T) {
	store := newFakeStudentStore()
	svc := newStudentServiceForTest(store)

	input := `[
		{"studentId":"S001","firstName":"Juan","lastName":"Cruz","departmentId":1,"sectionId":1,"yearLevel":2},
		{"studentId":"S002","firstName":"","lastName":"Reyes","departmentId":1,"sectionId":1,"yearLevel":2}
	]`

	result, err := svc.ImportJSON(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
}

func TestImportJSONRejectsMalformedPayload(t *testing.T) {
	store := newFakeStudentStore()
	svc := newStudentServiceForTest(store)

	_, err := svc.ImportJSON(context.Background(), strings.NewReader(`{"not":"an array"`))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestGetStudentByStudentIDValidatesFormat(t *testing.T) {
	store := newFakeStudentStore()
	svc := newStudentServiceForTest(store)

	_, err := svc.GetStudentByStudentID(context.Background(), "S 001")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStudentID)
}
