package timetable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timetable-engine/timetable"
	"github.com/warp/timetable-engine/timetable/store"
)

// =============================================================================
// ENTITY VALIDATION
// =============================================================================

func TestAddTeacher_Validation(t *testing.T) {
	s := timetable.NewStore()

	_, err := s.AddTeacher("  ", "Ruiz", timetable.AllDays)
	assert.ErrorIs(t, err, timetable.ErrEmptyName)

	_, err = s.AddTeacher("Ana", "", timetable.AllDays)
	assert.ErrorIs(t, err, timetable.ErrEmptyName)

	_, err = s.AddTeacher("Ana", "Ruiz", 0)
	assert.ErrorIs(t, err, timetable.ErrNoAvailableDays)

	tc, err := s.AddTeacher("  Ana ", " Ruiz", timetable.NewDaySet(timetable.Monday))
	require.NoError(t, err)
	assert.Equal(t, "Ana", tc.GivenName)
	assert.Equal(t, "Ruiz", tc.FamilyName)
	assert.Equal(t, "Ana Ruiz", tc.FullName())
	assert.NotEmpty(t, tc.ID)
}

func TestUpdateTeacher(t *testing.T) {
	s := timetable.NewStore()
	tc, err := s.AddTeacher("Ana", "Ruiz", timetable.AllDays)
	require.NoError(t, err)

	updated, err := s.UpdateTeacher(tc.ID, "Ana María", "Ruiz", timetable.NewDaySet(timetable.Friday))
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.GivenName)
	assert.Equal(t, []timetable.Day{timetable.Friday}, updated.AvailableDays.Days())

	_, err = s.UpdateTeacher("missing", "A", "B", timetable.AllDays)
	assert.True(t, timetable.IsNotFound(err))
}

func TestAddSubject_RequiresExistingTeacher(t *testing.T) {
	s := timetable.NewStore()

	_, err := s.AddSubject("Math", "nobody")
	assert.ErrorIs(t, err, timetable.ErrTeacherNotFound)
	assert.True(t, timetable.IsNotFound(err))

	tc, err := s.AddTeacher("Ana", "Ruiz", timetable.AllDays)
	require.NoError(t, err)
	_, err = s.AddSubject("   ", tc.ID)
	assert.ErrorIs(t, err, timetable.ErrEmptyName)
}

func TestAddYear_LevelsPositiveAndUnique(t *testing.T) {
	s := timetable.NewStore()

	_, err := s.AddYear(0)
	assert.ErrorIs(t, err, timetable.ErrInvalidLevel)

	y1, err := s.AddYear(1)
	require.NoError(t, err)
	_, err = s.AddYear(1)
	assert.ErrorIs(t, err, timetable.ErrDuplicateLevel)

	y2, err := s.AddYear(2)
	require.NoError(t, err)
	_, err = s.UpdateYear(y2.ID, 1)
	assert.ErrorIs(t, err, timetable.ErrDuplicateLevel)

	// Keeping its own level is fine
	_, err = s.UpdateYear(y1.ID, 1)
	assert.NoError(t, err)
}

func TestAddYearSubject_Validation(t *testing.T) {
	f := newFixture(t)
	ana := f.teacher(t, "Ana", "Ruiz", allWeek...)
	math := f.subject(t, "Math", ana)
	y1 := f.year(t, 1)

	_, err := f.store.AddYearSubject(y1.ID, math.ID, 0)
	assert.ErrorIs(t, err, timetable.ErrInvalidHours)

	_, err = f.store.AddYearSubject("nope", math.ID, 2)
	assert.ErrorIs(t, err, timetable.ErrYearNotFound)

	_, err = f.store.AddYearSubject(y1.ID, "nope", 2)
	assert.ErrorIs(t, err, timetable.ErrSubjectNotFound)

	_, err = f.store.AddYearSubject(y1.ID, math.ID, 2)
	require.NoError(t, err)
	_, err = f.store.AddYearSubject(y1.ID, math.ID, 3)
	assert.ErrorIs(t, err, timetable.ErrDuplicateYearSubject)
}

func TestUpdateYearSubjectHours_CannotDropBelowAssigned(t *testing.T) {
	// GIVEN: Math year 1 with 3 hours, 2 placed
	// WHEN: Lowering the quota to 1
	// THEN: Rejected with the assigned count; 2 is accepted
	f := newFixture(t)
	ana := f.teacher(t, "Ana", "Ruiz", allWeek...)
	math := f.subject(t, "Math", ana)
	y1 := f.year(t, 1)
	ys := f.quota(t, y1, math, 3)
	require.NoError(t, f.engine.Place(cell("1", timetable.Monday, y1), ana.ID, math.ID))
	require.NoError(t, f.engine.Place(cell("2", timetable.Monday, y1), ana.ID, math.ID))

	_, err := f.store.UpdateYearSubjectHours(ys.ID, 1)

	var below *timetable.HoursBelowAssignedError
	require.ErrorAs(t, err, &below)
	assert.Equal(t, 2, below.Assigned)
	assert.True(t, timetable.IsConflict(err))

	updated, err := f.store.UpdateYearSubjectHours(ys.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.HoursRequired)
	assert.False(t, f.engine.Quota.CanAcceptMore(math.ID, y1.ID))

	_, err = f.store.UpdateYearSubjectHours("missing", 2)
	assert.True(t, timetable.IsNotFound(err))
}

// =============================================================================
// CASCADES
// =============================================================================

// cascadeFixture builds two years, two teachers and two subjects with
// lessons spread over every combination.
type cascadeFixture struct {
	*fixture
	ana, leo      timetable.Teacher
	math, physics timetable.Subject
	y1, y2        timetable.Year
	mathY1        timetable.YearSubject
}

func newCascadeFixture(t *testing.T) *cascadeFixture {
	f := &cascadeFixture{fixture: newFixture(t)}
	f.ana = f.teacher(t, "Ana", "Ruiz", allWeek...)
	f.leo = f.teacher(t, "Leo", "Marsh", allWeek...)
	f.math = f.subject(t, "Math", f.ana)
	f.physics = f.subject(t, "Physics", f.leo)
	f.y1, f.y2 = f.year(t, 1), f.year(t, 2)
	f.mathY1 = f.quota(t, f.y1, f.math, 2)
	f.quota(t, f.y2, f.math, 2)
	f.quota(t, f.y1, f.physics, 2)
	f.quota(t, f.y2, f.physics, 2)

	require.NoError(t, f.engine.Place(cell("1", timetable.Monday, f.y1), f.ana.ID, f.math.ID))
	require.NoError(t, f.engine.Place(cell("1", timetable.Tuesday, f.y2), f.ana.ID, f.math.ID))
	require.NoError(t, f.engine.Place(cell("2", timetable.Monday, f.y1), f.leo.ID, f.physics.ID))
	require.NoError(t, f.engine.Place(cell("2", timetable.Monday, f.y2), f.ana.ID, f.physics.ID))
	return f
}

func TestDeleteTeacher_RemovesOnlyTheirLessons(t *testing.T) {
	f := newCascadeFixture(t)

	f.store.DeleteTeacher(f.ana.ID)

	_, ok := f.store.Teacher(f.ana.ID)
	assert.False(t, ok)
	for _, e := range f.store.ScheduleEntries() {
		assert.NotEqual(t, f.ana.ID, e.TeacherID)
	}
	assert.Len(t, f.store.ScheduleEntries(), 1)
	// Subjects survive with a dangling owner
	assert.Len(t, f.store.Subjects(), 2)
	assert.Equal(t, timetable.NotAvailable, f.store.TeacherName(f.ana.ID))
}

func TestDeleteSubject_RemovesAssignmentsAndLessons(t *testing.T) {
	f := newCascadeFixture(t)

	f.store.DeleteSubject(f.math.ID)

	for _, ys := range f.store.YearSubjects() {
		assert.NotEqual(t, f.math.ID, ys.SubjectID)
	}
	for _, e := range f.store.ScheduleEntries() {
		assert.NotEqual(t, f.math.ID, e.SubjectID)
	}
	assert.Len(t, f.store.YearSubjects(), 2)
	assert.Len(t, f.store.ScheduleEntries(), 2)
}

func TestDeleteYear_RemovesAssignmentsAndLessons(t *testing.T) {
	f := newCascadeFixture(t)

	f.store.DeleteYear(f.y1.ID)

	for _, ys := range f.store.YearSubjects() {
		assert.NotEqual(t, f.y1.ID, ys.YearID)
	}
	for _, e := range f.store.ScheduleEntries() {
		assert.NotEqual(t, f.y1.ID, e.YearID)
	}
	assert.Len(t, f.store.ScheduleEntries(), 2)
	assert.Equal(t, 0, f.store.YearLevel(f.y1.ID))
}

func TestDeleteYearSubject_RemovesOnlyThatPair(t *testing.T) {
	// GIVEN: Math is taught in years 1 and 2
	// WHEN: Removing Math from year 1
	// THEN: Only the year 1 Math lesson goes; year 2 Math and Physics stay
	f := newCascadeFixture(t)

	f.store.DeleteYearSubject(f.mathY1.ID)

	_, stillThere := f.store.EntryAt(cell("1", timetable.Monday, f.y1))
	assert.False(t, stillThere)
	_, y2Math := f.store.EntryAt(cell("1", timetable.Tuesday, f.y2))
	assert.True(t, y2Math)
	assert.Len(t, f.store.ScheduleEntries(), 3)
	assert.Len(t, f.store.YearSubjects(), 3)
}

func TestDelete_UnknownIDs_NoOp(t *testing.T) {
	f := newCascadeFixture(t)
	before := f.store.Snapshot()

	f.store.DeleteTeacher("x")
	f.store.DeleteSubject("x")
	f.store.DeleteYear("x")
	f.store.DeleteYearSubject("x")

	assert.Equal(t, before, f.store.Snapshot())
}

// =============================================================================
// FLUSH / RESTORE
// =============================================================================

func TestFlush_SavesOnlyDirtyCollections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mem := store.NewMemory()
	ana := f.teacher(t, "Ana", "Ruiz", allWeek...)
	require.NoError(t, f.store.Flush(ctx, mem))
	assert.Equal(t, 1, mem.Saves(timetable.CollectionTeachers))
	assert.Empty(t, f.store.Dirty())

	f.subject(t, "Math", ana)
	require.NoError(t, f.store.Flush(ctx, mem))

	assert.Equal(t, 1, mem.Saves(timetable.CollectionTeachers))
	assert.Equal(t, 1, mem.Saves(timetable.CollectionSubjects))
	assert.Zero(t, mem.Saves(timetable.CollectionScheduleEntries))

	loaded, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Teachers, 1)
	assert.Len(t, loaded.Subjects, 1)
}

func TestFlush_FailedCollectionRetried(t *testing.T) {
	// GIVEN: The persister fails saving subjects
	// WHEN: Flushing a change to teachers and subjects
	// THEN: The error names subjects, which stays dirty; the next
	//       Flush after recovery saves it
	ctx := context.Background()
	f := newFixture(t)
	mem := store.NewMemory()
	boom := errors.New("disk full")
	mem.FailOn(timetable.CollectionSubjects, boom)

	ana := f.teacher(t, "Ana", "Ruiz", allWeek...)
	f.subject(t, "Math", ana)

	err := f.store.Flush(ctx, mem)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "subjects")
	assert.Contains(t, f.store.Dirty(), timetable.CollectionSubjects)
	assert.NotContains(t, f.store.Dirty(), timetable.CollectionTeachers)

	mem.FailOn(timetable.CollectionSubjects, nil)
	require.NoError(t, f.store.Flush(ctx, mem))
	assert.Empty(t, f.store.Dirty())
	assert.Equal(t, 1, mem.Saves(timetable.CollectionSubjects))
}

func TestRestore_RoundTripsAndClearsDirty(t *testing.T) {
	ctx := context.Background()
	src := newCascadeFixture(t)
	mem := store.NewMemory()
	require.NoError(t, src.store.Flush(ctx, mem))

	loaded, err := mem.Load(ctx)
	require.NoError(t, err)
	dst := timetable.NewStore()
	dst.Restore(loaded)

	assert.Equal(t, src.store.Snapshot(), dst.Snapshot())
	assert.Empty(t, dst.Dirty())
}

func TestReset_EmptiesAndMarksAllDirty(t *testing.T) {
	f := newCascadeFixture(t)

	f.store.Reset()

	assert.Empty(t, f.store.Teachers())
	assert.Empty(t, f.store.ScheduleEntries())
	assert.ElementsMatch(t, timetable.Collections(), f.store.Dirty())
}

func TestReplace_SwapsContentsAndMarksAllDirty(t *testing.T) {
	ctx := context.Background()
	src := newCascadeFixture(t)
	dst := timetable.NewStore()
	require.NoError(t, dst.Flush(ctx, store.NewMemory()))

	dst.Replace(src.store.Snapshot())

	assert.Equal(t, src.store.Snapshot(), dst.Snapshot())
	assert.ElementsMatch(t, timetable.Collections(), dst.Dirty())
}

func TestInsertEntry_ChecksStructureOnly(t *testing.T) {
	// GIVEN: Ana free only on Tuesday, Math with no hours for year 1
	f := newFixture(t)
	ana := f.teacher(t, "Ana", "Ruiz", timetable.Tuesday)
	math := f.subject(t, "Math", ana)
	y1 := f.year(t, 1)

	// WHEN: Inserting a Monday lesson directly
	e, err := f.store.InsertEntry(cell("1", timetable.Monday, y1), ana.ID, math.ID)

	// THEN: It is stored without availability or quota checks
	require.NoError(t, err)
	assert.Equal(t, timetable.Monday, e.Day)
	assert.Len(t, f.store.ScheduleEntries(), 1)
	assert.Contains(t, f.store.Dirty(), timetable.CollectionScheduleEntries)

	tests := []struct {
		name    string
		cell    timetable.Cell
		teacher timetable.TeacherID
		subject timetable.SubjectID
		is      error
	}{
		{"occupied cell", cell("1", timetable.Monday, y1), ana.ID, math.ID, timetable.ErrCellOccupied},
		{"day out of range", cell("1", timetable.Day(7), y1), ana.ID, math.ID, timetable.ErrInvalidDay},
		{"unknown slot", cell("9", timetable.Monday, y1), ana.ID, math.ID, timetable.ErrInvalidInput},
		{"unknown teacher", cell("2", timetable.Monday, y1), "nope", math.ID, timetable.ErrTeacherNotFound},
		{"unknown subject", cell("2", timetable.Monday, y1), ana.ID, "nope", timetable.ErrSubjectNotFound},
		{"unknown year", timetable.Cell{SlotID: "2", Day: timetable.Monday, YearID: "nope"}, ana.ID, math.ID, timetable.ErrYearNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.store.InsertEntry(tt.cell, tt.teacher, tt.subject)
			assert.ErrorIs(t, err, tt.is)
		})
	}
	assert.Len(t, f.store.ScheduleEntries(), 1)
}
