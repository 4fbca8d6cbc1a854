package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timetable-engine/timetable"
)

func newEngine() *timetable.Engine {
	return timetable.NewEngine(timetable.NewStore())
}

func build(t *testing.T, jsonStr string) (*timetable.Engine, *Built) {
	t.Helper()
	f := NewSchoolFactory()
	sj, err := f.ParseSchool(jsonStr)
	require.NoError(t, err)
	e := newEngine()
	b, err := f.Build(sj, e)
	require.NoError(t, err)
	return e, b
}

func TestBuild_DemoSchool(t *testing.T) {
	e, b := build(t, DemoSchoolJSON())

	assert.Len(t, e.Store.Teachers(), 5)
	assert.Len(t, e.Store.Subjects(), 6)
	assert.Len(t, e.Store.Years(), 3)
	assert.Len(t, e.Store.YearSubjects(), 11)
	assert.Len(t, e.Store.ScheduleEntries(), 11)
	assert.Len(t, b.Lessons, 11)

	leo, ok := e.Store.Teacher(b.Teachers["leo"])
	require.True(t, ok)
	assert.Equal(t, []timetable.Day{timetable.Monday, timetable.Tuesday}, leo.AvailableDays.Days())

	ana, _ := e.Store.Teacher(b.Teachers["ana"])
	assert.Equal(t, timetable.AllDays, ana.AvailableDays)
}

func TestBuild_ConflictsSchool_SetsUpEveryRule(t *testing.T) {
	// GIVEN: The conflicts preset
	// WHEN: Trying the placements it is designed to reject
	// THEN: Each fails with its own rule
	e, b := build(t, ConflictsSchoolJSON())
	y1, y2 := b.Years["y1"], b.Years["y2"]

	err := e.Place(timetable.Cell{SlotID: "4", Day: timetable.Tuesday, YearID: y1}, b.Teachers["ana"], b.Subjects["math"])
	assert.ErrorIs(t, err, timetable.ErrTeacherConflict)

	err = e.Place(timetable.Cell{SlotID: "3", Day: timetable.Monday, YearID: y1}, b.Teachers["ana"], b.Subjects["math"])
	assert.ErrorIs(t, err, timetable.ErrQuotaExceeded)

	err = e.Place(timetable.Cell{SlotID: "2", Day: timetable.Tuesday, YearID: y2}, b.Teachers["leo"], b.Subjects["chemistry"])
	assert.ErrorIs(t, err, timetable.ErrTeacherConflict)

	err = e.Place(timetable.Cell{SlotID: "3", Day: timetable.Wednesday, YearID: y1}, b.Teachers["leo"], b.Subjects["physics"])
	assert.NoError(t, err)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
		is   error
	}{
		{
			name: "subject with unknown teacher",
			json: `{"subjects": [{"key": "m", "name": "Math", "teacher": "nobody"}]}`,
		},
		{
			name: "invalid day in availability",
			json: `{"teachers": [{"key": "a", "given_name": "A", "family_name": "B", "available_days": [7]}]}`,
			is:   timetable.ErrInvalidDay,
		},
		{
			name: "blank teacher name",
			json: `{"teachers": [{"key": "a", "given_name": " ", "family_name": "B"}]}`,
			is:   timetable.ErrEmptyName,
		},
		{
			name: "duplicate level",
			json: `{"years": [{"key": "a", "level": 1}, {"key": "b", "level": 1}]}`,
			is:   timetable.ErrDuplicateLevel,
		},
		{
			name: "lesson beyond quota",
			json: `{
				"teachers": [{"key": "a", "given_name": "A", "family_name": "B"}],
				"subjects": [{"key": "m", "name": "Math", "teacher": "a"}],
				"years": [{"key": "y", "level": 1}],
				"year_subjects": [{"year": "y", "subject": "m", "hours": 1}],
				"lessons": [
					{"year": "y", "slot": "1", "day": 0, "teacher": "a", "subject": "m"},
					{"year": "y", "slot": "2", "day": 0, "teacher": "a", "subject": "m"}
				]
			}`,
			is: timetable.ErrQuotaExceeded,
		},
		{
			name: "lesson in unknown slot",
			json: `{
				"teachers": [{"key": "a", "given_name": "A", "family_name": "B"}],
				"subjects": [{"key": "m", "name": "Math", "teacher": "a"}],
				"years": [{"key": "y", "level": 1}],
				"lessons": [{"year": "y", "slot": "9", "day": 0, "teacher": "a", "subject": "m"}]
			}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewSchoolFactory()
			sj, err := f.ParseSchool(tt.json)
			require.NoError(t, err)

			_, err = f.Build(sj, newEngine())

			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestParseSchool_Malformed(t *testing.T) {
	_, err := NewSchoolFactory().ParseSchool(`{"teachers": [`)
	assert.Error(t, err)
}

func TestBuild_TeacherAvailability(t *testing.T) {
	tests := []struct {
		name string
		days string
		want timetable.DaySet
	}{
		{"missing means all week", ``, timetable.AllDays},
		{"null means all week", `, "available_days": null`, timetable.AllDays},
		{"empty means on leave", `, "available_days": []`, timetable.NewDaySet()},
		{"listed days kept", `, "available_days": [1, 3]`, timetable.NewDaySet(timetable.Tuesday, timetable.Thursday)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, b := build(t, `{"teachers": [{"key": "a", "given_name": "A", "family_name": "B"`+tt.days+`}]}`)

			tc, ok := e.Store.Teacher(b.Teachers["a"])
			require.True(t, ok)
			assert.Equal(t, tt.want, tc.AvailableDays)
		})
	}
}

func TestToJSON_RoundTrip(t *testing.T) {
	// GIVEN: The demo school, with one teacher's subject orphaned
	// WHEN: Exporting and building the export into a fresh store
	// THEN: The rebuilt store has the same shape, minus the orphan
	src, b := build(t, DemoSchoolJSON())
	src.Store.DeleteTeacher(b.Teachers["iris"])

	f := NewSchoolFactory()
	exported := f.ToJSON(src.Store)
	dst := newEngine()
	_, err := f.Build(exported, dst)
	require.NoError(t, err)

	assert.Len(t, dst.Store.Teachers(), 4)
	assert.Len(t, dst.Store.Subjects(), 5)
	assert.Len(t, dst.Store.YearSubjects(), 10)
	assert.Len(t, dst.Store.ScheduleEntries(), len(src.Store.ScheduleEntries()))

	r1 := timetable.Reporter{Store: src.Store}.Report()
	r2 := timetable.Reporter{Store: dst.Store}.Report()
	require.Len(t, r2, len(r1))
	for i := range r1 {
		assert.Equal(t, r1[i].Level, r2[i].Level)
		assert.Equal(t, r1[i].HoursAssigned, r2[i].HoursAssigned)
	}
}

func TestRestore_KeepsLessonsTheRulesWouldNowReject(t *testing.T) {
	// GIVEN: A Monday lesson for Ana, then Ana narrowed to Tuesday
	src, b := build(t, `{
		"teachers": [{"key": "ana", "given_name": "Ana", "family_name": "Ruiz"}],
		"subjects": [{"key": "m", "name": "Math", "teacher": "ana"}],
		"years": [{"key": "y", "level": 1}],
		"year_subjects": [{"year": "y", "subject": "m", "hours": 2}],
		"lessons": [{"year": "y", "slot": "1", "day": 0, "teacher": "ana", "subject": "m"}]
	}`)
	_, err := src.Store.UpdateTeacher(b.Teachers["ana"], "Ana", "Ruiz", timetable.NewDaySet(timetable.Tuesday))
	require.NoError(t, err)

	f := NewSchoolFactory()
	exported := f.ToJSON(src.Store)

	// WHEN: Building the export through the rules
	_, err = f.Build(exported, newEngine())

	// THEN: The engine rejects the lesson
	assert.ErrorIs(t, err, timetable.ErrTeacherConflict)

	// WHEN: Restoring it instead
	dst := timetable.NewStore()
	restored, err := f.Restore(exported, dst)

	// THEN: The lesson is back as stored
	require.NoError(t, err)
	require.Len(t, restored.Lessons, 1)
	entries := dst.ScheduleEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, timetable.Monday, entries[0].Day)
	assert.Equal(t, timetable.TimeSlotID("1"), entries[0].SlotID)
}

func TestRestore_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		is   error
	}{
		{
			name: "two lessons in one cell",
			json: `{
				"teachers": [{"key": "a", "given_name": "A", "family_name": "B"}],
				"subjects": [{"key": "m", "name": "Math", "teacher": "a"}],
				"years": [{"key": "y", "level": 1}],
				"lessons": [
					{"year": "y", "slot": "1", "day": 0, "teacher": "a", "subject": "m"},
					{"year": "y", "slot": "1", "day": 0, "teacher": "a", "subject": "m"}
				]
			}`,
			is: timetable.ErrCellOccupied,
		},
		{
			name: "lesson day out of range",
			json: `{
				"teachers": [{"key": "a", "given_name": "A", "family_name": "B"}],
				"subjects": [{"key": "m", "name": "Math", "teacher": "a"}],
				"years": [{"key": "y", "level": 1}],
				"lessons": [{"year": "y", "slot": "1", "day": 6, "teacher": "a", "subject": "m"}]
			}`,
			is: timetable.ErrInvalidDay,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewSchoolFactory()
			sj, err := f.ParseSchool(tt.json)
			require.NoError(t, err)

			_, err = f.Restore(sj, timetable.NewStore())

			assert.ErrorIs(t, err, tt.is)
		})
	}
}
