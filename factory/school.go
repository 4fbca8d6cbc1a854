/*
Package factory provides JSON to timetable conversion.

PURPOSE:
  Builds a whole school (teachers, subjects, years, quotas and lessons) from
  one JSON document, and exports the current state back to that shape.
  Demo scenarios, fixtures and the import/export endpoints all go through
  here.

  Entities are created through timetable.Store and lessons are placed
  through timetable.Engine, so a fixture that breaks an allocation rule
  fails to load instead of producing an impossible timetable.

JSON SCHEMA:
  {
    "name": "Demo School",
    "teachers": [
      {"key": "ana", "given_name": "Ana", "family_name": "Ruiz",
       "available_days": [0, 2, 4]}
    ],
    "subjects":      [{"key": "math", "name": "Math", "teacher": "ana"}],
    "years":         [{"key": "y1", "level": 1}],
    "year_subjects": [{"year": "y1", "subject": "math", "hours": 4}],
    "lessons": [
      {"year": "y1", "slot": "1", "day": 0, "teacher": "ana", "subject": "math"}
    ]
  }

  Keys are local to the document and only link its sections together; the
  Store assigns the real ids. A teacher without available_days is
  available all week; an empty list means no day at all.

USAGE:
  f := factory.NewSchoolFactory()
  school, err := f.ParseSchool(factory.DemoSchoolJSON())
  built, err := f.Build(school, engine)
  built.Teachers["ana"] // TeacherID

  Build enforces the allocation rules on every lesson and suits hand-written
  fixtures. Restore only checks structure and suits documents produced by
  ToJSON, whose lessons may predate later availability or owner changes.

SEE ALSO:
  - timetable/engine.go: Place
  - api/scenarios.go: demo scenarios built on these presets
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/timetable-engine/timetable"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type SchoolJSON struct {
	Name         string            `json:"name,omitempty"`
	Teachers     []TeacherJSON     `json:"teachers"`
	Subjects     []SubjectJSON     `json:"subjects"`
	Years        []YearJSON        `json:"years"`
	YearSubjects []YearSubjectJSON `json:"year_subjects"`
	Lessons      []LessonJSON      `json:"lessons"`
}

type TeacherJSON struct {
	Key           string `json:"key"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	AvailableDays []int  `json:"available_days"` // weekday indexes, Monday = 0; null means all week
}

type SubjectJSON struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Teacher string `json:"teacher"`
}

type YearJSON struct {
	Key   string `json:"key"`
	Level int    `json:"level"`
}

type YearSubjectJSON struct {
	Year    string `json:"year"`
	Subject string `json:"subject"`
	Hours   int    `json:"hours"`
}

type LessonJSON struct {
	Year    string `json:"year"`
	Slot    string `json:"slot"`
	Day     int    `json:"day"`
	Teacher string `json:"teacher"`
	Subject string `json:"subject"`
}

// =============================================================================
// SCHOOL FACTORY
// =============================================================================

type SchoolFactory struct{}

func NewSchoolFactory() *SchoolFactory {
	return &SchoolFactory{}
}

// Built maps the document's keys to the ids the Store assigned.
type Built struct {
	Teachers map[string]timetable.TeacherID
	Subjects map[string]timetable.SubjectID
	Years    map[string]timetable.YearID
	Lessons  []timetable.EntryID
}

func (f *SchoolFactory) ParseSchool(jsonStr string) (SchoolJSON, error) {
	var sj SchoolJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return SchoolJSON{}, fmt.Errorf("failed to parse school JSON: %w", err)
	}
	return sj, nil
}

// Build adds the school to the engine's Store, placing every lesson through
// the Engine's rules. It does not reset the Store first. On error the Store
// holds whatever was created before the failure.
func (f *SchoolFactory) Build(sj SchoolJSON, engine *timetable.Engine) (*Built, error) {
	return f.build(sj, engine.Store, engine.PlaceEntry)
}

// Restore adds the school to store, bringing lessons back as stored rows:
// references must exist and a cell holds one lesson, but availability,
// quotas and ownership are not re-checked. Lessons that were valid when
// placed stay after a teacher's days or a subject's owner changed.
func (f *SchoolFactory) Restore(sj SchoolJSON, store *timetable.Store) (*Built, error) {
	return f.build(sj, store, store.InsertEntry)
}

type placeFunc func(timetable.Cell, timetable.TeacherID, timetable.SubjectID) (timetable.ScheduleEntry, error)

func (f *SchoolFactory) build(sj SchoolJSON, store *timetable.Store, place placeFunc) (*Built, error) {
	b := &Built{
		Teachers: make(map[string]timetable.TeacherID),
		Subjects: make(map[string]timetable.SubjectID),
		Years:    make(map[string]timetable.YearID),
	}

	for _, tj := range sj.Teachers {
		if _, dup := b.Teachers[tj.Key]; dup {
			return nil, fmt.Errorf("duplicate teacher key %q", tj.Key)
		}
		t, err := addTeacher(store, tj)
		if err != nil {
			return nil, fmt.Errorf("teacher %q: %w", tj.Key, err)
		}
		b.Teachers[tj.Key] = t.ID
	}

	for _, sub := range sj.Subjects {
		if _, dup := b.Subjects[sub.Key]; dup {
			return nil, fmt.Errorf("duplicate subject key %q", sub.Key)
		}
		teacherID, ok := b.Teachers[sub.Teacher]
		if !ok {
			return nil, fmt.Errorf("subject %q: unknown teacher %q", sub.Key, sub.Teacher)
		}
		s, err := store.AddSubject(sub.Name, teacherID)
		if err != nil {
			return nil, fmt.Errorf("subject %q: %w", sub.Key, err)
		}
		b.Subjects[sub.Key] = s.ID
	}

	for _, yj := range sj.Years {
		if _, dup := b.Years[yj.Key]; dup {
			return nil, fmt.Errorf("duplicate year key %q", yj.Key)
		}
		y, err := store.AddYear(yj.Level)
		if err != nil {
			return nil, fmt.Errorf("year %q: %w", yj.Key, err)
		}
		b.Years[yj.Key] = y.ID
	}

	for _, ysj := range sj.YearSubjects {
		yearID, subjectID, err := b.resolvePair(ysj.Year, ysj.Subject)
		if err != nil {
			return nil, fmt.Errorf("year subject: %w", err)
		}
		if _, err := store.AddYearSubject(yearID, subjectID, ysj.Hours); err != nil {
			return nil, fmt.Errorf("year subject %q/%q: %w", ysj.Year, ysj.Subject, err)
		}
	}

	for i, lj := range sj.Lessons {
		yearID, subjectID, err := b.resolvePair(lj.Year, lj.Subject)
		if err != nil {
			return nil, fmt.Errorf("lesson %d: %w", i, err)
		}
		teacherID, ok := b.Teachers[lj.Teacher]
		if !ok {
			return nil, fmt.Errorf("lesson %d: unknown teacher %q", i, lj.Teacher)
		}
		day := timetable.Day(lj.Day)
		if !day.Valid() {
			return nil, fmt.Errorf("lesson %d: %w: day index %d", i, timetable.ErrInvalidDay, lj.Day)
		}
		if _, ok := timetable.LookupTimeSlot(timetable.TimeSlotID(lj.Slot)); !ok {
			return nil, fmt.Errorf("lesson %d: unknown time slot %q", i, lj.Slot)
		}
		cell := timetable.Cell{SlotID: timetable.TimeSlotID(lj.Slot), Day: day, YearID: yearID}
		entry, err := place(cell, teacherID, subjectID)
		if err != nil {
			return nil, fmt.Errorf("lesson %d: %w", i, err)
		}
		b.Lessons = append(b.Lessons, entry.ID)
	}

	return b, nil
}

// addTeacher creates the teacher. A missing day list means all week. An
// explicit empty list is a teacher on leave: AddTeacher needs at least one
// day, so the teacher is created available and then cleared.
func addTeacher(store *timetable.Store, tj TeacherJSON) (timetable.Teacher, error) {
	if tj.AvailableDays == nil {
		return store.AddTeacher(tj.GivenName, tj.FamilyName, timetable.AllDays)
	}
	days, err := timetable.DaySetFromInts(tj.AvailableDays)
	if err != nil {
		return timetable.Teacher{}, err
	}
	if !days.IsEmpty() {
		return store.AddTeacher(tj.GivenName, tj.FamilyName, days)
	}
	t, err := store.AddTeacher(tj.GivenName, tj.FamilyName, timetable.AllDays)
	if err != nil {
		return timetable.Teacher{}, err
	}
	return store.UpdateTeacher(t.ID, t.GivenName, t.FamilyName, days)
}

func (b *Built) resolvePair(yearKey, subjectKey string) (timetable.YearID, timetable.SubjectID, error) {
	yearID, ok := b.Years[yearKey]
	if !ok {
		return "", "", fmt.Errorf("unknown year %q", yearKey)
	}
	subjectID, ok := b.Subjects[subjectKey]
	if !ok {
		return "", "", fmt.Errorf("unknown subject %q", subjectKey)
	}
	return yearID, subjectID, nil
}

// =============================================================================
// EXPORT
// =============================================================================

// ToJSON exports the Store using entity ids as keys. Subjects whose teacher
// no longer exists and lessons referring to missing entities are skipped,
// since they could not be rebuilt.
func (f *SchoolFactory) ToJSON(store *timetable.Store) SchoolJSON {
	snap := store.Snapshot()
	sj := SchoolJSON{
		Teachers:     make([]TeacherJSON, 0, len(snap.Teachers)),
		Subjects:     make([]SubjectJSON, 0, len(snap.Subjects)),
		Years:        make([]YearJSON, 0, len(snap.Years)),
		YearSubjects: make([]YearSubjectJSON, 0, len(snap.YearSubjects)),
		Lessons:      make([]LessonJSON, 0, len(snap.ScheduleEntries)),
	}

	teachers := make(map[timetable.TeacherID]bool)
	for _, t := range snap.Teachers {
		teachers[t.ID] = true
		sj.Teachers = append(sj.Teachers, TeacherJSON{
			Key:           string(t.ID),
			GivenName:     t.GivenName,
			FamilyName:    t.FamilyName,
			AvailableDays: t.AvailableDays.Ints(),
		})
	}
	subjects := make(map[timetable.SubjectID]bool)
	for _, s := range snap.Subjects {
		if !teachers[s.TeacherID] {
			continue
		}
		subjects[s.ID] = true
		sj.Subjects = append(sj.Subjects, SubjectJSON{Key: string(s.ID), Name: s.Name, Teacher: string(s.TeacherID)})
	}
	years := make(map[timetable.YearID]bool)
	for _, y := range snap.Years {
		years[y.ID] = true
		sj.Years = append(sj.Years, YearJSON{Key: string(y.ID), Level: y.Level})
	}
	for _, ys := range snap.YearSubjects {
		if !years[ys.YearID] || !subjects[ys.SubjectID] {
			continue
		}
		sj.YearSubjects = append(sj.YearSubjects, YearSubjectJSON{
			Year: string(ys.YearID), Subject: string(ys.SubjectID), Hours: ys.HoursRequired,
		})
	}
	for _, e := range snap.ScheduleEntries {
		if !years[e.YearID] || !subjects[e.SubjectID] || !teachers[e.TeacherID] {
			continue
		}
		sj.Lessons = append(sj.Lessons, LessonJSON{
			Year: string(e.YearID), Slot: string(e.SlotID), Day: int(e.Day),
			Teacher: string(e.TeacherID), Subject: string(e.SubjectID),
		})
	}
	return sj
}
