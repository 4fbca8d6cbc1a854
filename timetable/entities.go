package timetable

import (
	"fmt"
	"strings"
)

// =============================================================================
// TEACHERS
// =============================================================================

// AddTeacher creates a teacher. Both names are required and at least one
// weekday must be available.
func (s *Store) AddTeacher(givenName, familyName string, days DaySet) (Teacher, error) {
	givenName, familyName = strings.TrimSpace(givenName), strings.TrimSpace(familyName)
	if givenName == "" || familyName == "" {
		return Teacher{}, ErrEmptyName
	}
	if days.IsEmpty() {
		return Teacher{}, ErrNoAvailableDays
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Teacher{
		ID:            TeacherID(s.newID()),
		GivenName:     givenName,
		FamilyName:    familyName,
		AvailableDays: days & AllDays,
	}
	s.st.teachers = append(s.st.teachers, t)
	s.markDirty(CollectionTeachers)
	return t, nil
}

// UpdateTeacher replaces a teacher's names and available days. Unlike
// AddTeacher an empty day set is accepted: it marks the teacher as
// temporarily unavailable. Lessons already placed are kept.
func (s *Store) UpdateTeacher(id TeacherID, givenName, familyName string, days DaySet) (Teacher, error) {
	givenName, familyName = strings.TrimSpace(givenName), strings.TrimSpace(familyName)
	if givenName == "" || familyName == "" {
		return Teacher{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.st.teacherIndex(id)
	if i < 0 {
		return Teacher{}, ErrTeacherNotFound
	}
	t := &s.st.teachers[i]
	t.GivenName = givenName
	t.FamilyName = familyName
	t.AvailableDays = days & AllDays
	s.markDirty(CollectionTeachers)
	return *t, nil
}

// DeleteTeacher removes the teacher and every lesson it teaches. Subjects
// owned by the teacher are kept with a dangling owner.
func (s *Store) DeleteTeacher(id TeacherID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.st.teacherIndex(id)
	if i < 0 {
		return
	}
	s.st.teachers = append(s.st.teachers[:i], s.st.teachers[i+1:]...)
	removed := s.st.removeEntries(func(e ScheduleEntry) bool { return e.TeacherID == id })
	s.markDirty(CollectionTeachers, CollectionScheduleEntries)

	s.log.Info().Str("teacher_id", string(id)).Int("entries_removed", removed).Msg("teacher deleted")
}

func (s *Store) Teacher(id TeacherID) (Teacher, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.st.teacherIndex(id); i >= 0 {
		return s.st.teachers[i], true
	}
	return Teacher{}, false
}

func (s *Store) Teachers() []Teacher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Teacher(nil), s.st.teachers...)
}

// =============================================================================
// SUBJECTS
// =============================================================================

// AddSubject creates a subject owned by an existing teacher.
func (s *Store) AddSubject(name string, teacherID TeacherID) (Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Subject{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.teacherIndex(teacherID) < 0 {
		return Subject{}, ErrTeacherNotFound
	}
	sub := Subject{ID: SubjectID(s.newID()), Name: name, TeacherID: teacherID}
	s.st.subjects = append(s.st.subjects, sub)
	s.markDirty(CollectionSubjects)
	return sub, nil
}

// UpdateSubject renames a subject and/or hands it to another teacher.
// Lessons already placed keep their teacher.
func (s *Store) UpdateSubject(id SubjectID, name string, teacherID TeacherID) (Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Subject{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.st.subjectIndex(id)
	if i < 0 {
		return Subject{}, ErrSubjectNotFound
	}
	if s.st.teacherIndex(teacherID) < 0 {
		return Subject{}, ErrTeacherNotFound
	}
	sub := &s.st.subjects[i]
	sub.Name = name
	sub.TeacherID = teacherID
	s.markDirty(CollectionSubjects)
	return *sub, nil
}

// DeleteSubject removes the subject, its year assignments and its lessons.
func (s *Store) DeleteSubject(id SubjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.st.subjectIndex(id)
	if i < 0 {
		return
	}
	s.st.subjects = append(s.st.subjects[:i], s.st.subjects[i+1:]...)
	assoc := s.st.removeYearSubjects(func(ys YearSubject) bool { return ys.SubjectID == id })
	removed := s.st.removeEntries(func(e ScheduleEntry) bool { return e.SubjectID == id })
	s.markDirty(CollectionSubjects, CollectionYearSubjects, CollectionScheduleEntries)

	s.log.Info().
		Str("subject_id", string(id)).
		Int("year_subjects_removed", assoc).
		Int("entries_removed", removed).
		Msg("subject deleted")
}

func (s *Store) Subject(id SubjectID) (Subject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.st.subjectIndex(id); i >= 0 {
		return s.st.subjects[i], true
	}
	return Subject{}, false
}

func (s *Store) Subjects() []Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Subject(nil), s.st.subjects...)
}

// =============================================================================
// YEARS
// =============================================================================

// AddYear creates a year-group. Levels are positive and unique.
func (s *Store) AddYear(level int) (Year, error) {
	if level <= 0 {
		return Year{}, ErrInvalidLevel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.levelTaken(level, "") {
		return Year{}, ErrDuplicateLevel
	}
	y := Year{ID: YearID(s.newID()), Level: level}
	s.st.years = append(s.st.years, y)
	s.markDirty(CollectionYears)
	return y, nil
}

func (s *Store) UpdateYear(id YearID, level int) (Year, error) {
	if level <= 0 {
		return Year{}, ErrInvalidLevel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.st.yearIndex(id)
	if i < 0 {
		return Year{}, ErrYearNotFound
	}
	if s.levelTaken(level, id) {
		return Year{}, ErrDuplicateLevel
	}
	s.st.years[i].Level = level
	s.markDirty(CollectionYears)
	return s.st.years[i], nil
}

func (s *Store) levelTaken(level int, except YearID) bool {
	for _, y := range s.st.years {
		if y.Level == level && y.ID != except {
			return true
		}
	}
	return false
}

// DeleteYear removes the year, its subject assignments and its lessons.
func (s *Store) DeleteYear(id YearID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.st.yearIndex(id)
	if i < 0 {
		return
	}
	s.st.years = append(s.st.years[:i], s.st.years[i+1:]...)
	assoc := s.st.removeYearSubjects(func(ys YearSubject) bool { return ys.YearID == id })
	removed := s.st.removeEntries(func(e ScheduleEntry) bool { return e.YearID == id })
	s.markDirty(CollectionYears, CollectionYearSubjects, CollectionScheduleEntries)

	s.log.Info().
		Str("year_id", string(id)).
		Int("year_subjects_removed", assoc).
		Int("entries_removed", removed).
		Msg("year deleted")
}

func (s *Store) Year(id YearID) (Year, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.st.yearIndex(id); i >= 0 {
		return s.st.years[i], true
	}
	return Year{}, false
}

func (s *Store) Years() []Year {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Year(nil), s.st.years...)
}

// =============================================================================
// YEAR SUBJECTS - Quota definitions
// =============================================================================

// AddYearSubject assigns a subject to a year with a weekly hour quota.
func (s *Store) AddYearSubject(yearID YearID, subjectID SubjectID, hoursRequired int) (YearSubject, error) {
	if hoursRequired <= 0 {
		return YearSubject{}, ErrInvalidHours
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.yearIndex(yearID) < 0 {
		return YearSubject{}, ErrYearNotFound
	}
	if s.st.subjectIndex(subjectID) < 0 {
		return YearSubject{}, ErrSubjectNotFound
	}
	if _, exists := s.st.yearSubjectFor(subjectID, yearID); exists {
		return YearSubject{}, ErrDuplicateYearSubject
	}
	ys := YearSubject{
		ID:            YearSubjectID(s.newID()),
		YearID:        yearID,
		SubjectID:     subjectID,
		HoursRequired: hoursRequired,
	}
	s.st.yearSubjects = append(s.st.yearSubjects, ys)
	s.markDirty(CollectionYearSubjects)
	return ys, nil
}

// UpdateYearSubjectHours changes a quota. It cannot drop below the lessons
// already scheduled for the pair.
func (s *Store) UpdateYearSubjectHours(id YearSubjectID, hoursRequired int) (YearSubject, error) {
	if hoursRequired <= 0 {
		return YearSubject{}, ErrInvalidHours
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.st.yearSubjectIndex(id)
	if i < 0 {
		return YearSubject{}, ErrNotFound
	}
	ys := &s.st.yearSubjects[i]
	if assigned := assignedHours(&s.st, ys.SubjectID, ys.YearID); hoursRequired < assigned {
		return YearSubject{}, &HoursBelowAssignedError{YearSubjectID: id, Requested: hoursRequired, Assigned: assigned}
	}
	ys.HoursRequired = hoursRequired
	s.markDirty(CollectionYearSubjects)
	return *ys, nil
}

// DeleteYearSubject removes the association and only the lessons of its
// (year, subject) pair.
func (s *Store) DeleteYearSubject(id YearSubjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.st.yearSubjectIndex(id)
	if i < 0 {
		return
	}
	ys := s.st.yearSubjects[i]
	s.st.yearSubjects = append(s.st.yearSubjects[:i], s.st.yearSubjects[i+1:]...)
	removed := s.st.removeEntries(func(e ScheduleEntry) bool {
		return e.YearID == ys.YearID && e.SubjectID == ys.SubjectID
	})
	s.markDirty(CollectionYearSubjects, CollectionScheduleEntries)

	s.log.Info().Str("year_subject_id", string(id)).Int("entries_removed", removed).Msg("year subject deleted")
}

func (s *Store) YearSubject(id YearSubjectID) (YearSubject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.st.yearSubjectIndex(id); i >= 0 {
		return s.st.yearSubjects[i], true
	}
	return YearSubject{}, false
}

func (s *Store) YearSubjects() []YearSubject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]YearSubject(nil), s.st.yearSubjects...)
}

// =============================================================================
// SCHEDULE ENTRIES - Reads, and restoring stored rows; placement goes
// through Engine
// =============================================================================

// InsertEntry adds a stored lesson without the placement rules. Only the
// structure is checked: teacher, subject and year exist, the slot and day
// are valid, and the cell is free. Used to bring back lessons that were
// valid when placed even if availability or ownership changed since.
func (s *Store) InsertEntry(c Cell, teacherID TeacherID, subjectID SubjectID) (ScheduleEntry, error) {
	if !c.Day.Valid() {
		return ScheduleEntry{}, fmt.Errorf("%w: day index %d", ErrInvalidDay, int(c.Day))
	}
	if _, ok := LookupTimeSlot(c.SlotID); !ok {
		return ScheduleEntry{}, fmt.Errorf("%w: unknown time slot %q", ErrInvalidInput, c.SlotID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.st.teacherIndex(teacherID) < 0:
		return ScheduleEntry{}, ErrTeacherNotFound
	case s.st.subjectIndex(subjectID) < 0:
		return ScheduleEntry{}, ErrSubjectNotFound
	case s.st.yearIndex(c.YearID) < 0:
		return ScheduleEntry{}, ErrYearNotFound
	}
	if _, taken := s.st.entryAt(c); taken {
		return ScheduleEntry{}, fmt.Errorf("%w: %s", ErrCellOccupied, c)
	}

	e := ScheduleEntry{
		ID:        EntryID(s.newID()),
		SlotID:    c.SlotID,
		Day:       c.Day,
		TeacherID: teacherID,
		SubjectID: subjectID,
		YearID:    c.YearID,
	}
	s.st.entries = append(s.st.entries, e)
	s.markDirty(CollectionScheduleEntries)
	return e, nil
}

func (s *Store) Entry(id EntryID) (ScheduleEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.st.entries {
		if e.ID == id {
			return e, true
		}
	}
	return ScheduleEntry{}, false
}

// EntryAt returns the lesson occupying a cell, if any.
func (s *Store) EntryAt(c Cell) (ScheduleEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.entryAt(c)
}

func (s *Store) ScheduleEntries() []ScheduleEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ScheduleEntry(nil), s.st.entries...)
}
