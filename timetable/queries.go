package timetable

// =============================================================================
// READ-ONLY ACCESSORS FOR THE PRESENTATION LAYER
// =============================================================================

// NotAvailable is returned by name lookups for unknown ids.
const NotAvailable = "N/A"

// TeacherName returns "Given Family" or NotAvailable.
func (s *Store) TeacherName(id TeacherID) string {
	if t, ok := s.Teacher(id); ok {
		return t.FullName()
	}
	return NotAvailable
}

func (s *Store) SubjectName(id SubjectID) string {
	if sub, ok := s.Subject(id); ok {
		return sub.Name
	}
	return NotAvailable
}

// YearLevel returns the level of a year, or 0 if it does not exist.
func (s *Store) YearLevel(id YearID) int {
	if y, ok := s.Year(id); ok {
		return y.Level
	}
	return 0
}

// SubjectsOwnedBy lists the subjects a teacher is responsible for.
func (s *Store) SubjectsOwnedBy(teacherID TeacherID) []Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Subject
	for _, sub := range s.st.subjects {
		if sub.TeacherID == teacherID {
			out = append(out, sub)
		}
	}
	return out
}

// YearSubjectsFor lists the quotas defined for a year.
func (s *Store) YearSubjectsFor(yearID YearID) []YearSubject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []YearSubject
	for _, ys := range s.st.yearSubjects {
		if ys.YearID == yearID {
			out = append(out, ys)
		}
	}
	return out
}

// SubjectsAvailableFor lists the subjects assigned to the year whose
// responsible teacher is teacherID. This is what a subject picker should
// offer once a teacher has been chosen for a cell.
func (s *Store) SubjectsAvailableFor(teacherID TeacherID, yearID YearID) []Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Subject
	for _, ys := range s.st.yearSubjects {
		if ys.YearID != yearID {
			continue
		}
		if i := s.st.subjectIndex(ys.SubjectID); i >= 0 && s.st.subjects[i].TeacherID == teacherID {
			out = append(out, s.st.subjects[i])
		}
	}
	return out
}

// TeacherLessonCount is the number of lessons a teacher has across all years.
func (s *Store) TeacherLessonCount(teacherID TeacherID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.st.entries {
		if e.TeacherID == teacherID {
			n++
		}
	}
	return n
}

// =============================================================================
// YEAR GRID
// =============================================================================

// GridCell is one cell of a year's weekly grid. Entry is nil when empty.
type GridCell struct {
	Cell  Cell
	Entry *ScheduleEntry
}

// YearGrid returns the weekly grid of a year, one row per time slot and one
// column per weekday.
func (s *Store) YearGrid(yearID YearID) [][]GridCell {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grid := make([][]GridCell, len(timeSlots))
	for r, ts := range timeSlots {
		row := make([]GridCell, DaysPerWeek)
		for _, d := range Days() {
			c := Cell{SlotID: ts.ID, Day: d, YearID: yearID}
			row[d] = GridCell{Cell: c}
			if e, ok := s.st.entryAt(c); ok {
				row[d].Entry = &e
			}
		}
		grid[r] = row
	}
	return grid
}
