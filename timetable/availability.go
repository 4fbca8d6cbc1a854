package timetable

// =============================================================================
// AVAILABILITY CHECKER - Can teacher T take (slot, day) for year Y?
// =============================================================================

// AvailabilityChecker answers whether a teacher may legally occupy a slot.
// It is a pure read of the Store.
//
// Rules, in order, stopping at the first failure:
//  1. the teacher exists
//  2. the day is one of the teacher's available days
//  3. the teacher has no lesson at the same slot and day in another year
//
// A lesson by the same teacher in the same year is not a conflict: that is
// the cell's current occupant, which Place replaces.
type AvailabilityChecker struct {
	Store *Store
}

func (c AvailabilityChecker) IsAvailable(teacherID TeacherID, slotID TimeSlotID, day Day, yearID YearID) bool {
	c.Store.mu.RLock()
	defer c.Store.mu.RUnlock()
	return isAvailable(&c.Store.st, teacherID, slotID, day, yearID)
}

// AvailableTeachers returns the teachers who could take the cell, in store
// order. Used to populate teacher pickers.
func (c AvailabilityChecker) AvailableTeachers(cell Cell) []Teacher {
	c.Store.mu.RLock()
	defer c.Store.mu.RUnlock()

	var out []Teacher
	for _, t := range c.Store.st.teachers {
		if isAvailable(&c.Store.st, t.ID, cell.SlotID, cell.Day, cell.YearID) {
			out = append(out, t)
		}
	}
	return out
}

func isAvailable(st *state, teacherID TeacherID, slotID TimeSlotID, day Day, yearID YearID) bool {
	i := st.teacherIndex(teacherID)
	if i < 0 {
		return false
	}
	if !st.teachers[i].AvailableDays.Has(day) {
		return false
	}
	for _, e := range st.entries {
		if e.TeacherID == teacherID && e.SlotID == slotID && e.Day == day && e.YearID != yearID {
			return false
		}
	}
	return true
}
