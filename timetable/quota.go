package timetable

// =============================================================================
// QUOTA TRACKER - Hours assigned vs hours required
// =============================================================================

// QuotaTracker counts scheduled lessons per (subject, year) pair and checks
// them against the pair's YearSubject quota.
type QuotaTracker struct {
	Store *Store
}

// AssignedHours is the number of lessons scheduled for the pair.
func (q QuotaTracker) AssignedHours(subjectID SubjectID, yearID YearID) int {
	q.Store.mu.RLock()
	defer q.Store.mu.RUnlock()
	return assignedHours(&q.Store.st, subjectID, yearID)
}

// CanAcceptMore is true iff the subject is assigned to the year and has not
// reached its required hours. A subject without a YearSubject for the year
// accepts nothing.
func (q QuotaTracker) CanAcceptMore(subjectID SubjectID, yearID YearID) bool {
	q.Store.mu.RLock()
	defer q.Store.mu.RUnlock()
	ok, _ := canAcceptMore(&q.Store.st, subjectID, yearID)
	return ok
}

func assignedHours(st *state, subjectID SubjectID, yearID YearID) int {
	n := 0
	for _, e := range st.entries {
		if e.SubjectID == subjectID && e.YearID == yearID {
			n++
		}
	}
	return n
}

// canAcceptMore also returns the quota (0 when unassigned) for error reports.
func canAcceptMore(st *state, subjectID SubjectID, yearID YearID) (bool, int) {
	ys, ok := st.yearSubjectFor(subjectID, yearID)
	if !ok {
		return false, 0
	}
	return assignedHours(st, subjectID, yearID) < ys.HoursRequired, ys.HoursRequired
}
