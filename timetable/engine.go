/*
engine.go - Allocation Engine: validated upsert of one lesson

PURPOSE:
  Place puts a (teacher, subject) lesson into a timetable cell. It checks
  the allocation rules, then replaces whatever the cell held.

PLACEMENT FLOW:
  ┌──────────────────────────────────────────────────────────────────┐
  │  teacher &     teacher       subject under     remove occupant   │
  │  subject set ─▶ available ─▶  its quota    ─▶  insert new entry  │
  │      │              │              │            (one atomic step) │
  │      ▼              ▼              ▼                              │
  │  InvalidInput  TeacherConflict  QuotaExceeded                     │
  └──────────────────────────────────────────────────────────────────┘

  The first failing check decides the error and nothing is changed.

UPSERT:
  A cell holds at most one lesson. Placing on an occupied cell silently
  discards the previous lesson, whatever teacher or subject it had. Callers
  that care should ask the user before placing on an occupied cell.

OWNERSHIP:
  By default the engine trusts the caller to pass a teacher that owns the
  subject. StrictOwnership adds a fourth check
  (after the quota) that rejects mismatches with ErrOwnerMismatch. Turning
  it on changes which placements are accepted.

CONCURRENCY:
  Place holds the Store's write lock from the first check to the commit, so
  the checks and the write see the same state.

SEE ALSO:
  - availability.go, quota.go: the rules
  - errors.go: PlacementError
*/
package timetable

import (
	"github.com/rs/zerolog"
)

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	Store        *Store
	Availability AvailabilityChecker
	Quota        QuotaTracker

	// StrictOwnership rejects placements whose teacher is not the subject's
	// responsible teacher.
	StrictOwnership bool

	Logger zerolog.Logger
}

func NewEngine(store *Store) *Engine {
	return &Engine{
		Store:        store,
		Availability: AvailabilityChecker{Store: store},
		Quota:        QuotaTracker{Store: store},
		Logger:       zerolog.Nop(),
	}
}

// Place validates and commits one lesson. On failure it returns a
// *PlacementError wrapping ErrInvalidInput, ErrTeacherConflict,
// ErrQuotaExceeded or ErrOwnerMismatch, and the Store is untouched.
func (e *Engine) Place(cell Cell, teacherID TeacherID, subjectID SubjectID) error {
	_, err := e.PlaceEntry(cell, teacherID, subjectID)
	return err
}

// PlaceEntry is Place returning the committed entry.
func (e *Engine) PlaceEntry(cell Cell, teacherID TeacherID, subjectID SubjectID) (ScheduleEntry, error) {
	entry, err := e.place(cell, teacherID, subjectID)
	if err != nil {
		e.Logger.Info().
			Err(err).
			Str("slot_id", string(cell.SlotID)).
			Int("day", int(cell.Day)).
			Str("year_id", string(cell.YearID)).
			Str("teacher_id", string(teacherID)).
			Str("subject_id", string(subjectID)).
			Msg("placement rejected")
		return ScheduleEntry{}, err
	}
	e.Logger.Debug().
		Str("entry_id", string(entry.ID)).
		Str("slot_id", string(cell.SlotID)).
		Int("day", int(cell.Day)).
		Str("year_id", string(cell.YearID)).
		Msg("lesson placed")
	return entry, nil
}

func (e *Engine) place(cell Cell, teacherID TeacherID, subjectID SubjectID) (ScheduleEntry, error) {
	fail := func(kind error, required int) error {
		return &PlacementError{Kind: kind, Cell: cell, TeacherID: teacherID, SubjectID: subjectID, Required: required}
	}

	// 1. References present
	if teacherID == "" || subjectID == "" {
		return ScheduleEntry{}, fail(ErrInvalidInput, 0)
	}

	s := e.Store
	s.mu.Lock()
	defer s.mu.Unlock()

	// 2. Teacher free that day and not in another year at this slot
	if !isAvailable(&s.st, teacherID, cell.SlotID, cell.Day, cell.YearID) {
		return ScheduleEntry{}, fail(ErrTeacherConflict, 0)
	}

	// 3. Subject under its quota for the year
	ok, required := canAcceptMore(&s.st, subjectID, cell.YearID)
	if !ok {
		return ScheduleEntry{}, fail(ErrQuotaExceeded, required)
	}

	// 4. Optional: teacher owns the subject
	if e.StrictOwnership {
		i := s.st.subjectIndex(subjectID)
		if i < 0 || s.st.subjects[i].TeacherID != teacherID {
			return ScheduleEntry{}, fail(ErrOwnerMismatch, 0)
		}
	}

	// Commit: replace occupant and insert under the same lock
	s.st.removeEntries(func(x ScheduleEntry) bool { return x.Cell() == cell })
	entry := ScheduleEntry{
		ID:        EntryID(s.newID()),
		SlotID:    cell.SlotID,
		Day:       cell.Day,
		TeacherID: teacherID,
		SubjectID: subjectID,
		YearID:    cell.YearID,
	}
	s.st.entries = append(s.st.entries, entry)
	s.markDirty(CollectionScheduleEntries)
	return entry, nil
}

// Remove deletes one lesson. Unknown ids are a no-op.
func (e *Engine) Remove(id EntryID) {
	s := e.Store
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := s.st.removeEntries(func(x ScheduleEntry) bool { return x.ID == id }); n > 0 {
		s.markDirty(CollectionScheduleEntries)
		e.Logger.Debug().Str("entry_id", string(id)).Msg("lesson removed")
	}
}
