/*
store.go - Entity Store: exclusive owner of the five collections

PURPOSE:
  The Store is the only writer of entity state. Components receive a
  *Store explicitly; there is no package-level state.

ATOMICITY:
  A single RWMutex guards every collection of one timetable. Each mutation,
  including a cascade delete or a placement's validate-then-commit, runs
  under the write lock, so no partial cascade and no empty intermediate
  cell is ever observable.

LOOKUPS:
  Collections are slices kept in insertion order (they are small, tens to
  low hundreds of rows). Lookups are linear scans.

DIRTY TRACKING:
  Every mutation marks the collections it touched. Flush writes each dirty
  collection whole to a Persister, outside the entity lock.

SEE ALSO:
  - entities.go: add / update / delete operations
  - persist.go: Persister interface
*/
package timetable

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// =============================================================================
// STORE
// =============================================================================

type Store struct {
	mu    sync.RWMutex
	st    state
	dirty map[Collection]bool

	// flushMu orders concurrent flushes so an older snapshot never
	// overwrites a newer one.
	flushMu sync.Mutex

	newID func() string
	log   zerolog.Logger
}

type StoreOption func(*Store)

// WithIDGenerator replaces the UUID generator. Generated ids must be unique.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) { s.newID = fn }
}

func WithStoreLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		dirty: make(map[Collection]bool),
		newID: uuid.NewString,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// STATE - The collections, only touched with mu held
// =============================================================================

type state struct {
	teachers     []Teacher
	subjects     []Subject
	years        []Year
	yearSubjects []YearSubject
	entries      []ScheduleEntry
}

func (st *state) teacherIndex(id TeacherID) int {
	for i := range st.teachers {
		if st.teachers[i].ID == id {
			return i
		}
	}
	return -1
}

func (st *state) subjectIndex(id SubjectID) int {
	for i := range st.subjects {
		if st.subjects[i].ID == id {
			return i
		}
	}
	return -1
}

func (st *state) yearIndex(id YearID) int {
	for i := range st.years {
		if st.years[i].ID == id {
			return i
		}
	}
	return -1
}

func (st *state) yearSubjectIndex(id YearSubjectID) int {
	for i := range st.yearSubjects {
		if st.yearSubjects[i].ID == id {
			return i
		}
	}
	return -1
}

// yearSubjectFor finds the association for a (subject, year) pair.
func (st *state) yearSubjectFor(subjectID SubjectID, yearID YearID) (YearSubject, bool) {
	for _, ys := range st.yearSubjects {
		if ys.SubjectID == subjectID && ys.YearID == yearID {
			return ys, true
		}
	}
	return YearSubject{}, false
}

func (st *state) entryAt(c Cell) (ScheduleEntry, bool) {
	for _, e := range st.entries {
		if e.Cell() == c {
			return e, true
		}
	}
	return ScheduleEntry{}, false
}

// removeEntries drops every entry matching drop and reports how many went.
func (st *state) removeEntries(drop func(ScheduleEntry) bool) int {
	kept := st.entries[:0]
	removed := 0
	for _, e := range st.entries {
		if drop(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	st.entries = kept
	return removed
}

func (st *state) removeYearSubjects(drop func(YearSubject) bool) int {
	kept := st.yearSubjects[:0]
	removed := 0
	for _, ys := range st.yearSubjects {
		if drop(ys) {
			removed++
			continue
		}
		kept = append(kept, ys)
	}
	st.yearSubjects = kept
	return removed
}

func (st *state) clone() state {
	return state{
		teachers:     append([]Teacher(nil), st.teachers...),
		subjects:     append([]Subject(nil), st.subjects...),
		years:        append([]Year(nil), st.years...),
		yearSubjects: append([]YearSubject(nil), st.yearSubjects...),
		entries:      append([]ScheduleEntry(nil), st.entries...),
	}
}

func (s *Store) markDirty(cs ...Collection) {
	for _, c := range cs {
		s.dirty[c] = true
	}
}

// =============================================================================
// SNAPSHOT / RESTORE / FLUSH
// =============================================================================

// Snapshot returns a copy of every collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	c := s.st.clone()
	return Snapshot{
		Teachers:        c.teachers,
		Subjects:        c.subjects,
		Years:           c.years,
		YearSubjects:    c.yearSubjects,
		ScheduleEntries: c.entries,
	}
}

// Restore replaces every collection with the snapshot, as loaded from a
// Persister. Nothing is marked dirty.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = stateFrom(snap)
	s.dirty = make(map[Collection]bool)
}

func stateFrom(snap Snapshot) state {
	src := state{
		teachers:     snap.Teachers,
		subjects:     snap.Subjects,
		years:        snap.Years,
		yearSubjects: snap.YearSubjects,
		entries:      snap.ScheduleEntries,
	}
	return src.clone()
}

// Replace swaps every collection for the snapshot and marks them all dirty,
// so the next Flush writes the new contents.
func (s *Store) Replace(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = stateFrom(snap)
	s.markDirty(Collections()...)
}

// Reset empties every collection and marks them all dirty.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = state{}
	s.markDirty(Collections()...)
}

// Dirty lists the collections changed since the last successful Flush.
func (s *Store) Dirty() []Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Collection
	for _, c := range Collections() {
		if s.dirty[c] {
			out = append(out, c)
		}
	}
	return out
}

// Flush saves every dirty collection whole. Collections that fail to save
// stay dirty and are retried on the next Flush.
func (s *Store) Flush(ctx context.Context, p Persister) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	snap := s.snapshotLocked()
	var pending []Collection
	for _, c := range Collections() {
		if s.dirty[c] {
			pending = append(pending, c)
		}
	}
	s.dirty = make(map[Collection]bool)
	s.mu.Unlock()

	for i, c := range pending {
		if err := p.SaveCollection(ctx, c, snap); err != nil {
			s.mu.Lock()
			s.markDirty(pending[i:]...)
			s.mu.Unlock()
			return fmt.Errorf("failed to save %s: %w", c, err)
		}
		s.log.Debug().Str("collection", string(c)).Msg("collection saved")
	}
	return nil
}
