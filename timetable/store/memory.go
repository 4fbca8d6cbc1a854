// Package store provides Persister implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/timetable-engine/timetable"
)

// =============================================================================
// MEMORY PERSISTER - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	snap  timetable.Snapshot
	saves map[timetable.Collection]int
	fail  map[timetable.Collection]error
}

func NewMemory() *Memory {
	return &Memory{
		saves: make(map[timetable.Collection]int),
		fail:  make(map[timetable.Collection]error),
	}
}

// NewMemoryWith returns a persister preloaded with snap.
func NewMemoryWith(snap timetable.Snapshot) *Memory {
	m := NewMemory()
	m.snap = copySnapshot(snap)
	return m
}

func (m *Memory) Load(_ context.Context) (timetable.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copySnapshot(m.snap), nil
}

// SaveCollection replaces one collection, whole.
func (m *Memory) SaveCollection(_ context.Context, c timetable.Collection, snap timetable.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail[c]; err != nil {
		return err
	}
	switch c {
	case timetable.CollectionTeachers:
		m.snap.Teachers = append([]timetable.Teacher(nil), snap.Teachers...)
	case timetable.CollectionSubjects:
		m.snap.Subjects = append([]timetable.Subject(nil), snap.Subjects...)
	case timetable.CollectionYears:
		m.snap.Years = append([]timetable.Year(nil), snap.Years...)
	case timetable.CollectionYearSubjects:
		m.snap.YearSubjects = append([]timetable.YearSubject(nil), snap.YearSubjects...)
	case timetable.CollectionScheduleEntries:
		m.snap.ScheduleEntries = append([]timetable.ScheduleEntry(nil), snap.ScheduleEntries...)
	}
	m.saves[c]++
	return nil
}

// Saves reports how many times a collection has been written.
func (m *Memory) Saves(c timetable.Collection) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves[c]
}

// FailOn makes every save of c return err until cleared with a nil err.
func (m *Memory) FailOn(c timetable.Collection, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, c)
		return
	}
	m.fail[c] = err
}

func copySnapshot(s timetable.Snapshot) timetable.Snapshot {
	return timetable.Snapshot{
		Teachers:        append([]timetable.Teacher(nil), s.Teachers...),
		Subjects:        append([]timetable.Subject(nil), s.Subjects...),
		Years:           append([]timetable.Year(nil), s.Years...),
		YearSubjects:    append([]timetable.YearSubject(nil), s.YearSubjects...),
		ScheduleEntries: append([]timetable.ScheduleEntry(nil), s.ScheduleEntries...),
	}
}
