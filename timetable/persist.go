/*
persist.go - Persistence boundary for entity collections

PURPOSE:
  The engine keeps every collection in memory. Durable storage is an
  external collaborator that loads all collections at startup and saves a
  collection whole whenever it changes (last write wins per collection).

LEGACY RECORDS:
  Migration of old records is the persister's job, not the engine's:
  - a teacher record without available days loads as available all week
  - an entry record without a year id but with a legacy year level loads
    with that level as its year id

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - timetable/store/memory.go: in-memory, for tests

SEE ALSO:
  - store.go: Store.Flush and Store.Restore
*/
package timetable

import "context"

// Collection names one of the five entity collections.
type Collection string

const (
	CollectionTeachers        Collection = "teachers"
	CollectionSubjects        Collection = "subjects"
	CollectionYears           Collection = "years"
	CollectionYearSubjects    Collection = "year_subjects"
	CollectionScheduleEntries Collection = "schedule_entries"
)

// Collections lists every collection in save order.
func Collections() []Collection {
	return []Collection{
		CollectionTeachers,
		CollectionSubjects,
		CollectionYears,
		CollectionYearSubjects,
		CollectionScheduleEntries,
	}
}

// Snapshot is a point-in-time copy of every collection.
type Snapshot struct {
	Teachers        []Teacher
	Subjects        []Subject
	Years           []Year
	YearSubjects    []YearSubject
	ScheduleEntries []ScheduleEntry
}

// Persister loads and saves whole collections.
type Persister interface {
	// Load returns every collection, with legacy records already migrated.
	Load(ctx context.Context) (Snapshot, error)

	// SaveCollection replaces the stored collection c with the one in snap.
	// Other collections in snap are ignored.
	SaveCollection(ctx context.Context, c Collection, snap Snapshot) error
}
