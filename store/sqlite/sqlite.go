/*
Package sqlite provides a SQLite-backed timetable.Persister.

PURPOSE:
  Durable storage for the five timetable collections. The in-memory Store
  is the source of truth while the server runs; this package loads it at
  startup and receives whole-collection writes from Store.Flush.

WRITE MODEL:
  SaveCollection replaces one table in a single transaction:

    BEGIN ─▶ DELETE FROM <table> ─▶ INSERT every row ─▶ COMMIT

  A failed save rolls back and leaves the previous contents intact. Rows
  carry a position column so Load returns them in the order they were
  saved.

KEY TABLES:
  teachers:         available_days is a JSON array of weekday indexes
  subjects:         teacher_id may dangle after a teacher is deleted
  years:            level is unique
  year_subjects:    one row per (year, subject) quota
  schedule_entries: one row per placed lesson

  No foreign keys: collections are saved one at a time, so the database
  may briefly hold references the next save removes.

LEGACY ROWS:
  Databases written by older builds may hold:
  - teachers with NULL available_days: loaded as available every day
  - schedule_entries with NULL year_id and a year_level instead: the
    level, as a decimal string, becomes the entry's year id

WAL MODE:
  File databases are opened with WAL. ":memory:" is pinned to a single
  connection, since each connection would otherwise see its own database.

USAGE:
  db, err := sqlite.New("./data/timetable.db")
  if err != nil {
      log.Fatal(err)
  }
  defer db.Close()

  snap, err := db.Load(ctx)
  store.Restore(snap)
  ...
  store.Flush(ctx, db)

SEE ALSO:
  - timetable/persist.go: Persister, Snapshot
  - timetable/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/timetable-engine/timetable"
)

// Store implements timetable.Persister using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ timetable.Persister = (*Store)(nil)

// New opens (creating if needed) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_journal_mode=WAL"
	if dbPath == ":memory:" {
		dsn = dbPath
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS teachers (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		given_name TEXT NOT NULL,
		family_name TEXT NOT NULL,
		-- JSON array of weekday indexes, NULL for rows predating availability
		available_days TEXT
	);

	CREATE TABLE IF NOT EXISTS subjects (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		teacher_id TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_subjects_teacher
		ON subjects(teacher_id);

	CREATE TABLE IF NOT EXISTS years (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		level INTEGER NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS year_subjects (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		year_id TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		hours_required INTEGER NOT NULL,
		UNIQUE(year_id, subject_id)
	);

	CREATE TABLE IF NOT EXISTS schedule_entries (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		slot_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		teacher_id TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		year_id TEXT,
		-- Older rows addressed the year by level
		year_level INTEGER
	);

	-- Ad-hoc reporting queries
	CREATE INDEX IF NOT EXISTS idx_entries_teacher_slot
		ON schedule_entries(teacher_id, slot_id, day);
	CREATE INDEX IF NOT EXISTS idx_entries_year_subject
		ON schedule_entries(year_id, subject_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads every collection. Legacy rows are upgraded in the result; the
// database itself is rewritten on the next save of that collection.
func (s *Store) Load(ctx context.Context) (timetable.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap timetable.Snapshot
	var err error
	if snap.Teachers, err = s.loadTeachers(ctx); err != nil {
		return timetable.Snapshot{}, fmt.Errorf("failed to load teachers: %w", err)
	}
	if snap.Subjects, err = s.loadSubjects(ctx); err != nil {
		return timetable.Snapshot{}, fmt.Errorf("failed to load subjects: %w", err)
	}
	if snap.Years, err = s.loadYears(ctx); err != nil {
		return timetable.Snapshot{}, fmt.Errorf("failed to load years: %w", err)
	}
	if snap.YearSubjects, err = s.loadYearSubjects(ctx); err != nil {
		return timetable.Snapshot{}, fmt.Errorf("failed to load year subjects: %w", err)
	}
	if snap.ScheduleEntries, err = s.loadEntries(ctx); err != nil {
		return timetable.Snapshot{}, fmt.Errorf("failed to load schedule entries: %w", err)
	}
	return snap, nil
}

func (s *Store) loadTeachers(ctx context.Context) ([]timetable.Teacher, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, given_name, family_name, available_days
		FROM teachers ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timetable.Teacher
	for rows.Next() {
		var t timetable.Teacher
		var days sql.NullString
		if err := rows.Scan(&t.ID, &t.GivenName, &t.FamilyName, &days); err != nil {
			return nil, err
		}
		if t.AvailableDays, err = decodeDays(days); err != nil {
			return nil, fmt.Errorf("teacher %s: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) loadSubjects(ctx context.Context) ([]timetable.Subject, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, teacher_id FROM subjects ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timetable.Subject
	for rows.Next() {
		var sub timetable.Subject
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.TeacherID); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *Store) loadYears(ctx context.Context) ([]timetable.Year, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, level FROM years ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timetable.Year
	for rows.Next() {
		var y timetable.Year
		if err := rows.Scan(&y.ID, &y.Level); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

func (s *Store) loadYearSubjects(ctx context.Context) ([]timetable.YearSubject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, year_id, subject_id, hours_required
		FROM year_subjects ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timetable.YearSubject
	for rows.Next() {
		var ys timetable.YearSubject
		if err := rows.Scan(&ys.ID, &ys.YearID, &ys.SubjectID, &ys.HoursRequired); err != nil {
			return nil, err
		}
		out = append(out, ys)
	}
	return out, rows.Err()
}

func (s *Store) loadEntries(ctx context.Context) ([]timetable.ScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slot_id, day, teacher_id, subject_id, year_id, year_level
		FROM schedule_entries ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timetable.ScheduleEntry
	for rows.Next() {
		var e timetable.ScheduleEntry
		var day int
		var yearID sql.NullString
		var yearLevel sql.NullInt64
		if err := rows.Scan(&e.ID, &e.SlotID, &day, &e.TeacherID, &e.SubjectID, &yearID, &yearLevel); err != nil {
			return nil, err
		}
		e.Day = timetable.Day(day)
		switch {
		case yearID.Valid:
			e.YearID = timetable.YearID(yearID.String)
		case yearLevel.Valid:
			e.YearID = timetable.YearID(strconv.FormatInt(yearLevel.Int64, 10))
		default:
			return nil, fmt.Errorf("entry %s has neither year_id nor year_level", e.ID)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// SAVE
// =============================================================================

// SaveCollection replaces the table backing c with the rows in snap.
func (s *Store) SaveCollection(ctx context.Context, c timetable.Collection, snap timetable.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := saveCollection(ctx, sqlTx, c, snap); err != nil {
		return err
	}
	return sqlTx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveCollection(ctx context.Context, db execer, c timetable.Collection, snap timetable.Snapshot) error {
	switch c {
	case timetable.CollectionTeachers:
		return replaceRows(ctx, db, "teachers",
			`INSERT INTO teachers (id, position, given_name, family_name, available_days) VALUES (?, ?, ?, ?, ?)`,
			len(snap.Teachers), func(i int) ([]any, error) {
				t := snap.Teachers[i]
				days, err := json.Marshal(t.AvailableDays.Ints())
				if err != nil {
					return nil, err
				}
				return []any{string(t.ID), i, t.GivenName, t.FamilyName, string(days)}, nil
			})
	case timetable.CollectionSubjects:
		return replaceRows(ctx, db, "subjects",
			`INSERT INTO subjects (id, position, name, teacher_id) VALUES (?, ?, ?, ?)`,
			len(snap.Subjects), func(i int) ([]any, error) {
				sub := snap.Subjects[i]
				return []any{string(sub.ID), i, sub.Name, string(sub.TeacherID)}, nil
			})
	case timetable.CollectionYears:
		return replaceRows(ctx, db, "years",
			`INSERT INTO years (id, position, level) VALUES (?, ?, ?)`,
			len(snap.Years), func(i int) ([]any, error) {
				y := snap.Years[i]
				return []any{string(y.ID), i, y.Level}, nil
			})
	case timetable.CollectionYearSubjects:
		return replaceRows(ctx, db, "year_subjects",
			`INSERT INTO year_subjects (id, position, year_id, subject_id, hours_required) VALUES (?, ?, ?, ?, ?)`,
			len(snap.YearSubjects), func(i int) ([]any, error) {
				ys := snap.YearSubjects[i]
				return []any{string(ys.ID), i, string(ys.YearID), string(ys.SubjectID), ys.HoursRequired}, nil
			})
	case timetable.CollectionScheduleEntries:
		return replaceRows(ctx, db, "schedule_entries",
			`INSERT INTO schedule_entries (id, position, slot_id, day, teacher_id, subject_id, year_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			len(snap.ScheduleEntries), func(i int) ([]any, error) {
				e := snap.ScheduleEntries[i]
				return []any{string(e.ID), i, string(e.SlotID), int(e.Day), string(e.TeacherID), string(e.SubjectID), string(e.YearID)}, nil
			})
	default:
		return fmt.Errorf("unknown collection %q", c)
	}
}

func replaceRows(ctx context.Context, db execer, table, insert string, n int, row func(i int) ([]any, error)) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	for i := 0; i < n; i++ {
		args, err := row(i)
		if err != nil {
			return fmt.Errorf("failed to encode %s row %d: %w", table, i, err)
		}
		if _, err := db.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"schedule_entries", "year_subjects", "years", "subjects", "teachers"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func decodeDays(raw sql.NullString) (timetable.DaySet, error) {
	if !raw.Valid {
		return timetable.AllDays, nil
	}
	var days []int
	if err := json.Unmarshal([]byte(raw.String), &days); err != nil {
		return 0, fmt.Errorf("invalid available_days %q: %w", raw.String, err)
	}
	return timetable.DaySetFromInts(days)
}
