/*
Package timetable provides the weekly timetable allocation engine.

PURPOSE:
  Places teachers and subjects into fixed weekly time slots for several
  year-groups while enforcing three rules:
  - a teacher only teaches on weekdays they are available
  - a teacher is never in two year-groups at the same slot and day
  - a subject never gets more weekly lessons in a year than its quota

KEY CONCEPTS IN THIS FILE (types.go):
  - Typed identifiers: TeacherID, SubjectID, YearID, ...
  - Day and DaySet: weekday index (0=Mon..4=Fri) and a set of them
  - TimeSlot: the five fixed daily slots (compiled in)
  - Cell: a (slot, day, year) coordinate holding at most one lesson
  - Entities: Teacher, Subject, Year, YearSubject, ScheduleEntry

COMPONENTS:
  Store:               owns the five collections, cascade deletes (store.go)
  AvailabilityChecker: can teacher T take slot/day for year Y? (availability.go)
  QuotaTracker:        hours assigned vs required (quota.go)
  Engine:              validated upsert of one lesson (engine.go)
  Reporter:            completion percentages, read-only (report.go)

NOT A SOLVER:
  The engine never searches or backtracks. It validates and commits one
  placement at a time. Global feasibility is the operator's problem.

USAGE:
  store := timetable.NewStore()
  ana, _ := store.AddTeacher("Ana", "Ruiz", timetable.NewDaySet(timetable.Monday, timetable.Wednesday))
  math, _ := store.AddSubject("Math", ana.ID)
  y1, _ := store.AddYear(1)
  store.AddYearSubject(y1.ID, math.ID, 4)

  engine := timetable.NewEngine(store)
  err := engine.Place(timetable.Cell{SlotID: "1", Day: timetable.Monday, YearID: y1.ID}, ana.ID, math.ID)

SEE ALSO:
  - errors.go: placement failure taxonomy
  - persist.go: persistence boundary
*/
package timetable

import (
	"fmt"
	"strings"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TeacherID string
type SubjectID string
type YearID string
type YearSubjectID string
type TimeSlotID string
type EntryID string

// =============================================================================
// WEEKDAYS
// =============================================================================

// Day is a weekday index, 0 = Monday through 4 = Friday.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

// DaysPerWeek is the number of teaching days in a week.
const DaysPerWeek = 5

var dayNames = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// Days returns the teaching weekdays in order.
func Days() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday}
}

func (d Day) Valid() bool { return d >= Monday && d <= Friday }

func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// DaySet is a set of weekdays. The zero value is the empty set, which is
// distinct from "all days": a teacher with an empty set is never available.
type DaySet uint8

// AllDays is the set of every teaching weekday.
const AllDays DaySet = 1<<DaysPerWeek - 1

func NewDaySet(days ...Day) DaySet {
	var s DaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// DaySetFromInts builds a set from raw indexes. Out of range values are
// reported as an error rather than dropped.
func DaySetFromInts(days []int) (DaySet, error) {
	var s DaySet
	for _, d := range days {
		if !Day(d).Valid() {
			return 0, fmt.Errorf("%w: day index %d", ErrInvalidDay, d)
		}
		s = s.With(Day(d))
	}
	return s, nil
}

func (s DaySet) With(d Day) DaySet {
	if !d.Valid() {
		return s
	}
	return s | 1<<uint(d)
}

func (s DaySet) Has(d Day) bool { return d.Valid() && s&(1<<uint(d)) != 0 }
func (s DaySet) IsEmpty() bool  { return s&AllDays == 0 }

// Days returns the members in weekday order.
func (s DaySet) Days() []Day {
	days := make([]Day, 0, DaysPerWeek)
	for _, d := range Days() {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// Ints returns the members as raw indexes, for serialization.
func (s DaySet) Ints() []int {
	out := make([]int, 0, DaysPerWeek)
	for _, d := range s.Days() {
		out = append(out, int(d))
	}
	return out
}

func (s DaySet) String() string {
	names := make([]string, 0, DaysPerWeek)
	for _, d := range s.Days() {
		names = append(names, d.String())
	}
	return strings.Join(names, ", ")
}

// =============================================================================
// TIME SLOTS - Fixed, not user-editable
// =============================================================================

type TimeSlot struct {
	ID    TimeSlotID
	Start string // "15:04"
	End   string
}

var timeSlots = []TimeSlot{
	{ID: "1", Start: "13:10", End: "14:10"},
	{ID: "2", Start: "14:10", End: "15:10"},
	{ID: "3", Start: "15:25", End: "16:25"},
	{ID: "4", Start: "16:35", End: "17:35"},
	{ID: "5", Start: "17:35", End: "18:35"},
}

// TimeSlots returns the five daily slots in order.
func TimeSlots() []TimeSlot {
	out := make([]TimeSlot, len(timeSlots))
	copy(out, timeSlots)
	return out
}

// LookupTimeSlot reports whether id names one of the fixed slots.
func LookupTimeSlot(id TimeSlotID) (TimeSlot, bool) {
	for _, ts := range timeSlots {
		if ts.ID == id {
			return ts, true
		}
	}
	return TimeSlot{}, false
}

// =============================================================================
// CELL - (slot, day, year) coordinate
// =============================================================================

// Cell is one timetable coordinate. It holds at most one lesson.
type Cell struct {
	SlotID TimeSlotID
	Day    Day
	YearID YearID
}

func (c Cell) String() string {
	return fmt.Sprintf("slot %s / %s / year %s", c.SlotID, c.Day, c.YearID)
}

// =============================================================================
// ENTITIES
// =============================================================================

type Teacher struct {
	ID            TeacherID
	GivenName     string
	FamilyName    string
	AvailableDays DaySet
}

// FullName is the display name used by name lookups.
func (t Teacher) FullName() string {
	return strings.TrimSpace(t.GivenName + " " + t.FamilyName)
}

// Subject is taught by exactly one responsible teacher.
type Subject struct {
	ID        SubjectID
	Name      string
	TeacherID TeacherID
}

type Year struct {
	ID    YearID
	Level int
}

// YearSubject says "subject X is taught in year Y for N lessons a week".
type YearSubject struct {
	ID            YearSubjectID
	YearID        YearID
	SubjectID     SubjectID
	HoursRequired int
}

// ScheduleEntry is one concrete lesson placement.
type ScheduleEntry struct {
	ID        EntryID
	SlotID    TimeSlotID
	Day       Day
	TeacherID TeacherID
	SubjectID SubjectID
	YearID    YearID
}

// Cell returns the coordinate the entry occupies.
func (e ScheduleEntry) Cell() Cell {
	return Cell{SlotID: e.SlotID, Day: e.Day, YearID: e.YearID}
}
