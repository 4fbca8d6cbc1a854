/*
errors.go - Centralized error types for the timetable engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every failure here is a recoverable validation failure. Nothing in the
  engine fails for internal reasons: there is no I/O and no parsing.

ERROR CATEGORIES:
  1. Placement errors - the three allocation rules (plus the opt-in owner check)
  2. Entity errors    - invalid or duplicate input on add/update
  3. Lookup errors    - referenced entity does not exist

PLACEMENT TAXONOMY:
  ErrInvalidInput    missing teacher or subject reference
  ErrTeacherConflict teacher unavailable that day, or booked elsewhere
  ErrQuotaExceeded   subject already has its required hours in that year
  ErrOwnerMismatch   teacher is not the subject's owner (StrictOwnership only)

USAGE:
  err := engine.Place(cell, teacherID, subjectID)
  var perr *timetable.PlacementError
  if errors.As(err, &perr) && errors.Is(err, timetable.ErrQuotaExceeded) {
      fmt.Println("quota of", perr.Required, "reached")
  }

SEE ALSO:
  - engine.go: returns PlacementError
  - api/handlers.go: maps these errors to HTTP status codes
*/
package timetable

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned when a placement lacks a teacher or subject.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTeacherConflict is returned when the teacher is not available on the
	// day, or already teaches another year at the same slot and day.
	ErrTeacherConflict = errors.New("teacher conflict")

	// ErrQuotaExceeded is returned when the subject already has all of its
	// required weekly hours in the year, or is not assigned to the year.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrOwnerMismatch is returned by engines with StrictOwnership when the
	// teacher is not the subject's responsible teacher.
	ErrOwnerMismatch = errors.New("teacher does not own subject")
)

var (
	ErrEmptyName            = errors.New("name is required")
	ErrNoAvailableDays      = errors.New("at least one available day is required")
	ErrInvalidDay           = errors.New("invalid day")
	ErrInvalidLevel         = errors.New("year level must be a positive integer")
	ErrDuplicateLevel       = errors.New("year level already exists")
	ErrInvalidHours         = errors.New("hours required must be a positive integer")
	ErrDuplicateYearSubject = errors.New("subject already assigned to year")
	ErrHoursBelowAssigned   = errors.New("hours required below hours already scheduled")
	ErrCellOccupied         = errors.New("cell already holds a lesson")
)

var (
	ErrNotFound        = errors.New("not found")
	ErrTeacherNotFound = fmt.Errorf("teacher %w", ErrNotFound)
	ErrSubjectNotFound = fmt.Errorf("subject %w", ErrNotFound)
	ErrYearNotFound    = fmt.Errorf("year %w", ErrNotFound)
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PlacementError reports why a lesson could not be placed. Kind is one of
// the placement sentinels; Required is set for ErrQuotaExceeded.
type PlacementError struct {
	Kind      error
	Cell      Cell
	TeacherID TeacherID
	SubjectID SubjectID
	Required  int
}

func (e *PlacementError) Error() string {
	switch e.Kind {
	case ErrInvalidInput:
		return "invalid input: teacher and subject are required"
	case ErrTeacherConflict:
		return fmt.Sprintf("teacher conflict: teacher %s is unavailable or already assigned to another year at %s",
			e.TeacherID, e.Cell)
	case ErrQuotaExceeded:
		return fmt.Sprintf("quota exceeded: subject %s already has its %d required hours in year %s",
			e.SubjectID, e.Required, e.Cell.YearID)
	case ErrOwnerMismatch:
		return fmt.Sprintf("teacher %s does not own subject %s", e.TeacherID, e.SubjectID)
	default:
		return fmt.Sprintf("placement failed at %s", e.Cell)
	}
}

func (e *PlacementError) Unwrap() error {
	return e.Kind
}

// HoursBelowAssignedError is returned when a quota is lowered under the number
// of lessons already scheduled for the pair.
type HoursBelowAssignedError struct {
	YearSubjectID YearSubjectID
	Requested     int
	Assigned      int
}

func (e *HoursBelowAssignedError) Error() string {
	return fmt.Sprintf("cannot set hours to %d: %d lessons already scheduled", e.Requested, e.Assigned)
}

func (e *HoursBelowAssignedError) Unwrap() error {
	return ErrHoursBelowAssigned
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsPlacementError returns true for any of the placement rule failures.
func IsPlacementError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrTeacherConflict) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrOwnerMismatch)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return IsPlacementError(err) ||
		errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrNoAvailableDays) ||
		errors.Is(err, ErrInvalidDay) ||
		errors.Is(err, ErrInvalidLevel) ||
		errors.Is(err, ErrDuplicateLevel) ||
		errors.Is(err, ErrInvalidHours) ||
		errors.Is(err, ErrDuplicateYearSubject) ||
		errors.Is(err, ErrHoursBelowAssigned) ||
		errors.Is(err, ErrCellOccupied)
}

// IsConflict returns true if the request clashes with existing state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrTeacherConflict) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrDuplicateLevel) ||
		errors.Is(err, ErrDuplicateYearSubject) ||
		errors.Is(err, ErrHoursBelowAssigned) ||
		errors.Is(err, ErrCellOccupied)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
