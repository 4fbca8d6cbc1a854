/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the timetable model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Teachers:     TeacherDTO, TeacherRequest
  Subjects:     SubjectDTO, SubjectRequest
  Years:        YearDTO, YearRequest, YearReportDTO, GridDTO
  Quotas:       YearSubjectDTO, CreateYearSubjectRequest, UpdateYearSubjectRequest
  Schedule:     EntryDTO, PlaceRequest, AvailabilityDTO
  Reference:    TimeSlotDTO, DayDTO
  Scenarios:    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Request types carry go-playground/validator tags, checked by decodeBody
  before the handler runs. Rules that depend on state (unique levels,
  existing owners, allocation rules) stay in the timetable package.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/school.go: SchoolJSON, used as-is for import/export
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/timetable-engine/timetable"
)

// =============================================================================
// TEACHERS
// =============================================================================

type TeacherDTO struct {
	ID            string   `json:"id"`
	GivenName     string   `json:"given_name"`
	FamilyName    string   `json:"family_name"`
	FullName      string   `json:"full_name"`
	AvailableDays []int    `json:"available_days"`
	DayNames      []string `json:"day_names"`
	LessonCount   int      `json:"lesson_count"`
}

// TeacherRequest creates or updates a teacher. Creation additionally needs
// at least one day; an update may clear them all.
type TeacherRequest struct {
	GivenName     string `json:"given_name" validate:"required,max=100"`
	FamilyName    string `json:"family_name" validate:"required,max=100"`
	AvailableDays []int  `json:"available_days" validate:"required,dive,min=0,max=4"`
}

// =============================================================================
// SUBJECTS
// =============================================================================

type SubjectDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
}

type SubjectRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	TeacherID string `json:"teacher_id" validate:"required"`
}

// =============================================================================
// YEARS
// =============================================================================

// YearDTO is a year with its summary line.
type YearDTO struct {
	ID            string `json:"id"`
	Level         int    `json:"level"`
	SubjectCount  int    `json:"subject_count"`
	HoursRequired int    `json:"hours_required"`
	HoursAssigned int    `json:"hours_assigned"`
}

type YearRequest struct {
	Level int `json:"level" validate:"required,min=1"`
}

type CompletionDTO struct {
	YearSubjectID string          `json:"year_subject_id,omitempty"`
	SubjectID     string          `json:"subject_id"`
	SubjectName   string          `json:"subject_name"`
	YearID        string          `json:"year_id"`
	Assigned      int             `json:"assigned"`
	Required      int             `json:"required"`
	IsComplete    bool            `json:"is_complete"`
	Percentage    decimal.Decimal `json:"percentage"`
}

type YearReportDTO struct {
	YearID        string          `json:"year_id"`
	Level         int             `json:"level"`
	SubjectCount  int             `json:"subject_count"`
	HoursRequired int             `json:"hours_required"`
	HoursAssigned int             `json:"hours_assigned"`
	CompleteCount int             `json:"complete_count"`
	Subjects      []CompletionDTO `json:"subjects"`
}

// GridDTO is one year's week: Rows[slot][day].
type GridDTO struct {
	YearID string          `json:"year_id"`
	Level  int             `json:"level"`
	Slots  []TimeSlotDTO   `json:"slots"`
	Days   []DayDTO        `json:"days"`
	Rows   [][]GridCellDTO `json:"rows"`
}

type GridCellDTO struct {
	SlotID string    `json:"slot_id"`
	Day    int       `json:"day"`
	Entry  *EntryDTO `json:"entry"`
}

// =============================================================================
// YEAR SUBJECTS
// =============================================================================

type YearSubjectDTO struct {
	ID            string `json:"id"`
	YearID        string `json:"year_id"`
	YearLevel     int    `json:"year_level"`
	SubjectID     string `json:"subject_id"`
	SubjectName   string `json:"subject_name"`
	HoursRequired int    `json:"hours_required"`
}

type CreateYearSubjectRequest struct {
	YearID        string `json:"year_id" validate:"required"`
	SubjectID     string `json:"subject_id" validate:"required"`
	HoursRequired int    `json:"hours_required" validate:"required,min=1"`
}

type UpdateYearSubjectRequest struct {
	HoursRequired int `json:"hours_required" validate:"required,min=1"`
}

// =============================================================================
// SCHEDULE
// =============================================================================

type EntryDTO struct {
	ID          string `json:"id"`
	SlotID      string `json:"slot_id"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Day         int    `json:"day"`
	DayName     string `json:"day_name"`
	YearID      string `json:"year_id"`
	YearLevel   int    `json:"year_level"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name"`
}

// PlaceRequest puts a lesson in a cell. Teacher and subject are checked by
// the engine, which reports a missing one as invalid input.
type PlaceRequest struct {
	SlotID    string `json:"slot_id" validate:"required,timeslot"`
	Day       *int   `json:"day" validate:"required,min=0,max=4"`
	YearID    string `json:"year_id" validate:"required"`
	TeacherID string `json:"teacher_id"`
	SubjectID string `json:"subject_id"`
}

type PlaceResponse struct {
	Entry EntryDTO `json:"entry"`
	// Replaced is the lesson that occupied the cell before, if any.
	Replaced *EntryDTO `json:"replaced,omitempty"`
}

type AvailabilityDTO struct {
	TeacherID string `json:"teacher_id"`
	SlotID    string `json:"slot_id"`
	Day       int    `json:"day"`
	YearID    string `json:"year_id"`
	Available bool   `json:"available"`
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

type TimeSlotDTO struct {
	ID    string `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type DayDTO struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	// Required is set on quota_exceeded.
	Required *int `json:"required,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toTeacherDTO(s *timetable.Store, t timetable.Teacher) TeacherDTO {
	days := t.AvailableDays.Days()
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return TeacherDTO{
		ID:            string(t.ID),
		GivenName:     t.GivenName,
		FamilyName:    t.FamilyName,
		FullName:      t.FullName(),
		AvailableDays: t.AvailableDays.Ints(),
		DayNames:      names,
		LessonCount:   s.TeacherLessonCount(t.ID),
	}
}

func toSubjectDTO(s *timetable.Store, sub timetable.Subject) SubjectDTO {
	return SubjectDTO{
		ID:          string(sub.ID),
		Name:        sub.Name,
		TeacherID:   string(sub.TeacherID),
		TeacherName: s.TeacherName(sub.TeacherID),
	}
}

func toYearSubjectDTO(s *timetable.Store, ys timetable.YearSubject) YearSubjectDTO {
	return YearSubjectDTO{
		ID:            string(ys.ID),
		YearID:        string(ys.YearID),
		YearLevel:     s.YearLevel(ys.YearID),
		SubjectID:     string(ys.SubjectID),
		SubjectName:   s.SubjectName(ys.SubjectID),
		HoursRequired: ys.HoursRequired,
	}
}

func toEntryDTO(s *timetable.Store, e timetable.ScheduleEntry) EntryDTO {
	dto := EntryDTO{
		ID:          string(e.ID),
		SlotID:      string(e.SlotID),
		Day:         int(e.Day),
		DayName:     e.Day.String(),
		YearID:      string(e.YearID),
		YearLevel:   s.YearLevel(e.YearID),
		TeacherID:   string(e.TeacherID),
		TeacherName: s.TeacherName(e.TeacherID),
		SubjectID:   string(e.SubjectID),
		SubjectName: s.SubjectName(e.SubjectID),
	}
	if ts, ok := timetable.LookupTimeSlot(e.SlotID); ok {
		dto.Start, dto.End = ts.Start, ts.End
	}
	return dto
}

func toCompletionDTO(s *timetable.Store, c timetable.Completion) CompletionDTO {
	dto := CompletionDTO{
		SubjectID:   string(c.SubjectID),
		SubjectName: s.SubjectName(c.SubjectID),
		YearID:      string(c.YearID),
		Assigned:    c.Assigned,
		Required:    c.Required,
		IsComplete:  c.IsComplete,
		Percentage:  c.Percentage,
	}
	for _, ys := range s.YearSubjectsFor(c.YearID) {
		if ys.SubjectID == c.SubjectID {
			dto.YearSubjectID = string(ys.ID)
		}
	}
	return dto
}

func toYearReportDTO(s *timetable.Store, sum timetable.YearSummary) YearReportDTO {
	subjects := make([]CompletionDTO, len(sum.Subjects))
	for i, c := range sum.Subjects {
		subjects[i] = toCompletionDTO(s, c)
	}
	return YearReportDTO{
		YearID:        string(sum.YearID),
		Level:         sum.Level,
		SubjectCount:  sum.SubjectCount,
		HoursRequired: sum.HoursRequired,
		HoursAssigned: sum.HoursAssigned,
		CompleteCount: sum.CompleteCount,
		Subjects:      subjects,
	}
}

func timeSlotDTOs() []TimeSlotDTO {
	slots := timetable.TimeSlots()
	out := make([]TimeSlotDTO, len(slots))
	for i, ts := range slots {
		out[i] = TimeSlotDTO{ID: string(ts.ID), Start: ts.Start, End: ts.End}
	}
	return out
}

func dayDTOs() []DayDTO {
	days := timetable.Days()
	out := make([]DayDTO, len(days))
	for i, d := range days {
		out[i] = DayDTO{Index: int(d), Name: d.String()}
	}
	return out
}
