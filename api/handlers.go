/*
handlers.go - HTTP API handlers for the timetable engine

PURPOSE:
  Exposes the timetable engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the timetable package.

ENDPOINTS:
  Teachers:
    GET    /api/teachers                   List teachers
    POST   /api/teachers                   Create teacher
    GET    /api/teachers/{id}              Get teacher
    PUT    /api/teachers/{id}              Update names and available days
    DELETE /api/teachers/{id}              Delete teacher and their lessons
    GET    /api/teachers/{id}/subjects     Subjects the teacher owns

  Subjects:
    GET    /api/subjects                   List subjects
    POST   /api/subjects                   Create subject
    PUT    /api/subjects/{id}              Rename / change owner
    DELETE /api/subjects/{id}              Delete subject, quotas, lessons

  Years:
    GET    /api/years                      List years with summaries
    POST   /api/years                      Create year
    PUT    /api/years/{id}                 Change level
    DELETE /api/years/{id}                 Delete year, quotas, lessons
    GET    /api/years/{id}/subjects        Quotas of the year
    GET    /api/years/{id}/grid            Weekly grid
    GET    /api/years/{id}/report          Completion of every quota
    GET    /api/years/{id}/available-subjects?teacher_id=

  Quotas:
    POST   /api/year-subjects              Assign subject to year
    PUT    /api/year-subjects/{id}         Change hours
    DELETE /api/year-subjects/{id}         Remove quota and its lessons

  Schedule:
    POST   /api/schedule                   Place a lesson (upsert)
    DELETE /api/schedule/{id}              Remove a lesson
    GET    /api/schedule/availability      Can a teacher take a cell?
    GET    /api/completion                 Completion of one (subject, year)

  Reference:
    GET    /api/timeslots, /api/days

  Data:
    GET    /api/export                     Whole school as JSON
    POST   /api/import                     Replace everything with a school

PERSISTENCE:
  Every successful mutation flushes dirty collections to the Persister
  before responding. A failed flush answers 500; the change stays in memory
  and dirty, and the next flush (or the Autosaver) retries it.

ERROR HANDLING:
  Errors are returned as ErrorResponse with:
  - 400: Validation errors, invalid input, owner mismatch, any failed
         import (including two lessons in one cell)
  - 404: Unknown teacher, subject, year, quota
  - 409: Teacher conflict, quota exceeded, duplicate level or quota,
         hours below assigned
  - 500: Persistence failures

  POST /api/schedule answers 404 for an unknown year_id before the engine
  runs. The engine alone would report it as quota_exceeded, since a year
  that does not exist has no quotas; the API treats it as a bad reference
  instead.

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/warp/timetable-engine/factory"
	"github.com/warp/timetable-engine/timetable"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         *timetable.Store
	Engine        *timetable.Engine
	Reporter      timetable.Reporter
	Persister     timetable.Persister
	SchoolFactory *factory.SchoolFactory

	validate *validator.Validate
	log      zerolog.Logger

	// Serializes whole-store operations (scenario load, import) against
	// each other.
	bulkMu          sync.Mutex
	currentScenario string
}

func NewHandler(engine *timetable.Engine, persister timetable.Persister, log zerolog.Logger) *Handler {
	return &Handler{
		Store:         engine.Store,
		Engine:        engine,
		Reporter:      timetable.Reporter{Store: engine.Store},
		Persister:     persister,
		SchoolFactory: factory.NewSchoolFactory(),
		validate:      newValidator(),
		log:           log,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
		_, ok := timetable.LookupTimeSlot(timetable.TimeSlotID(fl.Field().String()))
		return ok
	})
	return v
}

// =============================================================================
// TEACHER HANDLERS
// =============================================================================

func (h *Handler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers := h.Store.Teachers()
	dtos := make([]TeacherDTO, len(teachers))
	for i, t := range teachers {
		dtos[i] = toTeacherDTO(h.Store, t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetTeacher(w http.ResponseWriter, r *http.Request) {
	t, ok := h.Store.Teacher(timetable.TeacherID(chi.URLParam(r, "id")))
	if !ok {
		writeError(w, http.StatusNotFound, "Teacher not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toTeacherDTO(h.Store, t))
}

func (h *Handler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req TeacherRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	days, err := timetable.DaySetFromInts(req.AvailableDays)
	if err != nil {
		h.handleError(w, r, "Invalid available days", err)
		return
	}
	t, err := h.Store.AddTeacher(req.GivenName, req.FamilyName, days)
	if err != nil {
		h.handleError(w, r, "Failed to create teacher", err)
		return
	}
	if !h.flush(w, r) {
		return
	}
	writeJSON(w, http.StatusCreated, toTeacherDTO(h.Store, t))
}

func (h *Handler) UpdateTeacher(w http.ResponseWriter, r *http.Request) {
	var req TeacherRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	days, err := timetable.DaySetFromInts(req.AvailableDays)
	if err != nil {
		h.handleError(w, r, "Invalid available days", err)
		return
	}
	t, err := h.Store.UpdateTeacher(timetable.TeacherID(chi.URLParam(r, "id")), req.GivenName, req.FamilyName, days)
	if err != nil {
		h.handleError(w, r, "Failed to update teacher", err)
		return
	}
	if !h.flush(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, toTeacherDTO(h.Store, t))
}

func (h *Handler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	id := timetable.TeacherID(chi.URLParam(r, "id"))
	if _, ok := h.Store.Teacher(id); !ok {
		writeError(w, http.StatusNotFound, "Teacher not found", nil)
		return
	}
	h.Store.DeleteTeacher(id)
	if !h.flush(w, r) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListTeacherSubjects(w http.ResponseWriter, r *http.Request) {
	id := timetable.TeacherID(chi.URLParam(r, "id"))
	if _, ok := h.Store.Teacher(id); !ok {
		writeError(w, http.StatusNotFound, "Teacher not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.subjectDTOs(h.Store.SubjectsOwnedBy(id)))
}

// =============================================================================
// SUBJECT HANDLERS
// =============================================================================

func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.subjectDTOs(h.Store.Subjects()))
}

func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req SubjectRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	sub, err := h.Store.AddSubject(req.Name, timetable.TeacherID(req.TeacherID))
	if err != nil {
		h.handleError(w, r, "Failed to create subject", err)
		return
	}
	if !h.flush(w, r) {
		return
	}
	writeJSON(w, http.StatusCreated, toSubjectDTO(h.Store, sub))
}

func (h *Handler) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	var req SubjectRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	sub, err := h.Store.UpdateSubject(timetable.SubjectID(chi.URLParam(r, "id")), req.Name, timetable.TeacherID(req.TeacherID))
	if err != nil {
		h.handleError(w, r, "Failed to update subject", err)
		return
	}
	if !h.flush(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, toSubjectDTO(h.Store, sub))
}

func (h *Handler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	id := timetable.SubjectID(chi.URLParam(r, "id"))
	if _, ok := h.Store.Subject(id); !ok {
		writeError(w, http.StatusNotFound, "Subject not found", nil)
		return
	}
	h.Store.DeleteSubject(id)
	if !h.flush(w, r) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) subjectDTOs(subjects []timetable.Subject) []SubjectDTO {
	dtos := make([]SubjectDTO, len(subjects))
	for i, s := range subjects {
		dtos[i] = toSubjectDTO(h.Store, s)
	}
	return dtos
}

// =============================================================================
// YEAR HANDLERS
// =============================================================================

func (h *Handler) ListYears(w http.ResponseWriter, r *http.Request) {
	report := h.Reporter.Report()
	dtos := make([]YearDTO, len(report))
	for i, sum := range report {
		dtos[i] = YearDTO{
			ID:            string(sum.YearID),
			Level:         sum.Level,
			SubjectCount:  sum.SubjectCount,
			HoursRequired: sum.HoursRequired,
			HoursAssigned: sum.HoursAssigned,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateYear(w http.ResponseWriter, r *http.Request) {
	var req YearRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	y, err := h.Store.AddYear(req.Level)
	if err != nil {
		h.handleError(w, r, "Failed to create year", err)
		return
	}
	if !h.flush(w, r) {
		return
	}
	writeJSON(w, http.StatusCreated, YearDTO{ID: string(y.ID), Level: y.Level})
}

func (h *Handler) UpdateYear(w http.ResponseWriter, r *http.Request) {
	var req YearRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	y, err := h.Store.UpdateYear(timetable.YearID(chi.URLParam(r, "id")), req.Level)
	if err != nil {
		h.handleError(w, r, "Failed to update year", err)
		return
	}
	if !h.flush(w, r) {
		return
	}
	sum := h.Reporter.YearReport(y.ID)
	writeJSON(w, http.StatusOK, YearDTO{
		ID:            string(y.ID),
		Level:         y.Level,
		SubjectCount:  sum.SubjectCount,
		HoursRequired: sum.HoursRequired,
		HoursAssigned: sum.HoursAssigned,
	})
}

func (h *Handler) DeleteYear(w http.ResponseWriter, r *http.Request) {
	id := timetable.YearID(chi.URLParam(r, "id"))
	if _, ok := h.Store.Year(id); !ok {
		writeError(w, http.StatusNotFound, "Year not found", nil)
		return
	}
	h.Store.DeleteYear(id)
	if !h.flush(w, r) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListYearSubjects(w http.ResponseWriter, r *http.Request) {
	y, ok := h.yearParam(w, r)
	if !ok {
		return
	}
	list := h.Store.YearSubjectsFor(y.ID)
	dtos := make([]YearSubjectDTO, len(list))
	for i, ys := range list {
		dtos[i] = toYearSubjectDTO(h.Store, ys)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetYearGrid(w http.ResponseWriter, r *http.Request) {
	y, ok := h.yearParam(w, r)
	if !ok {
		return
	}
	grid := h.Store.YearGrid(y.ID)
	rows := make([][]GridCellDTO, len(grid))
	for i, row := range grid {
		rows[i] = make([]GridCellDTO, len(row))
		for j, gc := range row {
			cell := GridCellDTO{SlotID: string(gc.Cell.SlotID), Day: int(gc.Cell.Day)}
			if gc.Entry != nil {
				e := toEntryDTO(h.Store, *gc.Entry)
				cell.Entry = &e
			}
			rows[i][j] = cell
		}
	}
	writeJSON(w, http.StatusOK, GridDTO{
		YearID: string(y.ID),
		Level:  y.Level,
		Slots:  timeSlotDTOs(),
		Days:   dayDTOs(),
		Rows:   rows,
	})
}

func (h *Handler) GetYearReport(w http.ResponseWriter, r *http.Request) {
	y, ok := h.yearParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toYearReportDTO(h.Store, h.Reporter.YearReport(y.ID)))
}

// ListAvailableSubjects returns the subjects of the year owned by teacher_id.
func (h *Handler) ListAvailableSubjects(w http.ResponseWriter, r *http.Request) {
	y, ok := h.yearParam(w, r)
	if !ok {
		return
	}
	teacherID := r.URL.Query().Get("teacher_id")
	if teacherID == "" {
		writeError(w, http.StatusBadRequest, "teacher_id is required", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.subjectDTOs(h.Store.SubjectsAvailableFor(timetable.TeacherID(teacherID), y.ID)))
}

func (h *Handler) yearParam(w http.ResponseWriter, r *http.Request) (timetable.Year, bool) {
	y, ok := h.Store.Year(timetable.YearID(chi.URLParam(r, "id")))
	if !ok {
		writeError(w, http.StatusNotFound, "Year not found", nil)
	}
	return y, ok
}

// =============================================================================
// YEAR SUBJECT HANDLERS
// =============================================================================

func (h *Handler) CreateYearSubject(w http.ResponseWriter, r *http.Request) {
	var req CreateYearSubjectRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	ys, err := h.Store.AddYearSubject(timetable.YearID(req.YearID), timetable.SubjectID(req.SubjectID), req.HoursRequired)
	if err != nil {
		h.handleError(w, r, "Failed to assign subject", err)
		return
	}
	if !h.flush(w, r) {
		return
	}
	writeJSON(w, http.StatusCreated, toYearSubjectDTO(h.Store, ys))
}

func (h *Handler) UpdateYearSubject(w http.ResponseWriter, r *http.Request) {
	var req UpdateYearSubjectRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	ys, err := h.Store.UpdateYearSubjectHours(timetable.YearSubjectID(chi.URLParam(r, "id")), req.HoursRequired)
	if err != nil {
		h.handleError(w, r, "Failed to update hours", err)
		return
	}
	if !h.flush(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, toYearSubjectDTO(h.Store, ys))
}

func (h *Handler) DeleteYearSubject(w http.ResponseWriter, r *http.Request) {
	id := timetable.YearSubjectID(chi.URLParam(r, "id"))
	if _, ok := h.Store.YearSubject(id); !ok {
		writeError(w, http.StatusNotFound, "Year subject not found", nil)
		return
	}
	h.Store.DeleteYearSubject(id)
	if !h.flush(w, r) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// PlaceLesson validates and commits one lesson, replacing the cell's
// occupant.
// POST /api/schedule
func (h *Handler) PlaceLesson(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	cell := timetable.Cell{
		SlotID: timetable.TimeSlotID(req.SlotID),
		Day:    timetable.Day(*req.Day),
		YearID: timetable.YearID(req.YearID),
	}
	// Unknown year is a bad reference here, not a quota failure
	if _, ok := h.Store.Year(cell.YearID); !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Year not found", Code: "not_found"})
		return
	}

	previous, occupied := h.Store.EntryAt(cell)
	var prevDTO *EntryDTO
	if occupied {
		// Names resolved before the occupant disappears
		d := toEntryDTO(h.Store, previous)
		prevDTO = &d
	}

	entry, err := h.Engine.PlaceEntry(cell, timetable.TeacherID(req.TeacherID), timetable.SubjectID(req.SubjectID))
	if err != nil {
		h.handleError(w, r, "Placement rejected", err)
		return
	}
	if !h.flush(w, r) {
		return
	}

	resp := PlaceResponse{Entry: toEntryDTO(h.Store, entry)}
	// Another request may have replaced the occupant in between; only report
	// it when it was actually ours to replace.
	if prevDTO != nil && prevDTO.ID != resp.Entry.ID {
		if _, still := h.Store.Entry(previous.ID); !still {
			resp.Replaced = prevDTO
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

// RemoveLesson deletes one lesson. Unknown ids answer 204 as well.
// DELETE /api/schedule/{id}
func (h *Handler) RemoveLesson(w http.ResponseWriter, r *http.Request) {
	h.Engine.Remove(timetable.EntryID(chi.URLParam(r, "id")))
	if !h.flush(w, r) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckAvailability reports whether a teacher could take a cell.
// GET /api/schedule/availability?teacher_id=&slot_id=&day=&year_id=
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	teacherID, slotID, yearID := q.Get("teacher_id"), q.Get("slot_id"), q.Get("year_id")
	if teacherID == "" || yearID == "" {
		writeError(w, http.StatusBadRequest, "teacher_id and year_id are required", nil)
		return
	}
	if _, ok := timetable.LookupTimeSlot(timetable.TimeSlotID(slotID)); !ok {
		writeError(w, http.StatusBadRequest, "Invalid slot_id", nil)
		return
	}
	day, err := parseDay(q.Get("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid day", err)
		return
	}

	available := h.Engine.Availability.IsAvailable(
		timetable.TeacherID(teacherID), timetable.TimeSlotID(slotID), day, timetable.YearID(yearID))
	writeJSON(w, http.StatusOK, AvailabilityDTO{
		TeacherID: teacherID,
		SlotID:    slotID,
		Day:       int(day),
		YearID:    yearID,
		Available: available,
	})
}

// ListAvailableTeachers returns the teachers who could take a cell.
// GET /api/schedule/available-teachers?slot_id=&day=&year_id=
func (h *Handler) ListAvailableTeachers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if _, ok := timetable.LookupTimeSlot(timetable.TimeSlotID(q.Get("slot_id"))); !ok {
		writeError(w, http.StatusBadRequest, "Invalid slot_id", nil)
		return
	}
	day, err := parseDay(q.Get("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid day", err)
		return
	}
	cell := timetable.Cell{SlotID: timetable.TimeSlotID(q.Get("slot_id")), Day: day, YearID: timetable.YearID(q.Get("year_id"))}

	teachers := h.Engine.Availability.AvailableTeachers(cell)
	dtos := make([]TeacherDTO, len(teachers))
	for i, t := range teachers {
		dtos[i] = toTeacherDTO(h.Store, t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCompletion reports one subject's progress toward its quota in a year.
// GET /api/completion?subject_id=&year_id=
func (h *Handler) GetCompletion(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	subjectID, yearID := q.Get("subject_id"), q.Get("year_id")
	if subjectID == "" || yearID == "" {
		writeError(w, http.StatusBadRequest, "subject_id and year_id are required", nil)
		return
	}
	c := h.Reporter.Completion(timetable.SubjectID(subjectID), timetable.YearID(yearID))
	writeJSON(w, http.StatusOK, toCompletionDTO(h.Store, c))
}

func parseDay(raw string) (timetable.Day, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("day must be an integer 0-4: %w", err)
	}
	d := timetable.Day(n)
	if !d.Valid() {
		return 0, fmt.Errorf("%w: day index %d", timetable.ErrInvalidDay, n)
	}
	return d, nil
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

func (h *Handler) ListTimeSlots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, timeSlotDTOs())
}

func (h *Handler) ListDays(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dayDTOs())
}

// =============================================================================
// IMPORT / EXPORT
// =============================================================================

// Export returns the whole school in the factory's JSON shape.
// GET /api/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.SchoolFactory.ToJSON(h.Store))
}

// Import replaces everything with the posted school. Lessons come back as
// stored, without the placement rules, so any export re-imports. If the
// school does not build, nothing changes.
// POST /api/import
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var sj factory.SchoolJSON
	if err := json.NewDecoder(r.Body).Decode(&sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.bulkMu.Lock()
	defer h.bulkMu.Unlock()

	built, err := h.rebuild(func(e *timetable.Engine) (*factory.Built, error) { return h.SchoolFactory.Restore(sj, e.Store) })
	if err != nil {
		// Any build failure is a fault in the document
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Import failed", Code: errorCode(err), Details: err.Error()})
		return
	}
	h.currentScenario = ""
	if !h.flush(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"teachers": len(built.Teachers),
		"subjects": len(built.Subjects),
		"years":    len(built.Years),
		"lessons":  len(built.Lessons),
	})
}

// rebuild runs build against an empty scratch engine and, if it succeeds,
// swaps the result into the Store. A failed build leaves the Store as it
// was. Callers hold bulkMu.
func (h *Handler) rebuild(build func(*timetable.Engine) (*factory.Built, error)) (*factory.Built, error) {
	scratch := timetable.NewEngine(timetable.NewStore())
	scratch.StrictOwnership = h.Engine.StrictOwnership

	built, err := build(scratch)
	if err != nil {
		return nil, err
	}
	h.Store.Replace(scratch.Store.Snapshot())
	return built, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// decodeBody decodes and validates a JSON body, answering 400 itself on
// failure.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		resp := ErrorResponse{Error: "Validation failed", Code: "validation_failed", Details: err.Error()}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			resp.Details = formatValidationError(verrs[0])
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return false
	}
	return true
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "timeslot":
		return e.Field() + " is not a known time slot"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

// flush saves dirty collections, answering 500 itself on failure.
func (h *Handler) flush(w http.ResponseWriter, r *http.Request) bool {
	if h.Persister == nil {
		return true
	}
	if err := h.Store.Flush(r.Context(), h.Persister); err != nil {
		h.requestLog(r).Error().Err(err).Msg("flush failed")
		writeError(w, http.StatusInternalServerError, "Failed to save changes", err)
		return false
	}
	return true
}

// handleError maps timetable errors to HTTP statuses.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, message string, err error) {
	resp := ErrorResponse{Error: message, Code: errorCode(err), Details: err.Error()}
	var perr *timetable.PlacementError
	if errors.As(err, &perr) && errors.Is(err, timetable.ErrQuotaExceeded) {
		required := perr.Required
		resp.Required = &required
	}

	status := http.StatusInternalServerError
	switch {
	case timetable.IsNotFound(err):
		status = http.StatusNotFound
	case timetable.IsConflict(err):
		status = http.StatusConflict
	case timetable.IsClientError(err):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.requestLog(r).Error().Err(err).Msg(message)
	}
	writeJSON(w, status, resp)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, timetable.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, timetable.ErrTeacherConflict):
		return "teacher_conflict"
	case errors.Is(err, timetable.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, timetable.ErrOwnerMismatch):
		return "owner_mismatch"
	case errors.Is(err, timetable.ErrHoursBelowAssigned):
		return "hours_below_assigned"
	case errors.Is(err, timetable.ErrDuplicateLevel), errors.Is(err, timetable.ErrDuplicateYearSubject):
		return "duplicate"
	case errors.Is(err, timetable.ErrCellOccupied):
		return "cell_occupied"
	case timetable.IsNotFound(err):
		return "not_found"
	case timetable.IsClientError(err):
		return "invalid"
	default:
		return ""
	}
}

func (h *Handler) requestLog(r *http.Request) *zerolog.Logger {
	l := h.log.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()
	return &l
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
