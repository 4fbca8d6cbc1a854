/*
report.go - Report Projector: per-(year, subject) completion

PURPOSE:
  Answers "how much of its weekly quota does this subject have in this
  year?" Purely derived from the Store; never mutates.

PERCENTAGE:
  percentage = min(100, 100 * assigned / required), rounded to 2 places.
  Decimal arithmetic keeps thirds and sixths from drifting.

  When the pair has no quota (required = 0) the subject cannot be scheduled
  at all, so the pair is reported complete at 100%.

SEE ALSO:
  - quota.go: assignedHours
*/
package timetable

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Completion is the progress of one subject toward its quota in one year.
// Percentage is 100*Assigned/Required capped at 100 and rounded to two
// decimal places, so one of three hours reads 33.33, not the exact ratio.
// A pair with no required hours reads 100.
type Completion struct {
	SubjectID  SubjectID
	YearID     YearID
	Assigned   int
	Required   int
	IsComplete bool
	Percentage decimal.Decimal // 0..100
}

// YearSummary is the header line of a year in the report.
type YearSummary struct {
	YearID        YearID
	Level         int
	SubjectCount  int
	HoursRequired int
	HoursAssigned int
	CompleteCount int
	Subjects      []Completion
}

type Reporter struct {
	Store *Store
}

func (r Reporter) Completion(subjectID SubjectID, yearID YearID) Completion {
	r.Store.mu.RLock()
	defer r.Store.mu.RUnlock()
	return completion(&r.Store.st, subjectID, yearID)
}

// YearReport lists the completion of every subject assigned to a year, in
// assignment order. Unknown years yield an empty summary with Level 0.
func (r Reporter) YearReport(yearID YearID) YearSummary {
	r.Store.mu.RLock()
	defer r.Store.mu.RUnlock()
	return yearReport(&r.Store.st, yearID)
}

// Report summarises every year, in store order.
func (r Reporter) Report() []YearSummary {
	r.Store.mu.RLock()
	defer r.Store.mu.RUnlock()

	out := make([]YearSummary, 0, len(r.Store.st.years))
	for _, y := range r.Store.st.years {
		out = append(out, yearReport(&r.Store.st, y.ID))
	}
	return out
}

func yearReport(st *state, yearID YearID) YearSummary {
	sum := YearSummary{YearID: yearID, Subjects: []Completion{}}
	if i := st.yearIndex(yearID); i >= 0 {
		sum.Level = st.years[i].Level
	}
	for _, ys := range st.yearSubjects {
		if ys.YearID != yearID {
			continue
		}
		c := completion(st, ys.SubjectID, yearID)
		sum.Subjects = append(sum.Subjects, c)
		sum.SubjectCount++
		sum.HoursRequired += c.Required
		sum.HoursAssigned += c.Assigned
		if c.IsComplete {
			sum.CompleteCount++
		}
	}
	return sum
}

func completion(st *state, subjectID SubjectID, yearID YearID) Completion {
	assigned := assignedHours(st, subjectID, yearID)
	required := 0
	if ys, ok := st.yearSubjectFor(subjectID, yearID); ok {
		required = ys.HoursRequired
	}
	return Completion{
		SubjectID:  subjectID,
		YearID:     yearID,
		Assigned:   assigned,
		Required:   required,
		IsComplete: assigned >= required,
		Percentage: percentage(assigned, required),
	}
}

func percentage(assigned, required int) decimal.Decimal {
	if required <= 0 {
		return hundred
	}
	p := decimal.NewFromInt(int64(assigned)).Mul(hundred).Div(decimal.NewFromInt(int64(required)))
	return decimal.Min(p, hundred).Round(2)
}
