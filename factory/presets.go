package factory

// =============================================================================
// PRESET SCHOOLS
// =============================================================================

// DemoSchoolJSON is a small three-year school with a partly filled week.
func DemoSchoolJSON() string {
	return `{
  "name": "Demo School",
  "teachers": [
    {"key": "ana",  "given_name": "Ana",  "family_name": "Ruiz"},
    {"key": "leo",  "given_name": "Leo",  "family_name": "Marsh",  "available_days": [0, 1]},
    {"key": "mia",  "given_name": "Mia",  "family_name": "Lopez",  "available_days": [2, 3, 4]},
    {"key": "sam",  "given_name": "Sam",  "family_name": "Okafor"},
    {"key": "iris", "given_name": "Iris", "family_name": "Novak",  "available_days": [0, 2, 4]}
  ],
  "subjects": [
    {"key": "math",      "name": "Mathematics", "teacher": "ana"},
    {"key": "physics",   "name": "Physics",     "teacher": "leo"},
    {"key": "chemistry", "name": "Chemistry",   "teacher": "leo"},
    {"key": "biology",   "name": "Biology",     "teacher": "mia"},
    {"key": "english",   "name": "English",     "teacher": "sam"},
    {"key": "history",   "name": "History",     "teacher": "iris"}
  ],
  "years": [
    {"key": "y1", "level": 1},
    {"key": "y2", "level": 2},
    {"key": "y3", "level": 3}
  ],
  "year_subjects": [
    {"year": "y1", "subject": "math",      "hours": 4},
    {"year": "y1", "subject": "english",   "hours": 3},
    {"year": "y1", "subject": "biology",   "hours": 2},
    {"year": "y1", "subject": "history",   "hours": 2},
    {"year": "y2", "subject": "math",      "hours": 3},
    {"year": "y2", "subject": "physics",   "hours": 2},
    {"year": "y2", "subject": "english",   "hours": 3},
    {"year": "y3", "subject": "math",      "hours": 3},
    {"year": "y3", "subject": "chemistry", "hours": 2},
    {"year": "y3", "subject": "physics",   "hours": 2},
    {"year": "y3", "subject": "biology",   "hours": 2}
  ],
  "lessons": [
    {"year": "y1", "slot": "1", "day": 0, "teacher": "ana",  "subject": "math"},
    {"year": "y1", "slot": "1", "day": 1, "teacher": "ana",  "subject": "math"},
    {"year": "y1", "slot": "2", "day": 0, "teacher": "sam",  "subject": "english"},
    {"year": "y1", "slot": "3", "day": 2, "teacher": "mia",  "subject": "biology"},
    {"year": "y1", "slot": "4", "day": 4, "teacher": "iris", "subject": "history"},
    {"year": "y2", "slot": "2", "day": 1, "teacher": "ana",  "subject": "math"},
    {"year": "y2", "slot": "1", "day": 0, "teacher": "leo",  "subject": "physics"},
    {"year": "y2", "slot": "3", "day": 0, "teacher": "sam",  "subject": "english"},
    {"year": "y3", "slot": "2", "day": 0, "teacher": "leo",  "subject": "chemistry"},
    {"year": "y3", "slot": "4", "day": 3, "teacher": "mia",  "subject": "biology"},
    {"year": "y3", "slot": "5", "day": 2, "teacher": "ana",  "subject": "math"}
  ]
}`
}

// ConflictsSchoolJSON sets up a week where the next obvious placements
// run into every allocation rule:
//   - Ana on a Tuesday (she works Monday, Wednesday, Friday)
//   - a third Math hour in year 1 (quota 2, both placed)
//   - Leo in year 2 at slot 2 on Tuesday (he teaches year 1 then)
//   - anything at slot 3 on Wednesday in year 1 replaces Mia's Biology
func ConflictsSchoolJSON() string {
	return `{
  "name": "Conflicts",
  "teachers": [
    {"key": "ana", "given_name": "Ana", "family_name": "Ruiz",  "available_days": [0, 2, 4]},
    {"key": "leo", "given_name": "Leo", "family_name": "Marsh"},
    {"key": "mia", "given_name": "Mia", "family_name": "Lopez"}
  ],
  "subjects": [
    {"key": "math",      "name": "Mathematics", "teacher": "ana"},
    {"key": "physics",   "name": "Physics",     "teacher": "leo"},
    {"key": "chemistry", "name": "Chemistry",   "teacher": "leo"},
    {"key": "biology",   "name": "Biology",     "teacher": "mia"}
  ],
  "years": [
    {"key": "y1", "level": 1},
    {"key": "y2", "level": 2}
  ],
  "year_subjects": [
    {"year": "y1", "subject": "math",      "hours": 2},
    {"year": "y1", "subject": "physics",   "hours": 3},
    {"year": "y1", "subject": "biology",   "hours": 3},
    {"year": "y2", "subject": "chemistry", "hours": 3}
  ],
  "lessons": [
    {"year": "y1", "slot": "1", "day": 0, "teacher": "ana", "subject": "math"},
    {"year": "y1", "slot": "2", "day": 0, "teacher": "ana", "subject": "math"},
    {"year": "y1", "slot": "2", "day": 1, "teacher": "leo", "subject": "physics"},
    {"year": "y1", "slot": "3", "day": 2, "teacher": "mia", "subject": "biology"}
  ]
}`
}
