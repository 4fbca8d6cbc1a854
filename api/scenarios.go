/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built schools that replace the current data for demos and
	manual testing. Each scenario is a factory preset built through the
	Store and the Engine, so it obeys every allocation rule.

AVAILABLE SCENARIOS:

	empty:        Nothing at all
	demo-school:  Three years, five teachers, a partly filled week
	conflicts:    A week where the obvious next placements break each rule

HOW SCENARIOS WORK:
 1. Build the preset into a scratch engine
 2. Swap the result into the Store (all collections dirty)
 3. Flush to the Persister

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "demo-school"}

ADDING NEW SCENARIOS:
 1. Add a preset to factory/presets.go
 2. Add it to 'scenarios' with ID, name, description and preset

NOTE:

	Scenarios replace all data. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Import, which shares rebuild
  - factory/presets.go: School JSON definitions
*/
package api

import (
	"net/http"

	"github.com/warp/timetable-engine/factory"
	"github.com/warp/timetable-engine/timetable"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	school func() string
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "empty",
			Name:        "Empty",
			Description: "No teachers, subjects or years",
		},
		school: func() string { return `{}` },
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "demo-school",
			Name:        "Demo School",
			Description: "Three years and five teachers with part of the week scheduled",
		},
		school: factory.DemoSchoolJSON,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "conflicts",
			Name:        "Conflicts",
			Description: "Availability, double booking and full quotas one click away",
		},
		school: factory.ConflictsSchoolJSON,
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any. Any
// edit after loading keeps the scenario id; an import or reset clears it.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.bulkMu.Lock()
	current := h.currentScenario
	h.bulkMu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	s, _ := findScenario(current)
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario replaces all data with a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.bulkMu.Lock()
	defer h.bulkMu.Unlock()

	_, err := h.rebuild(func(e *timetable.Engine) (*factory.Built, error) {
		sj, err := h.SchoolFactory.ParseSchool(s.school())
		if err != nil {
			return nil, err
		}
		return h.SchoolFactory.Build(sj, e)
	})
	if err != nil {
		h.requestLog(r).Error().Err(err).Str("scenario", s.ID).Msg("scenario failed to build")
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	h.currentScenario = s.ID
	if !h.flush(w, r) {
		return
	}

	h.log.Info().Str("scenario", s.ID).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": s.ID})
}

// ResetAll deletes everything.
func (h *Handler) ResetAll(w http.ResponseWriter, r *http.Request) {
	h.bulkMu.Lock()
	defer h.bulkMu.Unlock()

	h.Store.Reset()
	h.currentScenario = ""
	if !h.flush(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
