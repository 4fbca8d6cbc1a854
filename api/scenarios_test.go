package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timetable-engine/timetable"
	"github.com/warp/timetable-engine/timetable/store"
)

func TestListScenarios(t *testing.T) {
	ts := newServer(t, store.NewMemory())

	got := decode[[]ScenarioDTO](t, ts.do(t, http.MethodGet, "/api/scenarios", nil))

	ids := make([]string, len(got))
	for i, s := range got {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"empty", "demo-school", "conflicts"}, ids)
}

func TestLoadScenario_EveryScenarioLoads(t *testing.T) {
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			ts, db := newSQLiteServer(t)

			rec := ts.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: s.ID})

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Empty(t, ts.h.Store.Dirty())
			snap, err := db.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, ts.h.Store.Snapshot(), snap)

			current := decode[ScenarioDTO](t, ts.do(t, http.MethodGet, "/api/scenarios/current", nil))
			assert.Equal(t, s.ID, current.ID)
		})
	}
}

func TestLoadScenario_ReplacesExistingData(t *testing.T) {
	// GIVEN: A server with hand-made data
	ts := newServer(t, store.NewMemory())
	ts.school(t, 2)

	// WHEN: Loading the conflicts scenario
	rec := ts.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "conflicts"})

	// THEN: Only the scenario's data is left
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, ts.h.Store.Teachers(), 3)
	assert.Len(t, ts.h.Store.Years(), 2)
	assert.Len(t, ts.h.Store.ScheduleEntries(), 4)
}

func TestLoadScenario_ConflictsRejectsNextPlacements(t *testing.T) {
	ts := newServer(t, store.NewMemory())
	rec := ts.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "conflicts"})
	require.Equal(t, http.StatusOK, rec.Code)

	ids := func() (ana, math, y1 string) {
		for _, tc := range ts.h.Store.Teachers() {
			if tc.GivenName == "Ana" {
				ana = string(tc.ID)
			}
		}
		for _, s := range ts.h.Store.Subjects() {
			if s.Name == "Mathematics" {
				math = string(s.ID)
			}
		}
		for _, y := range ts.h.Store.Years() {
			if y.Level == 1 {
				y1 = string(y.ID)
			}
		}
		return
	}
	ana, math, y1 := ids()

	// Ana does not work on Tuesdays
	rec = ts.do(t, http.MethodPost, "/api/schedule", place("4", int(timetable.Tuesday), y1, ana, math))
	assert.Equal(t, "teacher_conflict", decode[ErrorResponse](t, rec).Code)

	// Both Math hours of year 1 are placed
	rec = ts.do(t, http.MethodPost, "/api/schedule", place("3", int(timetable.Monday), y1, ana, math))
	assert.Equal(t, "quota_exceeded", decode[ErrorResponse](t, rec).Code)
}

func TestLoadScenario_Unknown(t *testing.T) {
	ts := newServer(t, store.NewMemory())

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/scenarios/load", `{}`).Code)
}

func TestCurrentScenario_NoneLoaded(t *testing.T) {
	ts := newServer(t, store.NewMemory())

	rec := ts.do(t, http.MethodGet, "/api/scenarios/current", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", rec.Body.String())
}

func TestResetAll(t *testing.T) {
	mem := store.NewMemory()
	ts := newServer(t, mem)
	ts.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "demo-school"})

	rec := ts.do(t, http.MethodPost, "/api/scenarios/reset", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, ts.h.Store.Teachers())
	snap, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Teachers)
	assert.Empty(t, snap.ScheduleEntries)
	assert.Equal(t, "null\n", ts.do(t, http.MethodGet, "/api/scenarios/current", nil).Body.String())
}
