package workouts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/workouts"
	"github.com/2beens/fittrack/pkg"
)

func newJSONRequest(t *testing.T, method string, body any, userID int) *http.Request {
	t.Helper()
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(method, "", bytes.NewReader(reqBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	return req
}

func TestHandler_HandleAdd(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	metricsManager := metrics.NewTestManager()
	h := workouts.NewHandler(repoMock, metricsManager, time.UTC)

	addReq := workouts.AddWorkoutRequest{
		Date:        "2024-03-05",
		DurationMin: 45,
		Note:        "  felt strong ",
		Sets: []workouts.Set{
			{Exercise: " Squat ", Sets: 0, Reps: 5, Weight: 100},
			{Exercise: "   ", Sets: 3, Reps: 10, Weight: 20},
			{Exercise: "Bench Press", Sets: 3, Reps: 8, Weight: -5},
		},
	}

	repoMock.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, w workouts.Workout) (*workouts.Workout, error) {
			assert.Equal(t, 3, w.UserID)
			assert.Equal(t, "2024-03-05", pkg.FormatDate(w.Date))
			assert.Equal(t, workouts.DefaultRoutine, w.Routine)
			assert.Equal(t, "felt strong", w.Note)
			require.Len(t, w.Sets, 2)
			assert.Equal(t, workouts.Set{Exercise: "Squat", Sets: 1, Reps: 5, Weight: 100}, w.Sets[0])
			assert.Equal(t, workouts.Set{Exercise: "Bench Press", Sets: 3, Reps: 8, Weight: 0}, w.Sets[1])
			w.ID = 11
			return &w, nil
		}).Times(1)

	rec := httptest.NewRecorder()
	h.HandleAdd(rec, newJSONRequest(t, "POST", addReq, 3))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(11), resp["id"])
	assert.Equal(t, "2024-03-05", resp["date"])
	assert.Equal(t, workouts.DefaultRoutine, resp["routine"])
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterWorkoutsLogged))
}

func TestHandler_HandleAdd_DefaultsToToday(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager(), time.UTC)

	repoMock.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, w workouts.Workout) (*workouts.Workout, error) {
			assert.Equal(t, pkg.Today(time.UTC), w.Date)
			assert.Equal(t, "Push", w.Routine)
			return &w, nil
		})

	rec := httptest.NewRecorder()
	h.HandleAdd(rec, newJSONRequest(t, "POST", workouts.AddWorkoutRequest{
		Routine: "Push",
		Sets:    []workouts.Set{{Exercise: "Dips", Sets: 3, Reps: 12}},
	}, 3))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandler_HandleAdd_BadRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	metricsManager := metrics.NewTestManager()
	h := workouts.NewHandler(repoMock, metricsManager, time.UTC)
	// repo must never be reached
	repoMock.EXPECT().Add(gomock.Any(), gomock.Any()).Times(0)

	t.Run("no exercises", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleAdd(rec, newJSONRequest(t, "POST", workouts.AddWorkoutRequest{
			Sets: []workouts.Set{{Exercise: "  "}},
		}, 3))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid date", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleAdd(rec, newJSONRequest(t, "POST", workouts.AddWorkoutRequest{
			Date: "05.03.2024",
			Sets: []workouts.Set{{Exercise: "Squat"}},
		}, 3))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong content type", func(t *testing.T) {
		req := newJSONRequest(t, "POST", workouts.AddWorkoutRequest{}, 3)
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		h.HandleAdd(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleAdd(rec, newJSONRequest(t, "POST", workouts.AddWorkoutRequest{}, 0))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	assert.Equal(t, float64(0), testutil.ToFloat64(metricsManager.CounterWorkoutsLogged))
}

func TestHandler_HandleAdd_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager(), time.UTC)

	repoMock.EXPECT().Add(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	rec := httptest.NewRecorder()
	h.HandleAdd(rec, newJSONRequest(t, "POST", workouts.AddWorkoutRequest{
		Sets: []workouts.Set{{Exercise: "Squat", Sets: 1, Reps: 1, Weight: 1}},
	}, 3))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_HandleProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager(), time.UTC)

	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	repoMock.EXPECT().
		ListWithSets(gomock.Any(), 3, workouts.ProgressWorkoutsLimit).
		Return([]workouts.Workout{
			{ID: 1, Date: date, Routine: "Legs", Sets: []workouts.Set{{Exercise: "Squat", Sets: 3, Reps: 5, Weight: 100}}},
		}, nil)
	repoMock.EXPECT().
		ExerciseSummaries(gomock.Any(), 3).
		Return([]workouts.ExerciseSummary{
			{Exercise: "Squat", LastDate: date, MaxWeight: 100, Est1RM: 116.7, Volume: 1500},
		}, nil)

	rec := httptest.NewRecorder()
	h.HandleProgress(rec, newJSONRequest(t, "GET", nil, 3))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Workouts []struct {
			ID   int    `json:"id"`
			Date string `json:"date"`
		} `json:"workouts"`
		Exercises []struct {
			Exercise string  `json:"exercise"`
			LastDate string  `json:"last_date"`
			Est1RM   float64 `json:"est_1rm"`
		} `json:"exercises"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Workouts, 1)
	assert.Equal(t, "2024-03-05", resp.Workouts[0].Date)
	require.Len(t, resp.Exercises, 1)
	assert.Equal(t, "2024-03-05", resp.Exercises[0].LastDate)
	assert.Equal(t, 116.7, resp.Exercises[0].Est1RM)
}

func TestHandler_HandleProgress_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager(), time.UTC)

	repoMock.EXPECT().ListWithSets(gomock.Any(), 3, workouts.ProgressWorkoutsLimit).Return(nil, nil)
	repoMock.EXPECT().ExerciseSummaries(gomock.Any(), 3).Return(nil, nil)

	rec := httptest.NewRecorder()
	h.HandleProgress(rec, newJSONRequest(t, "GET", nil, 3))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"workouts":[],"exercises":[]}`, rec.Body.String())
}

func TestHandler_HandleDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager(), time.UTC)

	repoMock.EXPECT().Delete(gomock.Any(), 3, 8).Return(nil)
	repoMock.EXPECT().Delete(gomock.Any(), 3, 9).Return(workouts.ErrWorkoutNotFound)

	rec := httptest.NewRecorder()
	req := mux.SetURLVars(newJSONRequest(t, "DELETE", nil, 3), map[string]string{"id": "8"})
	h.HandleDelete(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted_id":8}`, rec.Body.String())

	rec = httptest.NewRecorder()
	req = mux.SetURLVars(newJSONRequest(t, "DELETE", nil, 3), map[string]string{"id": "9"})
	h.HandleDelete(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	req = mux.SetURLVars(newJSONRequest(t, "DELETE", nil, 3), map[string]string{"id": "nope"})
	h.HandleDelete(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
