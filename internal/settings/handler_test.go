package settings_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/settings"
)

func TestHandler_HandleGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMocksettingsRepo(ctrl)
	h := settings.NewHandler(repoMock)

	repoMock.EXPECT().Get(gomock.Any(), 2).Return(&settings.Settings{
		UserID:            2,
		RestDays:          []int{0, 6},
		WeeklyMinSessions: 4,
	}, nil)

	req, err := http.NewRequest("GET", "", nil)
	require.NoError(t, err)
	req = req.WithContext(auth.WithUserID(req.Context(), 2))
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rest_days":[0,6],"weekly_min_sessions":4}`, rec.Body.String())
}

func TestHandler_HandleGet_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMocksettingsRepo(ctrl)
	h := settings.NewHandler(repoMock)

	req, err := http.NewRequest("GET", "", nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	repoMock.EXPECT().Get(gomock.Any(), 2).Return(nil, errors.New("db down"))
	rec = httptest.NewRecorder()
	h.HandleGet(rec, req.WithContext(auth.WithUserID(req.Context(), 2)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_HandleUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMocksettingsRepo(ctrl)
	h := settings.NewHandler(repoMock)

	repoMock.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, s settings.Settings) error {
			assert.Equal(t, 2, s.UserID)
			assert.Equal(t, []int{1, 6}, s.RestDays)
			assert.Equal(t, settings.DefaultWeeklyMinSessions, s.WeeklyMinSessions)
			return nil
		})

	req, err := http.NewRequest("PUT", "", bytes.NewReader([]byte(`{"rest_days":[6,1,9],"weekly_min_sessions":0}`)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.WithUserID(req.Context(), 2))
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rest_days":[1,6],"weekly_min_sessions":3}`, rec.Body.String())
}

func TestHandler_HandleUpdate_BadBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMocksettingsRepo(ctrl)
	h := settings.NewHandler(repoMock)

	req, err := http.NewRequest("PUT", "", bytes.NewReader([]byte(`{"rest_days":`)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.WithUserID(req.Context(), 2))
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
