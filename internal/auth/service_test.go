package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func newTestService(t *testing.T, ttl time.Duration, now time.Time) (*Service, redismock.ClientMock) {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	authService := NewAuthService(ttl, rdb)
	authService.NowFunc = func() time.Time { return now }
	return authService, mock
}

func TestAuthService_Login(t *testing.T) {
	now := time.Now()
	authService, mock := newTestService(t, time.Hour, now)
	require.NotNil(t, authService.redisClient)
	assert.Equal(t, time.Hour, authService.ttl)

	testToken := "test_token"
	authService.RandStringFunc = func(s int) (string, error) {
		return testToken, nil
	}

	sessionKey := sessionKeyPrefix + testToken
	mock.ExpectSet(sessionKey, fmt.Sprintf("7:%d", now.Unix()), time.Hour).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, testToken).SetVal(1)

	token, err := authService.Login(context.Background(), 7, now)
	require.NoError(t, err)
	assert.Equal(t, testToken, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_Login_TokenError(t *testing.T) {
	authService, _ := newTestService(t, time.Hour, time.Now())
	authService.RandStringFunc = func(s int) (string, error) {
		return "", errors.New("no entropy")
	}

	token, err := authService.Login(context.Background(), 7, time.Now())
	assert.EqualError(t, err, "no entropy")
	assert.Empty(t, token)
}

func TestAuthService_SessionUser(t *testing.T) {
	now := time.Now()
	authService, mock := newTestService(t, time.Hour, now)

	mock.ExpectGet(sessionKeyPrefix + "good").SetVal(fmt.Sprintf("12:%d", now.Add(-time.Minute).Unix()))
	userID, err := authService.SessionUser(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, 12, userID)

	mock.ExpectGet(sessionKeyPrefix + "old").SetVal(fmt.Sprintf("12:%d", now.Add(-2*time.Hour).Unix()))
	_, err = authService.SessionUser(context.Background(), "old")
	assert.ErrorIs(t, err, ErrSessionExpired)

	mock.ExpectGet(sessionKeyPrefix + "missing").RedisNil()
	_, err = authService.SessionUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrInvalidSession)

	mock.ExpectGet(sessionKeyPrefix + "garbage").SetVal("garbage")
	_, err = authService.SessionUser(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidSession)

	mock.ExpectGet(sessionKeyPrefix + "down").SetErr(errors.New("redis down"))
	_, err = authService.SessionUser(context.Background(), "down")
	assert.EqualError(t, err, "redis down")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_Logout(t *testing.T) {
	authService, mock := newTestService(t, time.Hour, time.Now())

	mock.ExpectDel(sessionKeyPrefix + "tkn").SetVal(1)
	mock.ExpectSRem(tokensSetKey, "tkn").SetVal(1)
	loggedOut, err := authService.Logout(context.Background(), "tkn")
	require.NoError(t, err)
	assert.True(t, loggedOut)

	mock.ExpectDel(sessionKeyPrefix + "unknown").SetVal(0)
	mock.ExpectSRem(tokensSetKey, "unknown").SetVal(0)
	loggedOut, err = authService.Logout(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, loggedOut)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_ScanAndClean(t *testing.T) {
	now := time.Now()
	then := now.Add(-2 * time.Hour)
	authService, mock := newTestService(t, time.Hour, now)

	t1, t2, t3 := "token1", "token2", "token3"
	mock.ExpectSMembers(tokensSetKey).SetVal([]string{t1, t2, t3})
	mock.ExpectGet(sessionKeyPrefix + t1).SetVal(fmt.Sprintf("1:%d", then.Unix()))
	mock.ExpectGet(sessionKeyPrefix + t2).SetVal(fmt.Sprintf("2:%d", now.Unix()))
	mock.ExpectGet(sessionKeyPrefix + t3).RedisNil()
	// t1 is too old, t3 has already expired in redis
	mock.ExpectDel(sessionKeyPrefix + t1).SetVal(1)
	mock.ExpectSRem(tokensSetKey, t1).SetVal(1)
	mock.ExpectDel(sessionKeyPrefix + t3).SetVal(0)
	mock.ExpectSRem(tokensSetKey, t3).SetVal(1)

	removed := authService.ScanAndClean(context.Background())
	assert.Equal(t, 2, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_ScanAndClean_NoSessions(t *testing.T) {
	authService, mock := newTestService(t, time.Hour, time.Now())
	mock.ExpectSMembers(tokensSetKey).SetVal([]string{})

	assert.Equal(t, 0, authService.ScanAndClean(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserIDContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	userID, ok := UserIDFromContext(WithUserID(context.Background(), 42))
	assert.True(t, ok)
	assert.Equal(t, 42, userID)

	_, ok = UserIDFromContext(WithUserID(context.Background(), 0))
	assert.False(t, ok)
}
