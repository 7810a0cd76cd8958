package integration_testing

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fitnesstracker/internal/offline"
	"github.com/2beens/fitnesstracker/internal/progress"
	"github.com/2beens/fitnesstracker/internal/progress/storage"
	"github.com/2beens/fitnesstracker/internal/tracker"

	"github.com/go-redis/redis_rate/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestCheckinsAreFlushedToRedis() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	var day tracker.DayResponse
	s.doJSON(ctx, http.MethodPost, "/checkin", `{"date":"2026-03-10","field":"wakeup","value":true}`, &day)
	assert.True(t, day.Record.Wakeup)
	s.doJSON(ctx, http.MethodPost, "/checkin", `{"date":"2026-03-10","field":"workout","value":true}`, &day)
	assert.True(t, day.Record.Workout)

	var advanced tracker.WeekAdvanceResponse
	s.doJSON(ctx, http.MethodPost, "/week/advance", "", &advanced)
	require.True(t, advanced.Advanced)

	// advancing flushes all slots
	week, err := s.env.Redis.Get(ctx, storage.DefaultRedisKeyPrefix+progress.SlotCurrentWeek).Result()
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(advanced.CurrentWeek), week)

	dailyData, err := s.env.Redis.Get(ctx, storage.DefaultRedisKeyPrefix+progress.SlotDailyData).Result()
	require.NoError(t, err)
	assert.Contains(t, dailyData, `"2026-03-10"`)

	resp, body := s.do(ctx, http.MethodPost, "/checkin", `{"field":"nap","value":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
}

func (s *IntegrationTestSuite) TestExport() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	resp, body := s.do(ctx, http.MethodGet, "/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t,
		fmt.Sprintf("attachment; filename=%q", progress.ExportFileName(time.Now())),
		resp.Header.Get("Content-Disposition"),
	)

	state, err := progress.ParseExport(body)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, state.CurrentWeek, 1)
}

func (s *IntegrationTestSuite) TestOfflineAppShell() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	require.Eventually(t, func() bool {
		var status offline.Status
		s.doJSON(ctx, http.MethodGet, "/offline/status", "", &status)
		return status.State == "active"
	}, 15*time.Second, 100*time.Millisecond)

	resp, body := s.do(ctx, http.MethodGet, "/app/index.html", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "app shell /index.html", string(body))
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))

	generations, err := s.env.Redis.SMembers(ctx, offline.DefaultRedisKeyPrefix+"generations").Result()
	require.NoError(t, err)
	assert.Equal(t, []string{cacheVersion}, generations)
}

func (s *IntegrationTestSuite) TestRateLimitedCheckins() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	limiter := redis_rate.NewLimiter(s.env.Redis)
	require.NoError(t, limiter.Reset(ctx, "checkin"))
	defer func() {
		require.NoError(t, limiter.Reset(ctx, "checkin"))
	}()

	limited := false
	for i := 0; i <= checkinRateLimit; i++ {
		resp, _ := s.do(ctx, http.MethodPut, "/energy", `{"date":"2026-03-09","level":3}`)
		if resp.StatusCode == http.StatusTooEarly {
			limited = true
			break
		}
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.True(t, limited)

	// reads are not limited
	resp, _ := s.do(ctx, http.MethodGet, "/today", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestNotifications() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	resp, _ := s.do(ctx, http.MethodPost, "/notifications/push", `{"payload":"Rise and shine"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var recent []offline.Notification
	s.doJSON(ctx, http.MethodGet, "/notifications", "", &recent)
	require.NotEmpty(t, recent)
	assert.Equal(t, "Rise and shine", recent[0].Body)

	var click offline.ClickResult
	s.doJSON(ctx, http.MethodPost, "/notifications/click", `{"action":"check-in"}`, &click)
	assert.Equal(t, "/?section=checkin", click.Open)
}
