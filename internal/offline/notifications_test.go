package offline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/2beens/fitnesstracker/internal/offline"
	"github.com/2beens/fitnesstracker/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newNotifyingManager(t *testing.T, notifier offline.Notifier) *offline.Manager {
	t.Helper()
	m, err := offline.NewManager(offline.ManagerParams{
		Origin:   "http://localhost:8080",
		Storage:  offline.NewMemoryStorage(1),
		Notifier: notifier,
	})
	require.NoError(t, err)
	return m
}

func TestManager_HandlePush(t *testing.T) {
	notifier := offline.NewLogNotifier(10, nil)
	m := newNotifyingManager(t, notifier)
	ctx := context.Background()

	require.NoError(t, m.HandlePush(ctx, ""))
	require.NoError(t, m.HandlePush(ctx, "Leg day!"))

	recent := notifier.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "Leg day!", recent[0].Body)
	assert.Equal(t, "Time for your morning routine!", recent[1].Body)

	n := recent[1]
	assert.Equal(t, "5:45am Fitness Tracker", n.Title)
	assert.Equal(t, []int{100, 50, 100}, n.Vibrate)
	require.Len(t, n.Actions, 2)
	assert.Equal(t, offline.ActionCheckIn, n.Actions[0].Action)
	assert.Equal(t, offline.ActionDismiss, n.Actions[1].Action)
	assert.False(t, n.ShownAt.IsZero())
}

func TestManager_HandleNotificationClick(t *testing.T) {
	m := newNotifyingManager(t, nil)

	assert.Equal(t, offline.ClickResult{Open: "/?section=checkin"}, m.HandleNotificationClick("check-in"))
	assert.Equal(t, offline.ClickResult{}, m.HandleNotificationClick("dismiss"))
	assert.Equal(t, offline.ClickResult{Open: "/"}, m.HandleNotificationClick(""))
	assert.Equal(t, offline.ClickResult{Open: "/"}, m.HandleNotificationClick("snooze"))
}

func TestManager_HandlePeriodicSync(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := NewMockNotifier(ctrl)
	m := newNotifyingManager(t, notifier)
	ctx := context.Background()

	notifier.EXPECT().Show(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n offline.Notification) error {
			assert.Equal(t, "Good Morning! 🌅", n.Title)
			assert.Equal(t, "morning-reminder", n.Tag)
			return nil
		})
	handled, err := m.HandlePeriodicSync(ctx, "morning-reminder")
	require.NoError(t, err)
	assert.True(t, handled)

	// no notification for these
	handled, err = m.HandlePeriodicSync(ctx, "background-sync")
	require.NoError(t, err)
	assert.True(t, handled)
	handled, err = m.HandlePeriodicSync(ctx, "weekly-report")
	require.NoError(t, err)
	assert.False(t, handled)

	notifier.EXPECT().Show(gomock.Any(), gomock.Any()).Return(errors.New("permission denied"))
	_, err = m.HandlePeriodicSync(ctx, "morning-reminder")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestManager_ShowEveningPrep(t *testing.T) {
	notifier := offline.NewLogNotifier(10, nil)
	m := newNotifyingManager(t, notifier)

	require.NoError(t, m.ShowEveningPrep(context.Background()))
	recent := notifier.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, offline.TagEveningPrep, recent[0].Tag)
	assert.Contains(t, recent[0].Body, "5:45am wake-up")
}

func TestManager_NoNotifier(t *testing.T) {
	m := newNotifyingManager(t, nil)
	require.NoError(t, m.HandlePush(context.Background(), "ignored"))
}

func TestLogNotifier_KeepsMostRecent(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	notifier := offline.NewLogNotifier(3, metricsManager)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, notifier.Show(ctx, offline.Notification{Title: fmt.Sprintf("n%d", i), Tag: "test"}))
	}

	recent := notifier.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "n4", recent[0].Title)
	assert.Equal(t, "n2", recent[2].Title)
	assert.Equal(t, float64(5), testutil.ToFloat64(metricsManager.CounterNotifications.WithLabelValues("test")))
}

func TestWeekProgression(t *testing.T) {
	n := offline.WeekProgression(3)
	assert.Equal(t, "🎉 Great job completing Week 3!", n.Title)
	assert.Equal(t, "Ready to advance to Week 4?", n.Body)
	assert.Equal(t, offline.TagWeekProgression, n.Tag)
	require.Len(t, n.Actions, 2)
}
