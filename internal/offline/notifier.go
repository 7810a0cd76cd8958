package offline

import (
	"context"
	"sync"
	"time"

	"github.com/2beens/fitnesstracker/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

type Notification struct {
	Title   string               `json:"title"`
	Body    string               `json:"body"`
	Icon    string               `json:"icon,omitempty"`
	Badge   string               `json:"badge,omitempty"`
	Tag     string               `json:"tag,omitempty"`
	Vibrate []int                `json:"vibrate,omitempty"`
	Actions []NotificationAction `json:"actions,omitempty"`
	ShownAt time.Time            `json:"shownAt"`
}

//go:generate mockgen -source=$GOFILE -destination=notifier_mocks_test.go -package=offline_test

// Notifier delivers notifications to the user.
type Notifier interface {
	Show(ctx context.Context, n Notification) error
}

const defaultRecentNotifications = 20

// LogNotifier logs notifications and keeps the most recent ones around, so
// clients can poll them.
type LogNotifier struct {
	mu             sync.Mutex
	recent         []Notification
	limit          int
	metricsManager *metrics.Manager
}

func NewLogNotifier(limit int, metricsManager *metrics.Manager) *LogNotifier {
	if limit <= 0 {
		limit = defaultRecentNotifications
	}
	return &LogNotifier{
		limit:          limit,
		metricsManager: metricsManager,
	}
}

func (ln *LogNotifier) Show(_ context.Context, n Notification) error {
	if n.ShownAt.IsZero() {
		n.ShownAt = time.Now()
	}
	log.Infof("notification [%s]: %s - %s", n.Tag, n.Title, n.Body)

	ln.mu.Lock()
	defer ln.mu.Unlock()

	ln.recent = append(ln.recent, n)
	if len(ln.recent) > ln.limit {
		ln.recent = ln.recent[len(ln.recent)-ln.limit:]
	}

	if ln.metricsManager != nil {
		ln.metricsManager.CounterNotifications.WithLabelValues(n.Tag).Inc()
	}
	return nil
}

// Recent returns the kept notifications, newest first.
func (ln *LogNotifier) Recent() []Notification {
	ln.mu.Lock()
	defer ln.mu.Unlock()

	recent := make([]Notification, 0, len(ln.recent))
	for i := len(ln.recent) - 1; i >= 0; i-- {
		recent = append(recent, ln.recent[i])
	}
	return recent
}
