package offline

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

const (
	ActionCheckIn = "check-in"
	ActionDismiss = "dismiss"

	SyncTagMorningReminder = "morning-reminder"
	SyncTagBackgroundSync  = "background-sync"
	TagEveningPrep         = "evening-prep"
	TagPush                = "push"
	TagMorningGreeting     = "morning-greeting"
	TagWeekProgression     = "week-progression"

	pushTitle       = "5:45am Fitness Tracker"
	pushDefaultBody = "Time for your morning routine!"

	checkInURL = "/?section=checkin"
	rootURL    = "/"

	iconURL  = "/icon-192.png"
	badgeURL = "/icon-72.png"
)

// MorningReminder is shown on the morning-reminder trigger.
var MorningReminder = Notification{
	Title: "Good Morning! 🌅",
	Body:  "Time to start your 5:45am routine! Check in when you wake up.",
	Icon:  iconURL,
	Badge: badgeURL,
	Tag:   SyncTagMorningReminder,
}

// EveningPrep is the daily reminder to get ready for the next morning.
var EveningPrep = Notification{
	Title: "🌙 Evening Prep Time!",
	Body:  "Time to prepare for tomorrow's 5:45am wake-up. Lay out clothes and set your alarm!",
	Icon:  iconURL,
	Tag:   TagEveningPrep,
}

// MorningGreeting is shown once a day when the user is up within the wake-up window.
var MorningGreeting = Notification{
	Title: "Good morning! 🌅",
	Body:  "You're up early - great start to the day!",
	Icon:  iconURL,
	Tag:   TagMorningGreeting,
}

// WeekProgression suggests moving on after a completed week.
func WeekProgression(completedWeek int) Notification {
	return Notification{
		Title: fmt.Sprintf("🎉 Great job completing Week %d!", completedWeek),
		Body:  fmt.Sprintf("Ready to advance to Week %d?", completedWeek+1),
		Icon:  iconURL,
		Tag:   TagWeekProgression,
		Actions: []NotificationAction{
			{Action: ActionCheckIn, Title: "Open tracker", Icon: iconURL},
			{Action: ActionDismiss, Title: "Later", Icon: iconURL},
		},
	}
}

// ClickResult tells the client what to do after a notification interaction.
// An empty Open means nothing is opened.
type ClickResult struct {
	Open string `json:"open,omitempty"`
}

func (m *Manager) show(ctx context.Context, n Notification) error {
	if m.notifier == nil {
		log.Warnf("offline cache [%s]: no notifier, dropping notification %q", m.version, n.Title)
		return nil
	}
	n.ShownAt = m.now()
	if err := m.notifier.Show(ctx, n); err != nil {
		return fmt.Errorf("show notification %q: %w", n.Title, err)
	}
	return nil
}

// HandlePush renders an inbound push message. An empty payload gets the
// default body.
func (m *Manager) HandlePush(ctx context.Context, payload string) error {
	body := payload
	if body == "" {
		body = pushDefaultBody
	}
	return m.show(ctx, Notification{
		Title:   pushTitle,
		Body:    body,
		Icon:    iconURL,
		Badge:   badgeURL,
		Tag:     TagPush,
		Vibrate: []int{100, 50, 100},
		Actions: []NotificationAction{
			{Action: ActionCheckIn, Title: "Complete Check-in", Icon: iconURL},
			{Action: ActionDismiss, Title: "Dismiss", Icon: iconURL},
		},
	})
}

// HandleNotificationClick maps a notification action to the page to open.
func (m *Manager) HandleNotificationClick(action string) ClickResult {
	switch action {
	case ActionCheckIn:
		return ClickResult{Open: checkInURL}
	case ActionDismiss:
		return ClickResult{}
	default:
		return ClickResult{Open: rootURL}
	}
}

// HandlePeriodicSync handles a scheduled trigger and reports whether the tag
// was known. It reads and writes no state.
func (m *Manager) HandlePeriodicSync(ctx context.Context, tag string) (bool, error) {
	switch tag {
	case SyncTagMorningReminder:
		return true, m.show(ctx, MorningReminder)
	case SyncTagBackgroundSync:
		log.Infof("offline cache [%s]: background sync triggered", m.version)
		return true, nil
	default:
		log.Debugf("offline cache [%s]: ignoring periodic sync tag %q", m.version, tag)
		return false, nil
	}
}

// ShowEveningPrep shows the evening prep reminder.
func (m *Manager) ShowEveningPrep(ctx context.Context) error {
	return m.show(ctx, EveningPrep)
}
