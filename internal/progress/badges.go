package progress

// BadgeID identifies an earned achievement.
type BadgeID string

const (
	BadgeThreeDayStreak     BadgeID = "3-Day-Streak"
	BadgeWeekWarrior        BadgeID = "Week-Warrior"
	BadgeTwoWeekChampion    BadgeID = "Two-Week-Champion"
	BadgeMonthMaster        BadgeID = "Month-Master"
	BadgeGettingStarted     BadgeID = "Getting-Started"
	BadgeConsistent         BadgeID = "Consistent"
	BadgeDedicated          BadgeID = "Dedicated"
	BadgeWeekTwoReached     BadgeID = "Week-2-Reached"
	BadgeTargetWakeAchieved BadgeID = "Target-Wake-Achieved"
	BadgeEarlyBird          BadgeID = "Early-Bird"
)

const earlyBirdWakeTime = "05:45"

type badgeInputs struct {
	streak        int
	totalWorkouts int
	currentWeek   int
	todayWakeTime *string
}

type badgeRule struct {
	id     BadgeID
	emoji  string
	text   string
	earned func(in badgeInputs) bool
}

// thresholds are inclusive and cumulative: reaching a higher tier keeps the lower ones
var badgeRules = []badgeRule{
	{id: BadgeThreeDayStreak, emoji: "🔥", text: "3 Day Streak", earned: func(in badgeInputs) bool { return in.streak >= 3 }},
	{id: BadgeWeekWarrior, emoji: "⚡", text: "Week Warrior", earned: func(in badgeInputs) bool { return in.streak >= 7 }},
	{id: BadgeTwoWeekChampion, emoji: "💪", text: "2 Week Champion", earned: func(in badgeInputs) bool { return in.streak >= 14 }},
	{id: BadgeMonthMaster, emoji: "🏆", text: "Month Master", earned: func(in badgeInputs) bool { return in.streak >= 30 }},
	{id: BadgeGettingStarted, emoji: "🌟", text: "Getting Started", earned: func(in badgeInputs) bool { return in.totalWorkouts >= 5 }},
	{id: BadgeConsistent, emoji: "💎", text: "Consistent", earned: func(in badgeInputs) bool { return in.totalWorkouts >= 15 }},
	{id: BadgeDedicated, emoji: "👑", text: "Dedicated", earned: func(in badgeInputs) bool { return in.totalWorkouts >= 30 }},
	{id: BadgeWeekTwoReached, emoji: "📈", text: "Week 2 Reached", earned: func(in badgeInputs) bool { return in.currentWeek >= 2 }},
	{id: BadgeTargetWakeAchieved, emoji: "🎯", text: "5:45am Achieved", earned: func(in badgeInputs) bool { return in.currentWeek >= 3 }},
	{id: BadgeEarlyBird, emoji: "🌅", text: "Early Bird", earned: func(in badgeInputs) bool {
		return in.todayWakeTime != nil && *in.todayWakeTime <= earlyBirdWakeTime
	}},
}

func evaluateBadges(in badgeInputs) []BadgeID {
	badges := make([]BadgeID, 0, len(badgeRules))
	for _, rule := range badgeRules {
		if rule.earned(in) {
			badges = append(badges, rule.id)
		}
	}
	return badges
}

// Badge is the display form of a BadgeID.
type Badge struct {
	ID    BadgeID `json:"id"`
	Emoji string  `json:"emoji"`
	Text  string  `json:"text"`
}

func DescribeBadges(ids []BadgeID) []Badge {
	described := make([]Badge, 0, len(ids))
	for _, id := range ids {
		for _, rule := range badgeRules {
			if rule.id == id {
				described = append(described, Badge{ID: id, Emoji: rule.emoji, Text: rule.text})
				break
			}
		}
	}
	return described
}
