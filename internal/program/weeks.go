package program

const (
	locationGym  = "Gym"
	locationHome = "Home"
)

func workout(day, activity, location string) DaySchedule {
	return DaySchedule{Day: day, Type: ActivityTypeWorkout, Activity: activity, Location: location}
}

func rest(day, activity string) DaySchedule {
	return DaySchedule{Day: day, Type: ActivityTypeRest, Activity: activity}
}

func flex(day, activity, location string) DaySchedule {
	return DaySchedule{Day: day, Type: ActivityTypeFlex, Activity: activity, Location: location}
}

func prep(day, activity string) DaySchedule {
	return DaySchedule{Day: day, Type: ActivityTypePrep, Activity: activity}
}

var weeks = map[int]Week{
	1: {
		Number:     1,
		Title:      "Week 1: Foundation Building",
		WakeTarget: "6:05am",
		Focus:      "Establishing the habit",
		Workouts:   3,
		Schedule: []DaySchedule{
			rest("Monday", "Practice wake-up routine"),
			workout("Tuesday", "Upper Body + 20min cardio (45min)", locationGym),
			rest("Wednesday", "Rest day - focus on sleep routine"),
			workout("Thursday", "Lower Body + Core (45min)", locationGym),
			flex("Friday", "Flexible yoga or walk (30min)", locationHome),
			rest("Saturday", "Weekend activities"),
			prep("Sunday", "Meal prep & planning"),
		},
		Goals: []string{
			"Complete 3 planned workouts",
			"Establish 9:30pm bedtime",
			"Wake at 6:05am consistently",
			"Practice evening prep routine",
		},
	},
	2: {
		Number:     2,
		Title:      "Week 2: Habit Formation",
		WakeTarget: "5:50am",
		Focus:      "Routine refinement",
		Workouts:   5,
		Schedule: []DaySchedule{
			workout("Monday", "Strength Focus (60min)", locationHome),
			workout("Tuesday", "Upper Body Circuit (50min)", locationGym),
			workout("Wednesday", "Lower + Core (50min)", locationGym),
			workout("Thursday", "Total Body Circuit (50min)", locationGym),
			workout("Friday", "Active Recovery (45min)", locationHome),
			rest("Saturday", "Optional outdoor activity"),
			prep("Sunday", "Week 3 preparation"),
		},
		Goals: []string{
			"Complete all 5 planned sessions",
			"Wake at 5:50am consistently",
			"Increase workout intensity",
			"Perfect timing routine",
		},
	},
	3: {
		Number:     3,
		Title:      "Week 3: Target Achievement",
		WakeTarget: "5:45am",
		Focus:      "Full schedule implementation",
		Workouts:   5,
		Schedule: []DaySchedule{
			workout("Monday", "Advanced Strength (75min)", locationHome),
			workout("Tuesday", "Upper + Rowing (60min)", locationGym),
			workout("Wednesday", "Lower + Incline Walk (60min)", locationGym),
			workout("Thursday", "Total Body Circuit (60min)", locationGym),
			workout("Friday", "Active Recovery (60-90min)", locationHome),
			rest("Saturday", "Assessment weekend"),
			prep("Sunday", "Week 4-6 planning"),
		},
		Goals: []string{
			"Master 5:45am wake-up",
			"Complete full 5-day schedule",
			"Perfect morning timing",
			"Consistent 7:50am departure",
		},
	},
	4: {
		Number:     4,
		Title:      "Week 4: Building Momentum",
		WakeTarget: "5:45am",
		Focus:      "Locking in the routine",
		Workouts:   5,
		Schedule: []DaySchedule{
			workout("Monday", "Push Strength (60min)", locationGym),
			workout("Tuesday", "Pull Strength + Rowing (60min)", locationGym),
			flex("Wednesday", "Mobility & Stretching (30min)", locationHome),
			workout("Thursday", "Legs + Core (60min)", locationGym),
			workout("Friday", "Full Body Circuit (50min)", locationHome),
			workout("Saturday", "Long Walk or Easy Run (45min)", ""),
			prep("Sunday", "Meal prep & weekly review"),
		},
		Goals: []string{
			"Hold 5:45am wake-up all week",
			"Complete 5 sessions",
			"Add weight to main lifts",
			"Keep 9:30pm bedtime",
		},
	},
	5: {
		Number:     5,
		Title:      "Week 5: Strength Progression",
		WakeTarget: "5:45am",
		Focus:      "Progressive overload",
		Workouts:   5,
		Schedule: []DaySchedule{
			workout("Monday", "Lower Body Strength (70min)", locationGym),
			workout("Tuesday", "Upper Body Strength (70min)", locationGym),
			rest("Wednesday", "Rest day - light walk"),
			workout("Thursday", "Deadlift Focus + Core (60min)", locationGym),
			workout("Friday", "Upper Hypertrophy (60min)", locationGym),
			workout("Saturday", "Conditioning Intervals (30min)", locationHome),
			prep("Sunday", "Meal prep & planning"),
		},
		Goals: []string{
			"Increase load on every main lift",
			"Log energy level every day",
			"Depart by 7:50am on workdays",
			"Sleep 7+ hours",
		},
	},
	6: {
		Number:     6,
		Title:      "Week 6: Mid-Point Assessment",
		WakeTarget: "5:45am",
		Focus:      "Deload and review",
		Workouts:   4,
		Schedule: []DaySchedule{
			workout("Monday", "Light Full Body (45min)", locationHome),
			flex("Tuesday", "Yoga Flow (40min)", locationHome),
			workout("Wednesday", "Benchmark Strength Tests (60min)", locationGym),
			rest("Thursday", "Rest day - recovery focus"),
			workout("Friday", "Benchmark Conditioning Test (40min)", locationGym),
			workout("Saturday", "Outdoor Activity of Choice (60min)", ""),
			prep("Sunday", "Review progress & plan weeks 7-9"),
		},
		Goals: []string{
			"Record benchmark results",
			"Reduce training volume by a third",
			"Keep the wake-up time steady",
			"Plan the second half of the program",
		},
	},
	7: {
		Number:     7,
		Title:      "Week 7: Intensity Phase",
		WakeTarget: "5:45am",
		Focus:      "Higher intensity sessions",
		Workouts:   5,
		Schedule: []DaySchedule{
			workout("Monday", "Heavy Lower Body (75min)", locationGym),
			workout("Tuesday", "Heavy Upper Body (75min)", locationGym),
			flex("Wednesday", "Mobility & Foam Rolling (30min)", locationHome),
			workout("Thursday", "HIIT + Core (45min)", locationGym),
			workout("Friday", "Power Circuit (50min)", locationGym),
			workout("Saturday", "Hill Walk or Bike Ride (60min)", ""),
			prep("Sunday", "Meal prep & planning"),
		},
		Goals: []string{
			"Complete every high intensity session",
			"Average energy of 4 or more",
			"Lights out by 9:30pm",
			"Hydrate before every workout",
		},
	},
	8: {
		Number:     8,
		Title:      "Week 8: Endurance Builder",
		WakeTarget: "5:45am",
		Focus:      "Aerobic base",
		Workouts:   5,
		Schedule: []DaySchedule{
			workout("Monday", "Tempo Cardio + Core (50min)", locationGym),
			workout("Tuesday", "Full Body Strength (60min)", locationGym),
			workout("Wednesday", "Zone 2 Cardio (60min)", ""),
			rest("Thursday", "Rest day - stretching"),
			workout("Friday", "Rowing Intervals (45min)", locationGym),
			workout("Saturday", "Long Endurance Session (90min)", ""),
			prep("Sunday", "Meal prep & planning"),
		},
		Goals: []string{
			"Accumulate 4 hours of training",
			"Keep heart rate in zone 2 on easy days",
			"Wake at 5:45am every day",
			"Prepare gym bag the night before",
		},
	},
	9: {
		Number:     9,
		Title:      "Week 9: Peak Conditioning",
		WakeTarget: "5:45am",
		Focus:      "Combining strength and conditioning",
		Workouts:   5,
		Schedule: []DaySchedule{
			workout("Monday", "Strength + Finisher (70min)", locationGym),
			workout("Tuesday", "Metabolic Conditioning (45min)", locationGym),
			flex("Wednesday", "Yoga or Swim (40min)", ""),
			workout("Thursday", "Strength + Sled Work (70min)", locationGym),
			workout("Friday", "Total Body Circuit (60min)", locationHome),
			workout("Saturday", "Team Sport or Trail Run (60min)", ""),
			prep("Sunday", "Meal prep & planning"),
		},
		Goals: []string{
			"Complete 5 sessions",
			"Beat one week-6 benchmark",
			"No missed wake-ups",
			"Consistent 7:50am departure",
		},
	},
	10: {
		Number:     10,
		Title:      "Week 10: Skill & Power",
		WakeTarget: "5:45am",
		Focus:      "Explosive movement and technique",
		Workouts:   5,
		Schedule: []DaySchedule{
			workout("Monday", "Olympic Lift Technique (60min)", locationGym),
			workout("Tuesday", "Plyometrics + Upper Body (60min)", locationGym),
			rest("Wednesday", "Rest day - light walk"),
			workout("Thursday", "Sprint Intervals + Core (45min)", ""),
			workout("Friday", "Power Strength (60min)", locationGym),
			workout("Saturday", "Mobility + Skill Practice (45min)", locationHome),
			prep("Sunday", "Meal prep & planning"),
		},
		Goals: []string{
			"Practice technique before load",
			"Complete 5 sessions",
			"Log wake time every morning",
			"Sleep 7+ hours",
		},
	},
	11: {
		Number:     11,
		Title:      "Week 11: Consolidation",
		WakeTarget: "5:45am",
		Focus:      "Making it sustainable",
		Workouts:   5,
		Schedule: []DaySchedule{
			workout("Monday", "Full Body Strength (60min)", locationGym),
			workout("Tuesday", "Conditioning Circuit (45min)", locationHome),
			workout("Wednesday", "Upper Body + Rowing (60min)", locationGym),
			flex("Thursday", "Yoga Flow (40min)", locationHome),
			workout("Friday", "Lower Body + Core (60min)", locationGym),
			workout("Saturday", "Outdoor Activity of Choice (60min)", ""),
			prep("Sunday", "Plan the final week"),
		},
		Goals: []string{
			"Keep all habits without reminders",
			"Complete 5 sessions",
			"Average energy of 4 or more",
			"Evening prep every night",
		},
	},
	12: {
		Number:     12,
		Title:      "Week 12: Lifestyle Mastery",
		WakeTarget: "5:45am",
		Focus:      "Final assessment and next steps",
		Workouts:   5,
		Schedule: []DaySchedule{
			workout("Monday", "Benchmark Strength Tests (60min)", locationGym),
			workout("Tuesday", "Favourite Session (60min)", locationGym),
			flex("Wednesday", "Mobility & Recovery (30min)", locationHome),
			workout("Thursday", "Benchmark Conditioning Test (40min)", locationGym),
			workout("Friday", "Celebration Circuit (50min)", locationHome),
			workout("Saturday", "Long Outdoor Session (90min)", ""),
			prep("Sunday", "Plan the next training block"),
		},
		Goals: []string{
			"Compare benchmarks with week 6",
			"Complete 5 sessions",
			"Wake at 5:45am all week",
			"Write down the plan for the next 12 weeks",
		},
	},
}
