package tag

// Defaults returns the starter catalog written to an empty store: a handful of
// tags per category and the links between the ones that usually go together.
func Defaults() ([]Tag, []Link) {
	tags := []Tag{
		{ID: "tag_me", Label: "Me", Category: CategoryPerson},
		{ID: "tag_family", Label: "Family", Category: CategoryPerson},
		{ID: "tag_friend", Label: "Friend", Category: CategoryPerson},
		{ID: "tag_work", Label: "Work", Category: CategoryActivity},
		{ID: "tag_exercise", Label: "Exercise", Category: CategoryActivity},
		{ID: "tag_meeting", Label: "Meeting", Category: CategoryActivity},
		{ID: "tag_meal", Label: "Meal", Category: CategoryActivity},
		{ID: "tag_learning", Label: "Learning", Category: CategoryActivity},
		{ID: "tag_home", Label: "Home", Category: CategoryPlace},
		{ID: "tag_office", Label: "Office", Category: CategoryPlace},
		{ID: "tag_outside", Label: "Outside", Category: CategoryPlace},
		{ID: "tag_focus", Label: "Focus", Category: CategoryContext},
		{ID: "tag_relax", Label: "Relax", Category: CategoryContext},
		{ID: "tag_energized", Label: "Energized", Category: CategoryMood},
		{ID: "tag_tired", Label: "Tired", Category: CategoryMood},
	}

	pairs := [][2]string{
		{"tag_me", "tag_work"},
		{"tag_me", "tag_exercise"},
		{"tag_me", "tag_focus"},
		{"tag_family", "tag_meal"},
		{"tag_family", "tag_relax"},
		{"tag_family", "tag_home"},
		{"tag_friend", "tag_meal"},
		{"tag_friend", "tag_meeting"},
		{"tag_work", "tag_office"},
		{"tag_work", "tag_focus"},
		{"tag_work", "tag_meeting"},
		{"tag_exercise", "tag_outside"},
		{"tag_exercise", "tag_energized"},
		{"tag_focus", "tag_energized"},
		{"tag_relax", "tag_tired"},
	}
	links := make([]Link, 0, len(pairs)*2)
	for _, p := range pairs {
		both := Pair(p[0], p[1])
		links = append(links, both[0], both[1])
	}
	return tags, links
}
