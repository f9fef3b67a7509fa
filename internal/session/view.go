package session

import "github.com/i474232898/airaware/internal/common"

// DailyGoal is the number of completed exercises that fills the progress bar.
const DailyGoal = 5

// ExerciseStatus pairs a catalog exercise with its done flag.
type ExerciseStatus struct {
	Exercise
	Done bool `json:"done"`
}

// View is what the presentation layer needs to render the checklist.
type View struct {
	Category       string           `json:"category"`
	Exercises      []ExerciseStatus `json:"exercises"`
	CompletedCount int              `json:"completedCount"`
	Goal           int              `json:"goal"`
	Progress       float64          `json:"progress"`
}

// BuildView derives the checklist for s.Category. CompletedCount counts every
// completed id, including ids from other categories.
func BuildView(s State, c *Catalog) View {
	exercises := c.Exercises(s.Category)
	v := View{
		Category:       s.Category,
		Exercises:      make([]ExerciseStatus, 0, len(exercises)),
		CompletedCount: len(s.Completed),
		Goal:           DailyGoal,
	}
	for _, ex := range exercises {
		v.Exercises = append(v.Exercises, ExerciseStatus{Exercise: ex, Done: s.Completed.Has(ex.ID)})
	}
	v.Progress = common.Clamp(float64(v.CompletedCount)/DailyGoal, 0, 1)
	return v
}
