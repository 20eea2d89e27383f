package prompt

import (
	"github.com/kapu/fitplan-engine-go/internal/constants"
)

// MealPlanVars holds variables for the meal plan template
type MealPlanVars struct {
	Age    float64
	Weight float64
	Height float64
	Goal   string
	Diet   string
}

// WorkoutPlanVars holds variables for the workout plan template
type WorkoutPlanVars struct {
	Gender             string
	Level              string
	Goal               string
	Split              string
	Days               int
	MinExercisesPerDay int
	Sets               string
	Reps               string
	Rest               string
	LevelGuidance      string
	MuscleGroups       []string
	AllowedExercises   []string
}

// NewWorkoutPlanVars fills the training rules for the given request values.
// allowed must be the exact name list the result will be reconciled against.
func NewWorkoutPlanVars(gender, level, goal, split string, days int, allowed []string) WorkoutPlanVars {
	policy, ok := constants.SetRepPolicies[goal]
	if !ok {
		policy = constants.DefaultSetRepPolicy
	}
	minPerDay, ok := constants.MinExercisesPerDay[level]
	if !ok {
		minPerDay = constants.MinExercisesPerDay["beginner"]
	}

	return WorkoutPlanVars{
		Gender:             gender,
		Level:              level,
		Goal:               goal,
		Split:              split,
		Days:               days,
		MinExercisesPerDay: minPerDay,
		Sets:               policy.Sets,
		Reps:               policy.Reps,
		Rest:               policy.Rest,
		LevelGuidance:      levelGuidance(level),
		MuscleGroups:       constants.MuscleGroups,
		AllowedExercises:   allowed,
	}
}

func levelGuidance(level string) string {
	switch level {
	case "advanced":
		return "Use the upper end of the set range and include compound lifts first each day."
	case "intermediate":
		return "Use the middle of the set range and mix compound and isolation movements."
	default:
		return "Use the lower end of the set range and prefer simple, stable movements."
	}
}

func (pb *PromptBuilder) BuildMealPlan(vars MealPlanVars) (Prompt, error) {
	return pb.Render(TemplateMealPlan, vars)
}

func (pb *PromptBuilder) BuildWorkoutPlan(vars WorkoutPlanVars) (Prompt, error) {
	return pb.Render(TemplateWorkoutPlan, vars)
}
