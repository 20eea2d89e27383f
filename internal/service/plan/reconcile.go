package plan

import "github.com/kapu/fitplan-engine-go/internal/domain"

// reconcile removes every exercise whose name is not an exact member of idx.
// Days are kept even when all of their exercises are removed.
func reconcile(plan *domain.WorkoutPlan, idx *domain.CatalogIndex) []domain.DroppedExercise {
	var dropped []domain.DroppedExercise

	for i := range plan.WorkoutDays {
		day := &plan.WorkoutDays[i]
		kept := make([]domain.WorkoutExercise, 0, len(day.Exercises))
		for _, exercise := range day.Exercises {
			if idx.Contains(exercise.Name) {
				kept = append(kept, exercise)
				continue
			}
			dropped = append(dropped, domain.DroppedExercise{Day: day.Day, Name: exercise.Name})
		}
		day.Exercises = kept
	}

	return dropped
}
