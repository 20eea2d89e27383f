package plan

import (
	"fmt"
	"math"
	"strings"

	"github.com/kapu/fitplan-engine-go/internal/constants"
	"github.com/kapu/fitplan-engine-go/internal/domain"
	"github.com/kapu/fitplan-engine-go/pkg/errors"
)

var (
	mealSlots   = []string{"breakfast", "lunch", "dinner", "snacks"}
	mealMacros  = []string{"calories", "protein", "carbs", "fat"}
	totalFields = []string{"totalCalories", "totalProtein", "totalCarbs", "totalFat"}
)

// parseMealPlan checks the decoded model output field by field and builds
// the typed plan. The first violation is reported with its path.
func parseMealPlan(doc map[string]any) (*domain.MealPlan, error) {
	meals := make(map[string]domain.Meal, len(mealSlots))
	for _, slot := range mealSlots {
		obj, err := requireObject(doc, slot, slot)
		if err != nil {
			return nil, err
		}

		description, err := requireString(obj, "meal", slot+".meal", true)
		if err != nil {
			return nil, err
		}

		macros := make([]float64, len(mealMacros))
		for i, macro := range mealMacros {
			if macros[i], err = requireNumber(obj, macro, slot+"."+macro); err != nil {
				return nil, err
			}
		}

		meals[slot] = domain.Meal{
			Meal:     description,
			Calories: macros[0],
			Protein:  macros[1],
			Carbs:    macros[2],
			Fat:      macros[3],
		}
	}

	totals := make([]float64, len(totalFields))
	for i, field := range totalFields {
		var err error
		if totals[i], err = requireNumber(doc, field, field); err != nil {
			return nil, err
		}
	}

	return &domain.MealPlan{
		Breakfast:     meals["breakfast"],
		Lunch:         meals["lunch"],
		Dinner:        meals["dinner"],
		Snacks:        meals["snacks"],
		TotalCalories: totals[0],
		TotalProtein:  totals[1],
		TotalCarbs:    totals[2],
		TotalFat:      totals[3],
	}, nil
}

func parseWorkoutPlan(doc map[string]any) (*domain.WorkoutPlan, error) {
	rawDays, ok := doc["workoutDays"]
	if !ok || rawDays == nil {
		return nil, errors.NewSchemaValidationError("workoutDays is required", "workoutDays")
	}
	days, ok := rawDays.([]any)
	if !ok {
		return nil, errors.NewSchemaValidationError("workoutDays must be an array", "workoutDays")
	}
	if len(days) == 0 {
		return nil, errors.NewSchemaValidationError("workoutDays must not be empty", "workoutDays")
	}

	plan := &domain.WorkoutPlan{WorkoutDays: make([]domain.GeneratedWorkoutDay, 0, len(days))}
	for i, rawDay := range days {
		dayPath := fmt.Sprintf("workoutDays[%d]", i)
		day, ok := rawDay.(map[string]any)
		if !ok {
			return nil, errors.NewSchemaValidationError(dayPath+" must be an object", dayPath)
		}

		label, err := requireString(day, "day", dayPath+".day", false)
		if err != nil {
			return nil, err
		}

		exercisesPath := dayPath + ".exercises"
		rawExercises, ok := day["exercises"].([]any)
		if !ok {
			return nil, errors.NewSchemaValidationError(exercisesPath+" must be an array", exercisesPath)
		}

		exercises := make([]domain.WorkoutExercise, 0, len(rawExercises))
		for j, rawExercise := range rawExercises {
			exercise, err := parseExercise(rawExercise, fmt.Sprintf("%s[%d]", exercisesPath, j))
			if err != nil {
				return nil, err
			}
			exercises = append(exercises, exercise)
		}

		plan.WorkoutDays = append(plan.WorkoutDays, domain.GeneratedWorkoutDay{
			Day:       label,
			Exercises: exercises,
		})
	}

	return plan, nil
}

func parseExercise(raw any, path string) (domain.WorkoutExercise, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return domain.WorkoutExercise{}, errors.NewSchemaValidationError(path+" must be an object", path)
	}

	name, err := requireString(obj, "name", path+".name", true)
	if err != nil {
		return domain.WorkoutExercise{}, err
	}

	sets, err := requireNumber(obj, "sets", path+".sets")
	if err != nil {
		return domain.WorkoutExercise{}, err
	}
	if sets != math.Trunc(sets) || sets < 1 {
		return domain.WorkoutExercise{}, errors.NewSchemaValidationError(path+".sets must be a positive whole number", path+".sets")
	}
	if sets > float64(constants.PlanLimits.MaxSets) {
		return domain.WorkoutExercise{}, errors.NewSchemaValidationError(fmt.Sprintf("%s.sets must not exceed %d", path, constants.PlanLimits.MaxSets), path+".sets")
	}

	reps, err := requireString(obj, "reps", path+".reps", true)
	if err != nil {
		return domain.WorkoutExercise{}, err
	}

	var notes string
	if rawNotes, ok := obj["notes"]; ok && rawNotes != nil {
		if notes, ok = rawNotes.(string); !ok {
			return domain.WorkoutExercise{}, errors.NewSchemaValidationError(path+".notes must be a string", path+".notes")
		}
	}

	return domain.WorkoutExercise{
		Name:  name,
		Sets:  int(sets),
		Reps:  reps,
		Notes: strings.TrimSpace(notes),
	}, nil
}

func requireObject(doc map[string]any, key, path string) (map[string]any, error) {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return nil, errors.NewSchemaValidationError(path+" is required", path)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.NewSchemaValidationError(path+" must be an object", path)
	}
	return obj, nil
}

func requireString(doc map[string]any, key, path string, nonEmpty bool) (string, error) {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return "", errors.NewSchemaValidationError(path+" is required", path)
	}
	s, ok := raw.(string)
	if !ok {
		return "", errors.NewSchemaValidationError(path+" must be a string", path)
	}
	s = strings.TrimSpace(s)
	if nonEmpty && s == "" {
		return "", errors.NewSchemaValidationError(path+" must not be empty", path)
	}
	return s, nil
}

func requireNumber(doc map[string]any, key, path string) (float64, error) {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return 0, errors.NewSchemaValidationError(path+" is required", path)
	}
	n, ok := raw.(float64)
	if !ok {
		return 0, errors.NewSchemaValidationError(path+" must be a number", path)
	}
	return n, nil
}
