package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/fitplan-engine-go/internal/constants"
	"github.com/kapu/fitplan-engine-go/pkg/errors"
)

type PlanKind string

const (
	PlanKindMeal    PlanKind = "meal"
	PlanKindWorkout PlanKind = "workout"
)

func (k PlanKind) String() string {
	return string(k)
}

type PlanSource string

const (
	PlanSourceCache     PlanSource = "cache"
	PlanSourceGenerated PlanSource = "generated"
)

// FlexNumber accepts a JSON number or a numeric string. The web forms post
// their inputs as strings. Absent and null decode to Set == false.
type FlexNumber struct {
	Value float64
	Set   bool
}

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = FlexNumber{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = FlexNumber{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*n = FlexNumber{Value: v, Set: true}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = FlexNumber{Value: v, Set: true}
	return nil
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func Num(v float64) FlexNumber {
	return FlexNumber{Value: v, Set: true}
}

type MealPlanRequest struct {
	Age    FlexNumber `json:"age"`
	Weight FlexNumber `json:"weight"`
	Height FlexNumber `json:"height"`
	Goal   string     `json:"goal"`
	Diet   string     `json:"diet"`
}

// Normalize trims and lower-cases the free-text fields.
func (r MealPlanRequest) Normalize() MealPlanRequest {
	r.Goal = normalizeField(r.Goal)
	r.Diet = normalizeField(r.Diet)
	return r
}

func (r MealPlanRequest) Validate() error {
	if err := requirePositive("age", r.Age, constants.PlanLimits.MaxAge); err != nil {
		return err
	}
	if err := requirePositive("weight", r.Weight, constants.PlanLimits.MaxWeightKg); err != nil {
		return err
	}
	if err := requirePositive("height", r.Height, constants.PlanLimits.MaxHeightCm); err != nil {
		return err
	}
	if err := requireText("goal", r.Goal); err != nil {
		return err
	}
	return requireText("diet", r.Diet)
}

// Fields returns every parameter keyed by its JSON name, for fingerprinting.
func (r MealPlanRequest) Fields() map[string]any {
	return map[string]any{
		"age":    r.Age.Value,
		"weight": r.Weight.Value,
		"height": r.Height.Value,
		"goal":   r.Goal,
		"diet":   r.Diet,
	}
}

type WorkoutPlanRequest struct {
	Gender string     `json:"gender"`
	Level  string     `json:"level"`
	Goal   string     `json:"goal"`
	Days   FlexNumber `json:"days"`
	Split  string     `json:"split"`
}

func (r WorkoutPlanRequest) Normalize() WorkoutPlanRequest {
	r.Gender = normalizeField(r.Gender)
	r.Level = normalizeField(r.Level)
	r.Goal = normalizeField(r.Goal)
	r.Split = normalizeField(r.Split)
	return r
}

func (r WorkoutPlanRequest) Validate() error {
	if err := requireText("gender", r.Gender); err != nil {
		return err
	}
	if err := requireText("level", r.Level); err != nil {
		return err
	}
	if err := requireText("goal", r.Goal); err != nil {
		return err
	}
	if !r.Days.Set {
		return errors.NewInvalidRequestError("days is required", "days", nil)
	}
	days := r.Days.Value
	if days != math.Trunc(days) || days < float64(constants.PlanLimits.MinDays) || days > float64(constants.PlanLimits.MaxDays) {
		return errors.NewInvalidRequestError(
			fmt.Sprintf("days must be a whole number between %d and %d", constants.PlanLimits.MinDays, constants.PlanLimits.MaxDays),
			"days", days)
	}
	return requireText("split", r.Split)
}

func (r WorkoutPlanRequest) DayCount() int {
	return int(r.Days.Value)
}

func (r WorkoutPlanRequest) Fields() map[string]any {
	return map[string]any{
		"gender": r.Gender,
		"level":  r.Level,
		"goal":   r.Goal,
		"days":   r.DayCount(),
		"split":  r.Split,
	}
}

type Meal struct {
	Meal     string  `json:"meal"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type MealPlan struct {
	Breakfast     Meal    `json:"breakfast"`
	Lunch         Meal    `json:"lunch"`
	Dinner        Meal    `json:"dinner"`
	Snacks        Meal    `json:"snacks"`
	TotalCalories float64 `json:"totalCalories"`
	TotalProtein  float64 `json:"totalProtein"`
	TotalCarbs    float64 `json:"totalCarbs"`
	TotalFat      float64 `json:"totalFat"`
}

type WorkoutExercise struct {
	Name  string `json:"name"`
	Sets  int    `json:"sets"`
	Reps  string `json:"reps"`
	Notes string `json:"notes,omitempty"`
}

// GeneratedWorkoutDay is one day of a workout plan. After reconciliation every
// exercise name is a member of the catalog index used for generation.
type GeneratedWorkoutDay struct {
	Day       string            `json:"day"`
	Exercises []WorkoutExercise `json:"exercises"`
}

type WorkoutPlan struct {
	WorkoutDays []GeneratedWorkoutDay `json:"workoutDays"`
}

// DroppedExercise records a generated exercise removed by reconciliation.
type DroppedExercise struct {
	Day  string `json:"day"`
	Name string `json:"name"`
}

// PlanCacheEntry is immutable once stored.
type PlanCacheEntry struct {
	Kind        PlanKind          `json:"kind"`
	Fingerprint string            `json:"fingerprint"`
	Plan        json.RawMessage   `json:"plan"`
	FetchedAt   time.Time         `json:"fetchedAt"`
	Provider    string            `json:"provider"`
	Model       string            `json:"model"`
	Dropped     []DroppedExercise `json:"dropped,omitempty"`
}

type PlanResult struct {
	Kind        PlanKind          `json:"kind"`
	Plan        json.RawMessage   `json:"plan"`
	Source      PlanSource        `json:"source"`
	FetchedAt   time.Time         `json:"fetchedAt"`
	Fingerprint string            `json:"fingerprint"`
	Provider    string            `json:"provider"`
	Model       string            `json:"model"`
	Dropped     []DroppedExercise `json:"droppedExercises,omitempty"`
}

func normalizeField(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func requireText(field, value string) error {
	if value == "" {
		return errors.NewInvalidRequestError(field+" is required", field, value)
	}
	if len(value) > constants.PlanLimits.MaxFieldLength {
		return errors.NewInvalidRequestError(field+" is too long", field, value)
	}
	return nil
}

func requirePositive(field string, n FlexNumber, max float64) error {
	if !n.Set {
		return errors.NewInvalidRequestError(field+" is required", field, nil)
	}
	if n.Value <= 0 || n.Value > max || math.IsNaN(n.Value) {
		return errors.NewInvalidRequestError(
			fmt.Sprintf("%s must be greater than 0 and at most %v", field, max), field, n.Value)
	}
	return nil
}
