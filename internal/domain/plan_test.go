package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kapu/fitplan-engine-go/pkg/errors"
)

func TestFlexNumberUnmarshal(t *testing.T) {
	tests := []struct {
		input   string
		want    FlexNumber
		wantErr bool
	}{
		{`42`, Num(42), false},
		{`72.5`, Num(72.5), false},
		{`"5"`, Num(5), false},
		{`" 180 "`, Num(180), false},
		{`""`, FlexNumber{}, false},
		{`null`, FlexNumber{}, false},
		{`"five"`, FlexNumber{}, true},
		{`true`, FlexNumber{}, true},
	}

	for _, tt := range tests {
		var got FlexNumber
		err := json.Unmarshal([]byte(tt.input), &got)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestMealPlanRequestValidate(t *testing.T) {
	valid := MealPlanRequest{Age: Num(30), Weight: Num(70), Height: Num(175), Goal: "maintain", Diet: "vegan"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]func(r *MealPlanRequest){
		"missing age":     func(r *MealPlanRequest) { r.Age = FlexNumber{} },
		"zero weight":     func(r *MealPlanRequest) { r.Weight = Num(0) },
		"negative height": func(r *MealPlanRequest) { r.Height = Num(-1) },
		"blank goal":      func(r *MealPlanRequest) { r.Goal = "" },
		"blank diet":      func(r *MealPlanRequest) { r.Diet = "" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			r := valid
			mutate(&r)
			if errors.CodeOf(r.Validate()) != errors.CodeInvalidRequest {
				t.Fatalf("expected INVALID_REQUEST")
			}
		})
	}
}

func TestWorkoutPlanRequestValidate(t *testing.T) {
	valid := WorkoutPlanRequest{Gender: "male", Level: "advanced", Goal: "muscle-gain", Days: Num(5), Split: "push-pull-legs"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, days := range []FlexNumber{{}, Num(0), Num(8), Num(2.5)} {
		r := valid
		r.Days = days
		if errors.CodeOf(r.Validate()) != errors.CodeInvalidRequest {
			t.Errorf("expected INVALID_REQUEST for days=%+v", days)
		}
	}
}

func TestWorkoutPlanRequestNormalize(t *testing.T) {
	r := WorkoutPlanRequest{Gender: " Female ", Level: "BEGINNER", Goal: "Strength", Days: Num(3), Split: " Full-Body"}.Normalize()

	fields := r.Fields()
	if fields["gender"] != "female" || fields["level"] != "beginner" || fields["split"] != "full-body" {
		t.Errorf("unexpected fields %v", fields)
	}
	if fields["days"] != 3 {
		t.Errorf("expected integer days, got %v", fields["days"])
	}
}

func TestCatalogIndexContains(t *testing.T) {
	idx := NewCatalogIndex([]string{"Bench Press", "Deadlift"}, time.Now(), 1, false)

	if !idx.Contains("Bench Press") {
		t.Errorf("expected exact match")
	}
	if idx.Contains("bench press") {
		t.Errorf("membership must be case-sensitive")
	}

	var nilIdx *CatalogIndex
	if nilIdx.Contains("Deadlift") || nilIdx.Len() != 0 {
		t.Errorf("nil index must be empty")
	}
}
