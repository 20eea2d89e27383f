package constants

import "time"

var CatalogConfig = struct {
	BaseURL            string
	PageSize           int
	MaxPages           int
	RequestTimeout     time.Duration
	LanguageCode       int
	NoDescription      string
	UnknownCategory    string
	WarmupTimeout      time.Duration
	BuildDetachTimeout time.Duration
}{
	BaseURL:            "https://wger.de/api/v2/exerciseinfo/",
	PageSize:           200,
	MaxPages:           50,
	RequestTimeout:     15 * time.Second,
	LanguageCode:       2, // wger language id for English
	NoDescription:      "No description available",
	UnknownCategory:    "Unknown",
	WarmupTimeout:      5 * time.Minute,
	BuildDetachTimeout: 10 * time.Minute, // upper bound for a build nobody waits on anymore
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	RateLimitTimeout:    1 * time.Hour,
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var ModelDefaults = struct {
	GeminiModel   string
	OpenAIModel   string
	PingTimeout   time.Duration
	InvokeTimeout time.Duration
	PreviewLength int
}{
	GeminiModel:   "gemini-2.5-flash",
	OpenAIModel:   "gpt-4.1-mini",
	PingTimeout:   5 * time.Second,
	InvokeTimeout: 2 * time.Minute,
	PreviewLength: 200,
}

var PlanLimits = struct {
	MinDays        int
	MaxDays        int
	MaxAge         float64
	MaxWeightKg    float64
	MaxHeightCm    float64
	MaxFieldLength int
	MaxSets        int
}{
	MinDays:        1,
	MaxDays:        7,
	MaxAge:         120,
	MaxWeightKg:    500,
	MaxHeightCm:    300,
	MaxFieldLength: 64,
	MaxSets:        100,
}

// MinExercisesPerDay is the floor the workout prompt asks for, keyed by level.
var MinExercisesPerDay = map[string]int{
	"beginner":     4,
	"intermediate": 5,
	"advanced":     6,
}

// MuscleGroups is the taxonomy the workout prompt uses to balance each day.
var MuscleGroups = []string{
	"Chest",
	"Back",
	"Shoulders",
	"Biceps",
	"Triceps",
	"Quadriceps",
	"Hamstrings",
	"Glutes",
	"Calves",
	"Core",
}

type SetRepPolicy struct {
	Sets string
	Reps string
	Rest string
}

// SetRepPolicies holds the sets/reps guidance per training goal.
var SetRepPolicies = map[string]SetRepPolicy{
	"muscle-gain": {Sets: "3-4", Reps: "8-12", Rest: "60-90 seconds"},
	"strength":    {Sets: "4-5", Reps: "3-6", Rest: "2-3 minutes"},
	"weight-loss": {Sets: "3", Reps: "12-15", Rest: "30-45 seconds"},
}

var DefaultSetRepPolicy = SetRepPolicy{Sets: "3", Reps: "8-12", Rest: "60-90 seconds"}

var HTTPConfig = struct {
	StartupTimeout    time.Duration
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
}{
	StartupTimeout:    30 * time.Second,
	ShutdownTimeout:   10 * time.Second,
	ReadHeaderTimeout: 10 * time.Second,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
	KeyPrefix    string
}{
	ReadyTimeout: 5 * time.Second,
	KeyPrefix:    "fitplan:plan:",
}
