package healthapi

// Shapes returned by the health data API. The server forwards upstream bodies
// untouched; these types document the contract and build the error envelopes.

// ValueUnit is a measurement with its unit, e.g. {"value": 5.2, "unit": "km"}
type ValueUnit struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// WorkoutSummary holds per-workout heart rate and calorie totals
type WorkoutSummary struct {
	AvgHeartRate  int `json:"avg_heart_rate"`
	MaxHeartRate  int `json:"max_heart_rate"`
	MinHeartRate  int `json:"min_heart_rate"`
	TotalCalories int `json:"total_calories"`
}

// Workout is one entry of a workouts response
type Workout struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Location           string         `json:"location"`
	Start              string         `json:"start"`
	End                string         `json:"end"`
	Duration           int            `json:"duration"`
	Distance           ValueUnit      `json:"distance"`
	ActiveEnergyBurned ValueUnit      `json:"active_energy_burned"`
	Intensity          ValueUnit      `json:"intensity"`
	Temperature        ValueUnit      `json:"temperature"`
	Humidity           ValueUnit      `json:"humidity"`
	Source             string         `json:"source"`
	Summary            WorkoutSummary `json:"summary"`
}

// WorkoutDateRange is the period covered by a workouts response
type WorkoutDateRange struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	DurationDays int    `json:"duration_days"`
}

// WorkoutMeta describes a workouts response
type WorkoutMeta struct {
	RequestedAt string                 `json:"requested_at"`
	Filters     map[string]interface{} `json:"filters"`
	ResultCount int                    `json:"result_count"`
	DateRange   WorkoutDateRange       `json:"date_range"`
}

// WorkoutResponse is the body of GET /api/v1/workouts
type WorkoutResponse struct {
	Data []Workout   `json:"data"`
	Meta WorkoutMeta `json:"meta"`
}

// HeartRateSummary aggregates a heart rate response
type HeartRateSummary struct {
	TotalRecords    int     `json:"total_records"`
	AvgHeartRate    float64 `json:"avg_heart_rate"`
	MaxHeartRate    float64 `json:"max_heart_rate"`
	MinHeartRate    float64 `json:"min_heart_rate"`
	AvgRecoveryRate float64 `json:"avg_recovery_rate"`
	MaxRecoveryRate float64 `json:"max_recovery_rate"`
	MinRecoveryRate float64 `json:"min_recovery_rate"`
}

// HeartRateMeta describes a heart rate response. Its date range is free-form.
type HeartRateMeta struct {
	RequestedAt string                 `json:"requested_at"`
	Filters     map[string]interface{} `json:"filters"`
	ResultCount int                    `json:"result_count"`
	DateRange   map[string]interface{} `json:"date_range"`
}

// HeartRateResponse is the body of GET /api/v1/heart-rate
type HeartRateResponse struct {
	Data         []map[string]interface{} `json:"data"`
	RecoveryData []map[string]interface{} `json:"recovery_data"`
	Summary      HeartRateSummary         `json:"summary"`
	Meta         HeartRateMeta            `json:"meta"`
}

// EmptyWorkoutMeta is the zero-valued metadata used in error envelopes
func EmptyWorkoutMeta() WorkoutMeta {
	return WorkoutMeta{
		Filters: map[string]interface{}{},
	}
}

// EmptyHeartRateMeta is the zero-valued metadata used in error envelopes
func EmptyHeartRateMeta() HeartRateMeta {
	return HeartRateMeta{
		Filters:   map[string]interface{}{},
		DateRange: map[string]interface{}{},
	}
}
