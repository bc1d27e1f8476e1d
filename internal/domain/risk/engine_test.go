package risk

import (
	"math"
	"reflect"
	"strings"
	"testing"
	"time"
)

func fixedEngine() *Engine {
	return NewEngine(WithClock(func() time.Time {
		return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	}))
}

func approx(a, b float64) bool { return math.Abs(a-b) < 0.011 }

func TestCalculate_AutoExample(t *testing.T) {
	got := fixedEngine().Calculate(map[string]any{
		"insuranceType":  "Auto",
		"income":         50000,
		"debt":           5000,
		"coverageNeeds":  20000,
		"drivingHistory": "accidents",
		"annualMileage":  40000,
		"vehicleYear":    2010,
		"age":            19,
	})

	if got.Type != TypeAuto {
		t.Fatalf("type = %q", got.Type)
	}
	wantComponents := map[string]float64{
		"dti":                9.09,
		"coverage_to_income": 10.34,
		"coverage_to_asset":  100,
		"income_level":       50,
		"driving_history":    85,
		"annual_mileage":     80,
		"vehicle_age":        70,
		"driver_age":         80,
	}
	for k, v := range wantComponents {
		if !approx(got.Components[k], v) {
			t.Fatalf("component %s = %v, want %v", k, got.Components[k], v)
		}
	}
	if !approx(got.Score, 55.57) {
		t.Fatalf("score = %v, want ~55.57", got.Score)
	}
	if got.Level != "medium" {
		t.Fatalf("level = %q", got.Level)
	}
	if len(got.Drivers) != 4 {
		t.Fatalf("drivers = %v", got.Drivers)
	}
	if !strings.HasPrefix(got.Drivers[0], "Driving History: +") {
		t.Fatalf("top driver = %q", got.Drivers[0])
	}
	if got.Drivers[1] != "Annual Mileage: +8.0" || got.Drivers[2] != "Driver Age: +8.0" {
		t.Fatalf("tie order not stable: %v", got.Drivers)
	}
}

func TestCalculate_Health(t *testing.T) {
	got := Calculate(map[string]any{
		"insuranceType":         "health",
		"income":                "100k",
		"debt":                  "$10,000",
		"coverageNeeds":         200000,
		"assetValuation":        500000,
		"preExistingConditions": "diabetes, asthma",
		"familyHistory":         "heart disease",
		"age":                   40,
	})
	if got.Components["pre_existing"] != 30 || got.Components["family_history"] != 30 || got.Components["medical_history"] != 0 {
		t.Fatalf("components = %v", got.Components)
	}
	if !approx(got.Score, 34.37) {
		t.Fatalf("score = %v, want ~34.37", got.Score)
	}
}

func TestCalculate_LifeLookups(t *testing.T) {
	tests := []struct {
		name          string
		smoking, cond any
		wantSmoke     float64
		wantCond      float64
	}{
		{"known", "Non-Smoker", "excellent", 10, 10},
		{"regular smoker", "regular smoker", "poor", 80, 80},
		{"unknown values", "vaper", "meh", 30, 40},
		{"absent", nil, nil, 10, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := map[string]any{"insuranceType": "life", "income": 60000, "age": 30}
			if tt.smoking != nil {
				data["smokingStatus"] = tt.smoking
			}
			if tt.cond != nil {
				data["healthCondition"] = tt.cond
			}
			got := Calculate(data)
			if got.Components["smoking"] != tt.wantSmoke || got.Components["health_condition"] != tt.wantCond {
				t.Fatalf("components = %v", got.Components)
			}
		})
	}
}

func TestCalculate_PropertyAgeOnlyWhenPresent(t *testing.T) {
	base := map[string]any{
		"insuranceType":  "property",
		"income":         90000,
		"coverageAmount": 300000,
		"propertyValue":  400000,
		"propertyType":   "castle",
	}
	got := Calculate(base)
	if _, ok := got.Components["age"]; ok {
		t.Fatalf("age component should be absent: %v", got.Components)
	}
	if got.Components["property_type"] != 30 || got.Components["construction_material"] != 35 {
		t.Fatalf("lookup defaults wrong: %v", got.Components)
	}
	// 0.75 on the 0.2..1.5 band
	if !approx(got.Components["coverage_to_asset"], 42.31) {
		t.Fatalf("coverage_to_asset = %v", got.Components["coverage_to_asset"])
	}

	base["age"] = 45
	if got := Calculate(base); got.Components["age"] != 45 {
		t.Fatalf("age component = %v", got.Components["age"])
	}
}

func TestCalculate_IncomeFloors(t *testing.T) {
	tests := []struct {
		name   string
		income any
		want   float64
	}{
		{"missing income", nil, 80},
		{"zero income", 0, 80},
		{"negative income", -100, 80},
		{"below 10k", 5000, 55},
		{"below 20k", 15000, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := map[string]any{"age": 20, "debt": 0, "coverageNeeds": 0}
			if tt.income != nil {
				data["income"] = tt.income
			}
			got := Calculate(data)
			if got.Score < tt.want {
				t.Fatalf("score = %v, want >= %v", got.Score, tt.want)
			}
		})
	}

	// low-leverage profile lands exactly on the floor
	got := Calculate(map[string]any{"income": 15000, "age": 20})
	if got.Score != 40 {
		t.Fatalf("score = %v, want 40", got.Score)
	}
}

func TestCalculate_ScoreBoundsAndPurity(t *testing.T) {
	inputs := []map[string]any{
		{},
		{"insuranceType": "auto", "income": "abc", "debt": "1e9", "vehicleYear": 0},
		{"insuranceType": "health", "income": 1, "debt": 1e12, "coverageNeeds": 1e12, "preExistingConditions": strings.Repeat("x ", 50)},
		{"insuranceType": "life", "income": 1e9, "age": 250},
		{"insuranceType": "property", "income": 40000, "coverageNeeds": "2,000k", "assetValuation": 0},
		{"insuranceType": "travel", "income": 55000, "age": -4},
	}
	eng := fixedEngine()
	for i, in := range inputs {
		a := eng.Calculate(in)
		b := eng.Calculate(in)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("input %d not deterministic: %+v vs %+v", i, a, b)
		}
		if a.Score < 0 || a.Score > 100 {
			t.Fatalf("input %d score out of range: %v", i, a.Score)
		}
		for k, v := range a.Components {
			if v < 0 || v > 100 {
				t.Fatalf("input %d component %s out of range: %v", i, k, v)
			}
		}
	}
	unknown := eng.Calculate(inputs[5])
	if unknown.Type != "travel" {
		t.Fatalf("unknown line should keep its declared type, got %q", unknown.Type)
	}
	if _, ok := unknown.Components["age"]; !ok || len(unknown.Components) != 5 {
		t.Fatalf("unknown line should use generic components, got %v", unknown.Components)
	}
}

func TestCalculate_DeclaredTypeKept(t *testing.T) {
	eng := fixedEngine()
	tests := []struct {
		declared string
		wantType string
		wantLine string
	}{
		{"", TypeGeneric, TypeGeneric},
		{"  Travel ", "travel", TypeGeneric},
		{"PROPERTY", TypeProperty, TypeProperty},
	}
	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			got := eng.Calculate(map[string]any{"insuranceType": tt.declared, "income": 60000, "age": 40})
			if got.Type != tt.wantType {
				t.Fatalf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if line := WeightedLine(got.Type); line != tt.wantLine {
				t.Fatalf("WeightedLine = %q, want %q", line, tt.wantLine)
			}
		})
	}

	travel := EstimatePremium("travel", 50)
	fallback := EstimatePremium(TypeGeneric, 50)
	if !travel.Recommended.Equal(fallback.Recommended) {
		t.Fatalf("unknown line premium %s, want default base %s", travel.Recommended, fallback.Recommended)
	}
}

func TestCalculate_DoesNotMutateInput(t *testing.T) {
	in := map[string]any{"insuranceType": "auto", "income": "50,000"}
	Calculate(in)
	if len(in) != 2 || in["income"] != "50,000" {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestLevel(t *testing.T) {
	for score, want := range map[float64]string{0: "low", 29.99: "low", 30: "medium", 69.99: "medium", 70: "high", 100: "high"} {
		if got := Level(score); got != want {
			t.Fatalf("Level(%v) = %q, want %q", score, got, want)
		}
	}
}
