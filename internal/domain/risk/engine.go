package risk

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Insurance lines with dedicated scoring.
const (
	TypeAuto     = "auto"
	TypeHealth   = "health"
	TypeLife     = "life"
	TypeProperty = "property"
	TypeGeneric  = "generic"
)

const maxDrivers = 4

// Assessment is the scoring result. Components are 0-100 risk contributions.
type Assessment struct {
	Type       string             `json:"type"`
	Score      float64            `json:"score"`
	Level      string             `json:"risk_level"`
	Components map[string]float64 `json:"components"`
	Drivers    []string           `json:"drivers"`
}

type Engine struct {
	now func() time.Time
}

type Option func(*Engine)

// WithClock pins "now" (vehicle age depends on the current year).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Calculate scores data with the wall clock.
func Calculate(data map[string]any) Assessment { return defaultEngine.Calculate(data) }

// Level buckets a score: <30 low, <70 medium, otherwise high.
func Level(score float64) string {
	switch {
	case score < 30:
		return "low"
	case score < 70:
		return "medium"
	default:
		return "high"
	}
}

// components keeps insertion order so ties in driver ranking are stable.
type components struct {
	names  []string
	values map[string]float64
}

func (c *components) set(name string, v float64) {
	if _, ok := c.values[name]; !ok {
		c.names = append(c.names, name)
	}
	c.values[name] = round2(v)
}

// WeightedLine names the weight set used for insType: one of the known lines,
// or TypeGeneric for anything else.
func WeightedLine(insType string) string {
	switch insType {
	case TypeAuto, TypeHealth, TypeLife, TypeProperty:
		return insType
	}
	return TypeGeneric
}

func (e *Engine) Calculate(data map[string]any) Assessment {
	if data == nil {
		data = map[string]any{}
	}
	insType := strings.ToLower(text(data, "insuranceType"))
	if insType == "" {
		insType = TypeGeneric
	}

	income := ToNumber(first(data, "income", "annualIncome"), 0)
	asset := ToNumber(first(data, "assetValuation", "propertyValue"), 1)
	if asset == 0 {
		asset = 1
	}
	debt := ToNumber(data["debt"], 0)
	coverage := ToNumber(first(data, "coverageNeeds", "coverageAmount"), 0)

	dti, covIncome := math.Inf(1), math.Inf(1)
	if income > 0 {
		dti = debt / income
		covIncome = coverage / income
	}
	covAsset := 0.0
	if asset > 0 {
		covAsset = coverage / asset
	}

	c := &components{values: map[string]float64{}}
	c.set("dti", ramp(dti, 0.05, 0.6))
	c.set("coverage_to_income", ramp(covIncome, 0.1, 3.0))
	c.set("coverage_to_asset", ramp(covAsset, 0.05, 1.5))
	c.set("income_level", incomeLevel(income))

	var weights map[string]float64
	switch insType {
	case TypeAuto:
		weights = e.auto(data, c)
	case TypeHealth:
		weights = health(data, c)
	case TypeLife:
		weights = life(data, c)
	case TypeProperty:
		weights = property(data, c, coverage, asset)
	default:
		weights = generic(data, c)
	}

	score := 0.0
	for _, name := range c.names {
		score += weights[name] * c.values[name]
	}
	score = clamp(score)

	// income floors always win over the weighted sum
	switch {
	case income <= 0:
		score = math.Max(score, 80)
	case income < 10000:
		score = math.Max(score, 55)
	case income < 20000:
		score = math.Max(score, 40)
	}
	score = round2(score)

	return Assessment{
		Type:       insType,
		Score:      score,
		Level:      Level(score),
		Components: c.values,
		Drivers:    drivers(c, weights),
	}
}

func (e *Engine) auto(data map[string]any, c *components) map[string]float64 {
	hist := map[string]float64{
		"clean":            10,
		"minor":            40,
		"minor violations": 40,
		"major":            75,
		"major violations": 75,
		"accidents":        85,
	}
	histScore, ok := hist[strings.ToLower(text(data, "drivingHistory"))]
	if !ok {
		histScore = 30
	}

	miles := ToNumber(data["annualMileage"], 12000)

	year := e.now().Year()
	vy := ToNumber(data["vehicleYear"], float64(year))
	vehicleAge := math.Max(0, float64(year-int(vy)))

	var driverAge float64
	switch age := ToNumber(data["age"], 30); {
	case age <= 20:
		driverAge = 80
	case age <= 25:
		driverAge = 60
	case age <= 65:
		driverAge = 20
	default:
		driverAge = 50
	}

	c.set("driving_history", histScore)
	c.set("annual_mileage", clamp(miles/50000*100))
	c.set("vehicle_age", clamp(vehicleAge/20*100))
	c.set("driver_age", driverAge)

	return map[string]float64{
		"driving_history":    0.25,
		"annual_mileage":     0.10,
		"vehicle_age":        0.08,
		"driver_age":         0.10,
		"coverage_to_income": 0.18,
		"coverage_to_asset":  0.05,
		"dti":                0.15,
		"income_level":       0.09,
	}
}

func health(data map[string]any, c *components) map[string]float64 {
	pre := strings.Fields(strings.ReplaceAll(text(data, "preExistingConditions"), ",", " "))

	family := 0.0
	if text(data, "familyHistory") != "" {
		family = 30
	}

	medical := 0.0
	switch med := text(data, "medicalHistory"); {
	case len(med) > 50:
		medical = 20
	case med != "":
		medical = 10
	}

	c.set("pre_existing", clamp(float64(len(pre))*15))
	c.set("family_history", family)
	c.set("medical_history", medical)
	c.set("age", clamp(ToNumber(data["age"], 35)))

	return map[string]float64{
		"pre_existing":       0.25,
		"family_history":     0.07,
		"medical_history":    0.08,
		"age":                0.16,
		"coverage_to_income": 0.20,
		"dti":                0.10,
		"coverage_to_asset":  0.05,
		"income_level":       0.09,
	}
}

func life(data map[string]any, c *components) map[string]float64 {
	smoking := strings.ToLower(text(data, "smokingStatus"))
	smokeScore := lookup(smoking, map[string]float64{
		"non-smoker":        10,
		"occasional":        40,
		"occasional smoker": 40,
		"regular":           80,
		"regular smoker":    80,
	}, 30, 10)

	cond := strings.ToLower(text(data, "healthCondition"))
	condScore := lookup(cond, map[string]float64{
		"excellent": 10,
		"good":      25,
		"fair":      50,
		"poor":      80,
	}, 40, 30)

	c.set("smoking", smokeScore)
	c.set("health_condition", condScore)
	c.set("age", clamp(ToNumber(data["age"], 35)))

	return map[string]float64{
		"age":                0.25,
		"smoking":            0.25,
		"health_condition":   0.20,
		"coverage_to_income": 0.15,
		"dti":                0.10,
		"income_level":       0.05,
	}
}

func property(data map[string]any, c *components, coverage, asset float64) map[string]float64 {
	ptype := lookup(strings.ToLower(text(data, "propertyType")), map[string]float64{
		"apartment": 20,
		"condo":     25,
		"house":     35,
		"villa":     45,
	}, 30, 35)

	material := lookup(strings.ToLower(text(data, "constructionMaterial")), map[string]float64{
		"concrete": 10,
		"steel":    15,
		"brick":    20,
		"wood":     50,
	}, 30, 35)

	c.set("property_type", ptype)
	c.set("construction_material", material)
	// stricter band for property lines
	c.set("coverage_to_asset", ramp(coverage/asset, 0.2, 1.5))
	if age := ToNumber(data["age"], 0); age > 0 {
		c.set("age", clamp(age))
	}

	return map[string]float64{
		"property_type":         0.15,
		"construction_material": 0.10,
		"coverage_to_asset":     0.25,
		"coverage_to_income":    0.15,
		"dti":                   0.15,
		"age":                   0.05,
		"income_level":          0.15,
	}
}

func generic(data map[string]any, c *components) map[string]float64 {
	c.set("age", clamp(ToNumber(data["age"], 35)))
	return map[string]float64{
		"age":                0.20,
		"coverage_to_income": 0.35,
		"coverage_to_asset":  0.15,
		"dti":                0.15,
		"income_level":       0.15,
	}
}

// lookup resolves key in table; unknown non-empty keys get unknown, empty gets absent.
func lookup(key string, table map[string]float64, unknown, absent float64) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	if key != "" {
		return unknown
	}
	return absent
}

func incomeLevel(income float64) float64 {
	switch {
	case income <= 0:
		return 100
	case income <= 10000:
		return 95
	case income <= 20000:
		return 85
	case income <= 40000:
		return 70
	case income <= 80000:
		return 50
	case income <= 120000:
		return 35
	default:
		return 20
	}
}

// ramp maps ratio linearly onto 0-100 between low and high.
func ramp(ratio, low, high float64) float64 {
	if ratio <= low {
		return 0
	}
	if ratio >= high {
		return 100
	}
	return (ratio - low) / (high - low) * 100
}

func drivers(c *components, weights map[string]float64) []string {
	type contrib struct {
		name string
		val  float64
	}
	list := make([]contrib, 0, len(c.names))
	for _, n := range c.names {
		list = append(list, contrib{n, c.values[n] * weights[n]})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].val > list[j].val })

	if len(list) > maxDrivers {
		list = list[:maxDrivers]
	}
	out := make([]string, 0, len(list))
	for _, ct := range list {
		out = append(out, fmt.Sprintf("%s: +%.1f", driverLabel(ct.name), ct.val))
	}
	return out
}

func driverLabel(name string) string {
	if name == "dti" {
		return "DTI"
	}
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func clamp(x float64) float64 { return math.Max(0, math.Min(100, x)) }

func round2(x float64) float64 { return math.Round(x*100) / 100 }
