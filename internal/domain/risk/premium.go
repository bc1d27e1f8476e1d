package risk

import "github.com/shopspring/decimal"

var basePremiums = map[string]decimal.Decimal{
	TypeAuto:     decimal.NewFromInt(120),
	TypeHealth:   decimal.NewFromInt(180),
	TypeLife:     decimal.NewFromInt(200),
	TypeProperty: decimal.NewFromInt(160),
}

var defaultBasePremium = decimal.NewFromInt(150)

type Premium struct {
	Min         decimal.Decimal `json:"min"`
	Max         decimal.Decimal `json:"max"`
	Recommended decimal.Decimal `json:"recommended"`
}

// EstimatePremium scales the line's base premium by (1 + score/100) and
// brackets it with a ±10% band. All amounts are rounded to cents.
func EstimatePremium(insType string, score float64) Premium {
	base, ok := basePremiums[insType]
	if !ok {
		base = defaultBasePremium
	}
	multiplier := decimal.NewFromFloat(score).Div(decimal.NewFromInt(100)).Add(decimal.NewFromInt(1))
	rec := base.Mul(multiplier)
	return Premium{
		Min:         rec.Mul(decimal.RequireFromString("0.9")).Round(2),
		Max:         rec.Mul(decimal.RequireFromString("1.1")).Round(2),
		Recommended: rec.Round(2),
	}
}

// BandAround brackets a fixed amount with the same ±10% band.
func BandAround(amount decimal.Decimal) Premium {
	return Premium{
		Min:         amount.Mul(decimal.RequireFromString("0.9")).Round(2),
		Max:         amount.Mul(decimal.RequireFromString("1.1")).Round(2),
		Recommended: amount.Round(2),
	}
}
