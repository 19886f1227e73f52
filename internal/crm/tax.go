package crm

import (
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/crmai/internal/models"
)

// Regime is a French micro-enterprise tax regime.
type Regime string

const (
	RegimeMicroBNC         Regime = "micro-bnc"
	RegimeMicroBICServices Regime = "micro-bic-services"
	RegimeMicroBICCommerce Regime = "micro-bic-commerce"
)

// regimeRates are the 2024 rates of a regime.
type regimeRates struct {
	label     string
	social    float64 // URSSAF contributions on revenue
	allowance float64 // flat deduction before income tax
	levy      float64 // versement libératoire option
	ceiling   float64
}

var regimes = map[Regime]regimeRates{
	RegimeMicroBNC:         {"Micro-BNC (Professions libérales)", 0.232, 0.34, 0.022, 77700},
	RegimeMicroBICServices: {"Micro-BIC (Prestations de services)", 0.232, 0.50, 0.017, 77700},
	RegimeMicroBICCommerce: {"Micro-BIC (Vente de marchandises)", 0.129, 0.71, 0.01, 188700},
}

// 2024 income tax brackets, per household part.
var taxBrackets = []struct{ min, max, rate float64 }{
	{0, 11294, 0},
	{11294, 28797, 0.11},
	{28797, 82341, 0.30},
	{82341, 177106, 0.41},
	{177106, math.Inf(1), 0.45},
}

// quarterProvision is the simplified income tax set aside per quarter.
const quarterProvision = 0.15

var quarterLabels = [...]string{"T1 (Jan–Mar)", "T2 (Apr–Jun)", "T3 (Jul–Sep)", "T4 (Oct–Déc)"}

// TaxInput parameterizes a tax estimate. Parts defaults to 1.
type TaxInput struct {
	Year         int     `json:"year"`
	Regime       Regime  `json:"regime"`
	FlatRateLevy bool    `json:"flatRateLevy"`
	OtherIncome  float64 `json:"otherIncome"`
	Parts        float64 `json:"parts"`
}

// Validate implements validation.Validatable.
func (in TaxInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Year, validation.Required, validation.Min(2000), validation.Max(2100)),
		validation.Field(&in.Regime, validation.Required,
			validation.In(RegimeMicroBNC, RegimeMicroBICServices, RegimeMicroBICCommerce)),
		validation.Field(&in.OtherIncome, validation.Min(0.0)),
		validation.Field(&in.Parts, validation.Min(0.0)),
	)
	return models.AsValidation(err)
}

// QuarterTax is what one quarter's paid revenue owes.
type QuarterTax struct {
	Label     string  `json:"label"`
	Revenue   float64 `json:"revenue"`
	Social    float64 `json:"social"`
	Provision float64 `json:"provision"`
	Total     float64 `json:"total"`
}

// TaxEstimate is an indicative yearly estimate of social contributions and
// income tax on paid invoices.
type TaxEstimate struct {
	Year            int          `json:"year"`
	Regime          Regime       `json:"regime"`
	RegimeLabel     string       `json:"regimeLabel"`
	Revenue         float64      `json:"revenue"`
	Social          float64      `json:"social"`
	TaxableIncome   float64      `json:"taxableIncome"`
	IncomeTax       float64      `json:"incomeTax"`
	FlatRateLevy    *float64     `json:"flatRateLevy"`
	TotalCharges    float64      `json:"totalCharges"`
	Net             float64      `json:"net"`
	ChargeRate      float64      `json:"chargeRate"`
	Ceiling         float64      `json:"ceiling"`
	OverCeiling     bool         `json:"overCeiling"`
	SetAsidePercent int          `json:"setAsidePercent"`
	SetAside        float64      `json:"setAside"`
	Quarters        []QuarterTax `json:"quarters"`
}

// EstimateTax computes a TaxEstimate over the year's paid invoices (quotes
// excluded).
func (s *Store) EstimateTax(in TaxInput) (TaxEstimate, error) {
	if in.Parts == 0 {
		in.Parts = 1
	}
	if err := in.Validate(); err != nil {
		return TaxEstimate{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return estimateTax(s.state.Invoices, in), nil
}

func estimateTax(invoices []models.Invoice, in TaxInput) TaxEstimate {
	r := regimes[in.Regime]
	est := TaxEstimate{Year: in.Year, Regime: in.Regime, RegimeLabel: r.label, Ceiling: r.ceiling}

	var quarters [4]float64
	for _, inv := range invoices {
		if inv.Type != models.InvoiceTypeInvoice || inv.Status != models.InvoiceStatusPaid {
			continue
		}
		d, ok := inv.Date.Time()
		if !ok || d.Year() != in.Year {
			continue
		}
		est.Revenue += inv.Amount
		quarters[(d.Month()-1)/3] += inv.Amount
	}

	est.Social = math.Round(est.Revenue * r.social)
	base := math.Round(est.Revenue * (1 - r.allowance))
	est.TaxableIncome = math.Max(0, base+in.OtherIncome-est.Social)
	est.IncomeTax = math.Round(incomeTax(est.TaxableIncome/in.Parts) * in.Parts)

	if in.FlatRateLevy {
		levy := math.Round(est.Revenue * r.levy)
		est.FlatRateLevy = &levy
		est.TotalCharges = est.Social + levy
	} else {
		est.TotalCharges = est.Social + est.IncomeTax
	}
	est.Net = est.Revenue - est.TotalCharges
	if est.Revenue > 0 {
		est.ChargeRate = math.Round(est.TotalCharges/est.Revenue*1000) / 10
	}
	est.OverCeiling = est.Revenue > r.ceiling

	est.SetAsidePercent = int(math.Round((r.social + 0.12) * 100))
	est.SetAside = math.Round(est.Revenue * float64(est.SetAsidePercent) / 100)

	est.Quarters = make([]QuarterTax, len(quarters))
	for i, rev := range quarters {
		est.Quarters[i] = QuarterTax{
			Label:     quarterLabels[i],
			Revenue:   rev,
			Social:    math.Round(rev * r.social),
			Provision: math.Round(rev * (1 - r.allowance) * quarterProvision),
			Total:     math.Round(rev * (r.social + quarterProvision)),
		}
	}
	return est
}

// incomeTax applies the progressive brackets to one part's taxable income.
func incomeTax(taxable float64) float64 {
	if taxable <= 0 {
		return 0
	}
	var tax float64
	for _, b := range taxBrackets {
		if taxable <= b.min {
			break
		}
		tax += (math.Min(taxable, b.max) - b.min) * b.rate
	}
	return math.Round(tax)
}
