package cost

import (
	"strings"

	"github.com/Tomas-vilte/sonar-funnel/internal/models"
)

type PricingTable struct {
	InputPricePerMillion  float64
	OutputPricePerMillion float64
}

// https://ai.google.dev/gemini-api/docs/pricing
var defaultPricing = map[string]PricingTable{
	"gemini-2.0-flash":      {InputPricePerMillion: 0.10, OutputPricePerMillion: 0.40},
	"gemini-2.0-flash-lite": {InputPricePerMillion: 0.075, OutputPricePerMillion: 0.30},
	"gemini-2.5-flash":      {InputPricePerMillion: 0.30, OutputPricePerMillion: 2.50},
	"gemini-2.5-flash-lite": {InputPricePerMillion: 0.10, OutputPricePerMillion: 0.40},
	"gemini-2.5-pro":        {InputPricePerMillion: 1.25, OutputPricePerMillion: 10.00},
}

type Calculator struct {
	pricing map[string]PricingTable
}

func NewCalculator() *Calculator {
	pricing := make(map[string]PricingTable, len(defaultPricing))
	for model, table := range defaultPricing {
		pricing[model] = table
	}
	return &Calculator{pricing: pricing}
}

// EstimateCost returns the estimated USD cost of usage, or zero for unknown models.
func (c *Calculator) EstimateCost(usage models.TokenUsage) float64 {
	table, ok := c.lookup(usage.Model)
	if !ok {
		return 0
	}

	inputCost := (float64(usage.InputTokens) / 1_000_000) * table.InputPricePerMillion
	outputCost := (float64(usage.OutputTokens) / 1_000_000) * table.OutputPricePerMillion
	return inputCost + outputCost
}

// lookup matches the model exactly first, then the longest known name that
// prefixes it, so "gemini-2.5-flash-lite-001" is not priced as "gemini-2.5-flash".
func (c *Calculator) lookup(model string) (PricingTable, bool) {
	model = strings.ToLower(strings.TrimPrefix(model, "models/"))
	if table, ok := c.pricing[model]; ok {
		return table, true
	}

	best := ""
	for name := range c.pricing {
		if strings.HasPrefix(model, name) && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return PricingTable{}, false
	}
	return c.pricing[best], true
}

func (c *Calculator) AddPricing(model string, table PricingTable) {
	c.pricing[strings.ToLower(model)] = table
}
