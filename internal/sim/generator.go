package sim

import (
	"fmt"
	"math/rand"

	"github.com/sawpanic/causalrank/internal/dataset"
)

// Generate draws a synthetic frame from the scenario using the supplied
// random source. The source is the only randomness involved, so a fixed seed
// reproduces the frame bit for bit. Columns: temp, weekday, cost, price,
// sales, true_effect.
func Generate(scenario Scenario, rng *rand.Rand) (*dataset.Frame, error) {
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	n := scenario.Rows
	temp := make([]float64, n)
	weekday := make([]float64, n)
	cost := make([]float64, n)
	price := make([]float64, n)
	sales := make([]float64, n)
	effect := make([]float64, n)

	for i := 0; i < n; i++ {
		temp[i] = scenario.Temp.Mean + scenario.Temp.Std*rng.NormFloat64()
		weekday[i] = float64(rng.Intn(7) + 1)
		cost[i] = scenario.Cost.Mean + scenario.Cost.Std*rng.NormFloat64()

		dTemp := temp[i] - scenario.Effect.RefTemp
		price[i] = scenario.Price.Base +
			scenario.Price.CostCoef*cost[i] +
			scenario.Price.TempCoef*dTemp +
			scenario.Price.Noise*rng.NormFloat64()

		effect[i] = scenario.Effect.Base + scenario.Effect.TempCoef*dTemp

		weekend := 0.0
		if weekday[i] >= 6 {
			weekend = 1.0
		}
		sales[i] = scenario.Sales.Base +
			scenario.Sales.TempCoef*dTemp +
			scenario.Sales.WeekendLift*weekend +
			effect[i]*price[i] +
			scenario.Sales.Noise*rng.NormFloat64()
	}

	frame := dataset.New()
	columns := []struct {
		name   string
		values []float64
	}{
		{FieldTemp, temp},
		{FieldWeekday, weekday},
		{FieldCost, cost},
		{FieldPrice, price},
		{FieldSales, sales},
		{FieldTrueEffect, effect},
	}
	for _, c := range columns {
		if err := frame.AddColumn(c.name, c.values); err != nil {
			return nil, fmt.Errorf("add column %q: %w", c.name, err)
		}
	}
	return frame, nil
}
