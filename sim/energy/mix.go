// Package energy models where mining electricity comes from and how much CO2
// it emits: regional production shares, per-region fuel mixes and a
// per-fuel carbon-intensity table.
//
// Shares are kept exactly as configured. Neither the production shares nor a
// region's fuel shares are required to sum to 1, and nothing normalizes them.
package energy

import "fmt"

// Region is an electricity-producing region.
type Region string

const (
	Asia    Region = "asia"
	Europe  Region = "europe"
	America Region = "america"
)

// Regions lists every region in reporting order.
var Regions = []Region{Asia, Europe, America}

// Fuel is an electricity source.
type Fuel string

const (
	Coal       Fuel = "coal"
	CrudeOil   Fuel = "crude_oil"
	Renewables Fuel = "renewables"
	Nuclear    Fuel = "nuclear"
	Gas        Fuel = "gas"
)

// Fuels lists every fuel in reporting order.
var Fuels = []Fuel{Coal, CrudeOil, Renewables, Nuclear, Gas}

// FuelShares holds one region's share of each fuel, as fractions.
type FuelShares map[Fuel]float64

// Mix is the energy-mix model: a production share per region and a fuel mix
// per region, all as fractions.
type Mix struct {
	Production map[Region]float64
	Fuels      map[Region]FuelShares
}

// DefaultMix returns the reference regional shares.
func DefaultMix() Mix {
	return Mix{
		Production: map[Region]float64{
			Asia:    .68,
			Europe:  .17,
			America: .15,
		},
		Fuels: map[Region]FuelShares{
			Asia:    {Coal: .60, CrudeOil: .18, Renewables: .14, Nuclear: .2, Gas: .4},
			America: {Coal: .131, CrudeOil: .365, Renewables: .115, Nuclear: .86, Gas: .306},
			Europe:  {Coal: .19, CrudeOil: .01, Renewables: .32, Nuclear: .25, Gas: .19},
		},
	}
}

// Clone returns a deep copy, so experiments never alias the defaults.
func (m Mix) Clone() Mix {
	out := Mix{
		Production: make(map[Region]float64, len(m.Production)),
		Fuels:      make(map[Region]FuelShares, len(m.Fuels)),
	}
	for r, v := range m.Production {
		out.Production[r] = v
	}
	for r, shares := range m.Fuels {
		cp := make(FuelShares, len(shares))
		for f, v := range shares {
			cp[f] = v
		}
		out.Fuels[r] = cp
	}
	return out
}

// SetFuel sets one region's share of one fuel.
func (m Mix) SetFuel(r Region, f Fuel, share float64) {
	if m.Fuels[r] == nil {
		m.Fuels[r] = make(FuelShares)
	}
	m.Fuels[r][f] = share
}

// FuelTotal returns the production-weighted share of fuel f across regions.
func (m Mix) FuelTotal(f Fuel) float64 {
	total := 0.0
	for _, r := range Regions {
		total += m.Production[r] * m.Fuels[r][f]
	}
	return total
}

// FuelTotals returns FuelTotal for every fuel.
func (m Mix) FuelTotals() map[Fuel]float64 {
	out := make(map[Fuel]float64, len(Fuels))
	for _, f := range Fuels {
		out[f] = m.FuelTotal(f)
	}
	return out
}

// CarbonIntensity returns the weighted carbon intensity
//
//	sum over regions of production_r * sum over fuels of share_r,f * table_f
//
// in the unit of the table.
func (m Mix) CarbonIntensity(table IntensityTable) float64 {
	total := 0.0
	for _, r := range Regions {
		regional := 0.0
		for _, f := range Fuels {
			regional += m.Fuels[r][f] * table.Intensity[f]
		}
		total += m.Production[r] * regional
	}
	return total
}

func (m Mix) String() string {
	return fmt.Sprintf("Mix(production asia=%.3f europe=%.3f america=%.3f)",
		m.Production[Asia], m.Production[Europe], m.Production[America])
}
