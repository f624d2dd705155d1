package energy

import (
	"fmt"
	"sort"
)

const secondsPerHour = 3600

// lifecycleScale converts g CO2/kWh into kg CO2 per watt-second.
const lifecycleScale = 1.0 / (1000 * secondsPerHour)

// IntensityTable maps each fuel to its carbon intensity.
type IntensityTable struct {
	Name      string
	Unit      string
	Intensity map[Fuel]float64
}

// LifecycleTable holds lifecycle emissions (1001, 840, 22.4, 16 and 469 g CO2/kWh
// for coal, crude oil, renewables, nuclear and gas) expressed in kg CO2/Ws.
// This is the default table.
var LifecycleTable = IntensityTable{
	Name: "lifecycle",
	Unit: "kg CO2/Ws",
	Intensity: map[Fuel]float64{
		Coal:       lifecycleScale * 1001,
		CrudeOil:   lifecycleScale * 840,
		Renewables: lifecycleScale * 22.4,
		Nuclear:    lifecycleScale * 16,
		Gas:        lifecycleScale * 469,
	},
}

// LegacyTable is the flat table used by the first version of the model.
var LegacyTable = IntensityTable{
	Name: "legacy",
	Unit: "kg CO2/Wh",
	Intensity: map[Fuel]float64{
		Coal:       900,
		CrudeOil:   650,
		Renewables: 10,
		Nuclear:    5,
		Gas:        50,
	},
}

var tables = map[string]IntensityTable{
	LifecycleTable.Name: LifecycleTable,
	LegacyTable.Name:    LegacyTable,
}

// LookupTable returns the intensity table registered under name.
// The empty name selects the lifecycle table.
func LookupTable(name string) (IntensityTable, error) {
	if name == "" {
		return LifecycleTable, nil
	}
	t, ok := tables[name]
	if !ok {
		return IntensityTable{}, fmt.Errorf("unknown intensity table %q; valid: %v", name, TableNames())
	}
	return t, nil
}

// TableNames returns the registered table names, sorted.
func TableNames() []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
