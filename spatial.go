/*
Copyright © 2025 the cementflow authors.
This file is part of cementflow.

cementflow is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

cementflow is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with cementflow.  If not, see <http://www.gnu.org/licenses/>.
*/

package cementflow

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Region holds the proxy variables for one spatial unit.
type Region struct {
	Name   string
	Abbrev string

	// Population is in millions of people.
	Population float64

	// GDP is in billions of dollars.
	GDP float64

	// FloorArea is building floor area in million m².
	FloorArea float64

	// Urbanization is the fraction of the population living in urban areas.
	Urbanization float64

	AvgConstructionYear int

	// NighttimeLights is total nighttime light radiance. It is
	// zero when unavailable.
	NighttimeLights float64

	// Units holds the number of housing units of each of UnitTypes.
	// It is nil when unavailable.
	Units []float64

	// Spending holds construction spending in each year of a period
	// shared by all regions. It is nil when unavailable.
	Spending []float64
}

// UnitTypes are the housing structure types of ACS table B25024.
var UnitTypes = []string{
	"single_family_detached",
	"single_family_attached",
	"units_2",
	"units_3_4",
	"units_5_9",
	"units_10_19",
	"units_20_49",
	"units_50_plus",
	"mobile_homes",
	"boat_rv_van",
}

// UnitIntensities are the concrete contents of a housing unit of each
// of UnitTypes relative to a detached single-family house. Mid- and
// high-rise units have concrete frames; mobile homes have little more
// than a foundation pad.
var UnitIntensities = []float64{1, 0.9, 0.8, 0.8, 0.9, 1, 1.3, 1.6, 0.1, 0}

// SampleRegions returns approximate 2024 proxy data for the ten most
// populous US states.
func SampleRegions() []Region {
	return []Region{
		{Name: "California", Abbrev: "CA", Population: 39.0, GDP: 3900, FloorArea: 8000, Urbanization: 0.95, AvgConstructionYear: 1975},
		{Name: "Texas", Abbrev: "TX", Population: 30.0, GDP: 2400, FloorArea: 6500, Urbanization: 0.85, AvgConstructionYear: 1980},
		{Name: "Florida", Abbrev: "FL", Population: 22.0, GDP: 1400, FloorArea: 5000, Urbanization: 0.91, AvgConstructionYear: 1985},
		{Name: "New York", Abbrev: "NY", Population: 19.5, GDP: 2000, FloorArea: 4500, Urbanization: 0.88, AvgConstructionYear: 1960},
		{Name: "Pennsylvania", Abbrev: "PA", Population: 13.0, GDP: 900, FloorArea: 3000, Urbanization: 0.79, AvgConstructionYear: 1955},
		{Name: "Illinois", Abbrev: "IL", Population: 12.6, GDP: 1000, FloorArea: 2800, Urbanization: 0.88, AvgConstructionYear: 1965},
		{Name: "Ohio", Abbrev: "OH", Population: 11.8, GDP: 800, FloorArea: 2600, Urbanization: 0.78, AvgConstructionYear: 1958},
		{Name: "Georgia", Abbrev: "GA", Population: 11.0, GDP: 750, FloorArea: 2400, Urbanization: 0.76, AvgConstructionYear: 1985},
		{Name: "North Carolina", Abbrev: "NC", Population: 10.8, GDP: 700, FloorArea: 2300, Urbanization: 0.66, AvgConstructionYear: 1980},
		{Name: "Michigan", Abbrev: "MI", Population: 10.0, GDP: 600, FloorArea: 2200, Urbanization: 0.75, AvgConstructionYear: 1960},
	}
}

// RegionCharacteristics holds metrics derived from a region's proxies.
type RegionCharacteristics struct {
	Name string

	// DensityScore is urbanization × population.
	DensityScore float64

	// GDPPerCapita is in thousands of dollars per person.
	GDPPerCapita float64

	AvgBuildingAge     float64
	FloorAreaPerCapita float64
}

// Characteristics calculates derived metrics for each region.
func Characteristics(regions []Region, currentYear int) []RegionCharacteristics {
	o := make([]RegionCharacteristics, len(regions))
	for i, r := range regions {
		o[i] = RegionCharacteristics{
			Name:               r.Name,
			DensityScore:       r.Urbanization * r.Population,
			GDPPerCapita:       r.GDP / r.Population,
			AvgBuildingAge:     float64(currentYear - r.AvgConstructionYear),
			FloorAreaPerCapita: r.FloorArea / r.Population,
		}
	}
	return o
}

// Names of the proxy variables that can be used for allocation.
const (
	ProxyPopulation      = "population"
	ProxyGDP             = "gdp"
	ProxyFloorArea       = "floor_area"
	ProxyUrban           = "urban"
	ProxyNighttimeLights = "nighttime_lights"
)

// Proxies returns each of the named proxy variables for regions.
// The urban proxy is urbanization × population.
func Proxies(regions []Region) map[string][]float64 {
	o := map[string][]float64{
		ProxyPopulation:      make([]float64, len(regions)),
		ProxyGDP:             make([]float64, len(regions)),
		ProxyFloorArea:       make([]float64, len(regions)),
		ProxyUrban:           make([]float64, len(regions)),
		ProxyNighttimeLights: make([]float64, len(regions)),
	}
	for i, r := range regions {
		o[ProxyPopulation][i] = r.Population
		o[ProxyGDP][i] = r.GDP
		o[ProxyFloorArea][i] = r.FloorArea
		o[ProxyUrban][i] = r.Urbanization * r.Population
		o[ProxyNighttimeLights][i] = r.NighttimeLights
	}
	return o
}

func validProxy(name string) bool {
	switch name {
	case ProxyPopulation, ProxyGDP, ProxyFloorArea, ProxyUrban, ProxyNighttimeLights:
		return true
	}
	return false
}

// Allocator distributes a national stock among Regions.
type Allocator struct {
	// NationalStock is in million metric tons.
	NationalStock float64
	Regions       []Region
}

// ByProxy allocates the national stock in proportion to proxy,
// which must have one non-negative value per region.
func (a *Allocator) ByProxy(proxy []float64) ([]float64, error) {
	if len(proxy) != len(a.Regions) {
		return nil, fmt.Errorf("cementflow: proxy has %d values but there are %d regions", len(proxy), len(a.Regions))
	}
	for i, v := range proxy {
		if v < 0 || math.IsNaN(v) {
			return nil, fmt.Errorf("cementflow: invalid proxy value %g for region %s", v, a.Regions[i].Name)
		}
	}
	sum := floats.Sum(proxy)
	if sum == 0 {
		return nil, fmt.Errorf("cementflow: proxy values sum to zero")
	}
	o := make([]float64, len(proxy))
	floats.ScaleTo(o, a.NationalStock/sum, proxy)
	return o, nil
}

func (a *Allocator) byNamedProxy(name string) ([]float64, error) {
	v, err := a.ByProxy(Proxies(a.Regions)[name])
	if err != nil {
		return nil, fmt.Errorf("cementflow: allocating by %s: %w", name, err)
	}
	return v, nil
}

// ByPopulation allocates in proportion to population, assuming
// uniform stock per capita.
func (a *Allocator) ByPopulation() ([]float64, error) { return a.byNamedProxy(ProxyPopulation) }

// ByGDP allocates in proportion to economic output.
func (a *Allocator) ByGDP() ([]float64, error) { return a.byNamedProxy(ProxyGDP) }

// ByFloorArea allocates in proportion to building floor area.
func (a *Allocator) ByFloorArea() ([]float64, error) { return a.byNamedProxy(ProxyFloorArea) }

// ByNighttimeLights allocates in proportion to nighttime light radiance.
func (a *Allocator) ByNighttimeLights() ([]float64, error) {
	return a.byNamedProxy(ProxyNighttimeLights)
}

// ByConstructionSpending allocates in proportion to cumulative historical
// construction spending. spending has one row per year and one column
// per region.
func (a *Allocator) ByConstructionSpending(spending mat.Matrix) ([]float64, error) {
	r, c := spending.Dims()
	if c != len(a.Regions) {
		return nil, fmt.Errorf("cementflow: spending matrix has %d columns but there are %d regions", c, len(a.Regions))
	}
	cumulative := make([]float64, c)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			cumulative[j] += spending.At(i, j)
		}
	}
	return a.ByProxy(cumulative)
}

const weightTolerance = 0.001

// Hybrid allocates using a weighted combination of proxies. The weights
// must sum to one. Weights for proxies that are not in proxies
// are skipped.
func (a *Allocator) Hybrid(weights map[string]float64, proxies map[string][]float64) ([]float64, error) {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-1) >= weightTolerance {
		return nil, fmt.Errorf("cementflow: hybrid weights sum to %g but should sum to 1", sum)
	}
	o := make([]float64, len(a.Regions))
	for _, name := range sortedKeys(weights) {
		proxy, ok := proxies[name]
		if !ok {
			continue
		}
		v, err := a.ByProxy(proxy)
		if err != nil {
			return nil, fmt.Errorf("cementflow: allocating by %s: %w", name, err)
		}
		floats.AddScaled(o, weights[name], v)
	}
	return o, nil
}

// WithBuildingTypes allocates in proportion to each region's concrete
// intensity score. fractions has one row per region and one column per
// building type, holding either shares or amounts of each type, and
// intensities has one value per building type.
func (a *Allocator) WithBuildingTypes(fractions mat.Matrix, intensities []float64) ([]float64, error) {
	r, c := fractions.Dims()
	if r != len(a.Regions) {
		return nil, fmt.Errorf("cementflow: building type matrix has %d rows but there are %d regions", r, len(a.Regions))
	}
	if c != len(intensities) {
		return nil, fmt.Errorf("cementflow: building type matrix has %d columns but there are %d intensities", c, len(intensities))
	}
	score := mat.NewVecDense(r, nil)
	score.MulVec(fractions, mat.NewVecDense(c, append([]float64(nil), intensities...)))
	return a.ByProxy(score.RawVector().Data)
}

// Method is a spatial allocation method.
type Method string

// These are the available allocation methods.
const (
	MethodPopulation      Method = "population"
	MethodGDP             Method = "gdp"
	MethodFloorArea       Method = "floor_area"
	MethodNighttimeLights Method = "nighttime_lights"
	MethodHybrid          Method = "hybrid"

	// MethodBuildingType uses each region's housing units weighted
	// by UnitIntensities.
	MethodBuildingType Method = "building_type"

	// MethodSpending uses each region's cumulative construction
	// spending.
	MethodSpending Method = "construction_spending"
)

// ParseMethod returns the method with the given name.
func ParseMethod(name string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(name))); m {
	case MethodPopulation, MethodGDP, MethodFloorArea, MethodNighttimeLights, MethodHybrid,
		MethodBuildingType, MethodSpending:
		return m, nil
	default:
		return "", fmt.Errorf("cementflow: invalid allocation method %q", name)
	}
}

// Strategy holds hybrid allocation weights by proxy name.
type Strategy map[string]float64

// Validate checks that the proxy names are valid and the weights sum to one.
func (s Strategy) Validate() error {
	var sum float64
	for name, w := range s {
		if !validProxy(name) {
			return fmt.Errorf("cementflow: invalid proxy %q in allocation strategy", name)
		}
		sum += w
	}
	if math.Abs(sum-1) >= weightTolerance {
		return fmt.Errorf("cementflow: allocation strategy weights sum to %g but should sum to 1", sum)
	}
	return nil
}

// DefaultStrategies returns the hybrid allocation strategy for each
// building type. Residential buildings follow population and floor
// area, commercial buildings follow economic activity in urban areas,
// institutional buildings such as schools and hospitals follow
// population, and industrial buildings follow GDP.
func DefaultStrategies() map[BuildingType]Strategy {
	return map[BuildingType]Strategy{
		Residential:   {ProxyPopulation: 0.6, ProxyFloorArea: 0.4},
		Commercial:    {ProxyGDP: 0.7, ProxyUrban: 0.3},
		Institutional: {ProxyPopulation: 1},
		Industrial:    {ProxyGDP: 1},
	}
}

// LoadStrategies reads allocation strategies from TOML with one
// table per building type, for example:
//
//	[residential]
//	population = 0.5
//	floor_area = 0.5
//
// Building types that are not in the file keep their default strategy.
func LoadStrategies(r io.Reader) (map[BuildingType]Strategy, error) {
	var c map[string]map[string]float64
	if _, err := toml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("cementflow: reading allocation strategies: %w", err)
	}
	o := DefaultStrategies()
	for name, weights := range c {
		b, err := ParseBuildingType(strings.ToLower(name))
		if err != nil {
			return nil, err
		}
		s := Strategy(weights)
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("%w (building type %s)", err, b)
		}
		o[b] = s
	}
	return o, nil
}

// RegionStock holds the stock allocated to one region, in million
// metric tons.
type RegionStock struct {
	Name, Abbrev string
	Stocks       Stocks
	Total        float64

	Population, GDP, FloorArea float64

	// PerCapita is in metric tons per person.
	PerCapita float64
}

// AllocateNational distributes the national stock of each building type
// among regions using method. strategies gives the per-building-type
// weights for the hybrid method and may be nil for the other methods.
func AllocateNational(stocks Stocks, regions []Region, method Method, strategies map[BuildingType]Strategy) ([]RegionStock, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("cementflow: no regions to allocate to")
	}
	if method == MethodHybrid && strategies == nil {
		strategies = DefaultStrategies()
	}
	proxies := Proxies(regions)
	var units, spending *mat.Dense
	var err error
	switch method {
	case MethodBuildingType:
		if units, err = regionMatrix(regions, func(r Region) []float64 { return r.Units }, false); err != nil {
			return nil, fmt.Errorf("cementflow: housing units: %w", err)
		}
	case MethodSpending:
		if spending, err = regionMatrix(regions, func(r Region) []float64 { return r.Spending }, true); err != nil {
			return nil, fmt.Errorf("cementflow: construction spending: %w", err)
		}
	}
	o := make([]RegionStock, len(regions))
	for i, r := range regions {
		o[i] = RegionStock{
			Name:       r.Name,
			Abbrev:     r.Abbrev,
			Stocks:     make(Stocks),
			Population: r.Population,
			GDP:        r.GDP,
			FloorArea:  r.FloorArea,
		}
	}
	for _, b := range BuildingTypes {
		a := &Allocator{NationalStock: stocks[b], Regions: regions}
		var v []float64
		switch method {
		case MethodPopulation:
			v, err = a.ByPopulation()
		case MethodGDP:
			v, err = a.ByGDP()
		case MethodFloorArea:
			v, err = a.ByFloorArea()
		case MethodNighttimeLights:
			v, err = a.ByNighttimeLights()
		case MethodHybrid:
			s, ok := strategies[b]
			if !ok {
				return nil, fmt.Errorf("cementflow: no allocation strategy for building type %s", b)
			}
			v, err = a.Hybrid(s, proxies)
		case MethodBuildingType:
			v, err = a.WithBuildingTypes(units, UnitIntensities)
		case MethodSpending:
			v, err = a.ByConstructionSpending(spending)
		default:
			return nil, fmt.Errorf("cementflow: invalid allocation method %q", method)
		}
		if err != nil {
			return nil, fmt.Errorf("cementflow: allocating %s stock: %w", b, err)
		}
		for i := range o {
			o[i].Stocks[b] = v[i]
		}
	}
	for i := range o {
		o[i].Total = o[i].Stocks.Total()
		if o[i].Population > 0 {
			o[i].PerCapita = o[i].Total / o[i].Population // Mt / million people = t/person
		} else {
			o[i].PerCapita = math.NaN()
		}
	}
	return o, nil
}

// regionMatrix stacks the values returned by f for each region into
// a matrix with one row per region, or one column per region if
// transpose is true. Every region must have the same number of values.
func regionMatrix(regions []Region, f func(Region) []float64, transpose bool) (*mat.Dense, error) {
	n := len(f(regions[0]))
	if n == 0 {
		return nil, fmt.Errorf("no data for region %s", regions[0].Name)
	}
	m := mat.NewDense(len(regions), n, nil)
	for i, r := range regions {
		v := f(r)
		if len(v) != n {
			return nil, fmt.Errorf("region %s has %d values but %s has %d", r.Name, len(v), regions[0].Name, n)
		}
		m.SetRow(i, v)
	}
	if transpose {
		return mat.DenseCopyOf(m.T()), nil
	}
	return m, nil
}

func sortedKeys(m map[string]float64) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}
