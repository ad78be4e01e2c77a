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

// Package cementflow is a top-down stock-flow model of the concrete held
// in US buildings. Annual cement production is converted to concrete,
// split between buildings and infrastructure, allocated to building types,
// and accumulated into a standing stock using building survival functions:
//
//	Stock(Y) = Σ Inflow(t) × Survival(Y - t)
//
// The national stock can then be distributed across regions using
// proxy variables such as population, GDP, and building floor area.
package cementflow

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Version gives the version number.
const Version = "0.3.0"

// BuildingType is a category of building that receives concrete.
type BuildingType int

// These are the building types that concrete inflows are allocated to.
const (
	Residential BuildingType = iota
	Commercial
	Institutional
	Industrial
)

// BuildingTypes holds all of the building types in the order they
// are reported.
var BuildingTypes = []BuildingType{Residential, Commercial, Institutional, Industrial}

func (b BuildingType) String() string {
	switch b {
	case Residential:
		return "residential"
	case Commercial:
		return "commercial"
	case Institutional:
		return "institutional"
	case Industrial:
		return "industrial"
	default:
		return fmt.Sprintf("BuildingType(%d)", int(b))
	}
}

// Title returns the capitalized name of b, for labels.
func (b BuildingType) Title() string {
	return cases.Title(language.English).String(b.String())
}

// ParseBuildingType returns the building type with the given name.
func ParseBuildingType(name string) (BuildingType, error) {
	for _, b := range BuildingTypes {
		if b.String() == name {
			return b, nil
		}
	}
	return -1, fmt.Errorf("cementflow: invalid building type %q", name)
}

// IntensityPerDollar is the concrete content of construction spending
// in kg concrete per $, by building type. Wood-frame residential
// construction is the least concrete-intensive.
var IntensityPerDollar = map[BuildingType]float64{
	Residential:   0.15,
	Commercial:    0.25,
	Institutional: 0.30,
	Industrial:    0.20,
}

// Parameters holds the settings for the national stock-flow model.
type Parameters struct {
	// CurrentYear is the year the stock is calculated for.
	CurrentYear int

	// ConcreteToCement is the tons of concrete made from one ton of cement.
	ConcreteToCement float64

	// BuildingFraction is the fraction of concrete that goes to buildings
	// rather than infrastructure.
	BuildingFraction float64

	// Lifetimes holds the survival function for each building type.
	Lifetimes map[BuildingType]Survivor
}

// DefaultParameters returns the default model parameters.
func DefaultParameters() *Parameters {
	return &Parameters{
		CurrentYear:      2024,
		ConcreteToCement: 5.5,
		BuildingFraction: 0.55,
		Lifetimes:        DefaultLifetimes(),
	}
}

// Validate checks that p is usable.
func (p *Parameters) Validate() error {
	if !(p.ConcreteToCement > 0) {
		return fmt.Errorf("cementflow: ConcreteToCement=%g but should be >0", p.ConcreteToCement)
	}
	if p.BuildingFraction < 0 || p.BuildingFraction > 1 {
		return fmt.Errorf("cementflow: BuildingFraction=%g but should be between 0 and 1", p.BuildingFraction)
	}
	for _, b := range BuildingTypes {
		if _, ok := p.Lifetimes[b]; !ok {
			return fmt.Errorf("cementflow: no lifetime specified for building type %s", b)
		}
	}
	return nil
}
