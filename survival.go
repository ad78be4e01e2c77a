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
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Survivor is an interface for any type that can calculate the probability
// that a building of a given age in years is still standing.
type Survivor interface {
	Survival(age float64) float64
	Name() string
}

// NormalLifetime is a building lifetime that is normally distributed.
type NormalLifetime struct {
	// Mean and StdDev are the mean and standard deviation
	// of building lifetime in years.
	Mean, StdDev float64
}

// Survival returns P(lifetime > age) = 1 - CDF(age).
func (n NormalLifetime) Survival(age float64) float64 {
	d := distuv.Normal{Mu: n.Mean, Sigma: n.StdDev}
	return clamp01(d.Survival(age))
}

// Name returns a description of the lifetime distribution.
func (n NormalLifetime) Name() string {
	return fmt.Sprintf("normal(mean=%g, std=%g)", n.Mean, n.StdDev)
}

// WeibullLifetime is a building lifetime with a Weibull distribution.
type WeibullLifetime struct {
	// Shape is the Weibull shape parameter k and Scale is the
	// scale parameter λ in years.
	Shape, Scale float64
}

// Survival returns exp(-(age/Scale)^Shape), or 1 for negative ages.
func (w WeibullLifetime) Survival(age float64) float64 {
	if age < 0 {
		return 1
	}
	d := distuv.Weibull{K: w.Shape, Lambda: w.Scale}
	return clamp01(d.Survival(age))
}

// Name returns a description of the lifetime distribution.
func (w WeibullLifetime) Name() string {
	return fmt.Sprintf("weibull(shape=%g, scale=%g)", w.Shape, w.Scale)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// DefaultLifetimes returns the default building lifetimes, in years:
// residential buildings (single- and multi-family) last 70±20,
// commercial (office, retail, warehouse) 60±15, institutional (schools,
// hospitals) 75±20, and industrial 50±15.
func DefaultLifetimes() map[BuildingType]Survivor {
	return map[BuildingType]Survivor{
		Residential:   NormalLifetime{Mean: 70, StdDev: 20},
		Commercial:    NormalLifetime{Mean: 60, StdDev: 15},
		Institutional: NormalLifetime{Mean: 75, StdDev: 20},
		Industrial:    NormalLifetime{Mean: 50, StdDev: 15},
	}
}

// ParseSurvivor parses a lifetime specification in the form
// "normal:mean:std" or "weibull:shape:scale".
func ParseSurvivor(s string) (Survivor, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("cementflow: invalid lifetime %q; want kind:param1:param2", s)
	}
	a, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("cementflow: parsing lifetime %q: %w", s, err)
	}
	b, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return nil, fmt.Errorf("cementflow: parsing lifetime %q: %w", s, err)
	}
	switch strings.ToLower(parts[0]) {
	case "normal":
		if !(b > 0) {
			return nil, fmt.Errorf("cementflow: lifetime %q: standard deviation must be >0", s)
		}
		return NormalLifetime{Mean: a, StdDev: b}, nil
	case "weibull":
		if !(a > 0) || !(b > 0) {
			return nil, fmt.Errorf("cementflow: lifetime %q: shape and scale must be >0", s)
		}
		return WeibullLifetime{Shape: a, Scale: b}, nil
	default:
		return nil, fmt.Errorf("cementflow: invalid lifetime distribution %q", parts[0])
	}
}

// ParseLifetimes parses a map of building type name to lifetime
// specification. Building types that are not in m keep their
// default lifetime.
func ParseLifetimes(m map[string]string) (map[BuildingType]Survivor, error) {
	o := DefaultLifetimes()
	for name, spec := range m {
		b, err := ParseBuildingType(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return nil, err
		}
		s, err := ParseSurvivor(spec)
		if err != nil {
			return nil, err
		}
		o[b] = s
	}
	return o, nil
}
