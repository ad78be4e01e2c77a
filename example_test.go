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

package cementflow_test

import (
	"fmt"

	"github.com/spatialmodel/cementflow"
)

// This example estimates the concrete stock in US buildings from
// historical cement production and distributes it among states.
func Example() {
	p := cementflow.DefaultParameters()

	prod := cementflow.SampleProduction()
	alloc, err := cementflow.UniformAllocation(prod.Years, cementflow.DefaultFractions)
	if err != nil {
		panic(err)
	}
	inflows, err := cementflow.CalculateInflows(prod, alloc, p)
	if err != nil {
		panic(err)
	}
	year, peak := inflows.Peak()
	fmt.Printf("peak inflow: %.1f million metric tons in %d\n", peak, year)

	survival, err := cementflow.NewSurvivalMatrix(p.CurrentYear, prod.Years[0], p.Lifetimes)
	if err != nil {
		panic(err)
	}
	stock := cementflow.CalculateStock(inflows, survival)
	for _, b := range cementflow.BuildingTypes {
		fmt.Printf("%s: %.0f\n", b, stock[b])
	}
	fmt.Printf("total: %.0f\n", stock.Total())

	spatial, err := cementflow.AllocateNational(stock, cementflow.SampleRegions(), cementflow.MethodPopulation, nil)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%s: %.0f t/person\n", spatial[0].Name, spatial[0].PerCapita)

	// Output:
	// peak inflow: 300.4 million metric tons in 2001
	// residential: 9388
	// commercial: 3671
	// institutional: 1616
	// industrial: 638
	// total: 15313
	// California: 85 t/person
}
