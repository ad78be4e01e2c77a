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

// Package msha cleans the Mine Safety and Health Administration (MSHA)
// mine data retrieval system datasets for sand and gravel mines: one
// file of mine status and one of mine addresses, both keyed by mine ID.
package msha

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spatialmodel/cementflow/internal/table"
)

// Column names in the MSHA data.
const (
	MineID      = "Mine ID"
	MineName    = "Mine Name"
	MineStatus  = "Mine Status"
	StatusDate  = "Status Date"
	MineType    = "Type of Mine"
	Commodity   = "Commodity"
	Street      = "Street"
	City        = "City"
	State       = "State"
	ZipCode     = "Zip Code"
	FullAddress = "full_address"
	Latitude    = "Latitude"
	Longitude   = "Longitude"
)

// JoinMines joins the mine status and mine address tables on mine ID,
// keeping only mines in both. Columns in both tables other than the
// mine ID get the suffixes _x (status) and _y (address).
func JoinMines(status, address *table.Table) (*table.Table, error) {
	j, err := status.Join(address, []string{MineID}, table.Inner)
	if err != nil {
		return nil, fmt.Errorf("msha: joining mines: %w", err)
	}
	return j, nil
}

// Count is the number of rows with a value.
type Count struct {
	Value string
	N     int
}

// ValueCounts counts the rows with each value of the named column,
// most common first. Rows with a missing value are not counted.
func ValueCounts(t *table.Table, column string) ([]Count, error) {
	col, err := t.Column(column)
	if err != nil {
		return nil, fmt.Errorf("msha: %w", err)
	}
	n := make(map[string]int)
	for _, v := range col {
		if !table.Missing(v) {
			n[v]++
		}
	}
	o := make([]Count, 0, len(n))
	for v, c := range n {
		o = append(o, Count{Value: v, N: c})
	}
	sort.Slice(o, func(i, j int) bool {
		if o[i].N != o[j].N {
			return o[i].N > o[j].N
		}
		return o[i].Value < o[j].Value
	})
	return o, nil
}

// StatusCounts counts the mines with each status.
func StatusCounts(t *table.Table) ([]Count, error) {
	return ValueCounts(t, MineStatus)
}

// MissingCounts returns the number of missing values in each column.
func MissingCounts(t *table.Table) map[string]int {
	o := make(map[string]int)
	for j, h := range t.Header {
		for _, r := range t.Rows {
			if table.Missing(r[j]) {
				o[h]++
			}
		}
	}
	return o
}

// DropMissingStreet drops mines without a street address. It also
// returns how many of the dropped mines were abandoned.
func DropMissingStreet(t *table.Table) (*table.Table, int, error) {
	if err := t.Require(Street, MineStatus); err != nil {
		return nil, 0, fmt.Errorf("msha: %w", err)
	}
	var abandoned int
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		if table.Missing(r.Get(Street)) && r.Get(MineStatus) == "Abandoned" {
			abandoned++
		}
	}
	return t.DropMissing(Street), abandoned, nil
}

// AddFullAddress keeps the mine ID and address columns and adds a
// one-line address in the form "street, city, state zip" for geocoding.
func AddFullAddress(t *table.Table) (*table.Table, error) {
	t, err := t.Select(MineID, Street, City, State, ZipCode)
	if err != nil {
		return nil, fmt.Errorf("msha: %w", err)
	}
	return t.AddColumn(FullAddress, func(r table.Row) string {
		return fmt.Sprintf("%s, %s, %s %s", r.Get(Street), r.Get(City), r.Get(State), r.Get(ZipCode))
	}), nil
}

// CleanGeocoded drops abandoned mines (any status containing
// "abandoned", ignoring case) and mines that could not be geocoded from
// a geocoded mine table, keeps the descriptive columns, and renames
// the name and coordinate columns.
func CleanGeocoded(t *table.Table) (*table.Table, error) {
	nameCol := MineName + "_x"
	if !t.Has(nameCol) {
		nameCol = MineName
	}
	if err := t.Require(MineStatus, "lat", "lon"); err != nil {
		return nil, fmt.Errorf("msha: %w", err)
	}
	t = t.Filter(func(r table.Row) bool {
		return !strings.Contains(strings.ToLower(r.Get(MineStatus)), "abandoned")
	}).DropMissing("lat", "lon")
	t, err := t.Select(MineID, nameCol, MineStatus, MineType, Street, City, State, ZipCode, "lat", "lon")
	if err != nil {
		return nil, fmt.Errorf("msha: cleaning geocoded mines: %w", err)
	}
	return t.Rename(map[string]string{nameCol: MineName, "lat": Latitude, "lon": Longitude}), nil
}

// InactiveStatuses are the statuses of mines that are not producing.
var InactiveStatuses = []string{"Abandoned", "AbandonedSealed", "NonProdActive"}

func inactive(status string) bool {
	for _, s := range InactiveStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// Active holds the results of ActiveMines.
type Active struct {
	// Mines holds one row per active mine.
	Mines *table.Table

	// ByState holds the number of active mines in each state,
	// most first.
	ByState *table.Table

	// Excluded holds the mines with an inactive status.
	Excluded *table.Table

	// Duplicates is the number of rows that shared a mine ID before
	// duplicates were removed, and NameMismatches is the number of mines
	// whose names differ between the two datasets.
	Duplicates, NameMismatches int
}

// Column name in Active.ByState.
const NumActiveMines = "Num_Active_Mines"

// ActiveMines cross-references mine addresses with mine status, keeping
// only mines whose status is not in InactiveStatuses. When a mine ID
// appears more than once the first row is kept. Mine names are taken
// from the address dataset.
func ActiveMines(address, status *table.Table) (*Active, error) {
	if err := status.Require(MineStatus); err != nil {
		return nil, fmt.Errorf("msha: %w", err)
	}
	a := new(Active)
	activeStatus := status.Filter(func(r table.Row) bool { return !inactive(r.Get(MineStatus)) })
	inactiveStatus := status.Filter(func(r table.Row) bool { return inactive(r.Get(MineStatus)) })

	mines, err := address.Join(activeStatus, []string{MineID}, table.Inner)
	if err != nil {
		return nil, fmt.Errorf("msha: finding active mines: %w", err)
	}
	ids, _ := mines.Column(MineID)
	seen := make(map[string]int)
	for _, id := range ids {
		seen[id]++
	}
	for _, n := range seen {
		if n > 1 {
			a.Duplicates += n
		}
	}
	if mines, err = mines.DropDuplicates(MineID); err != nil {
		return nil, err
	}

	if mines.Has(MineName+"_x") && mines.Has(MineName+"_y") {
		for i := 0; i < mines.Len(); i++ {
			r := mines.Row(i)
			if r.Get(MineName+"_x") != r.Get(MineName+"_y") {
				a.NameMismatches++
			}
		}
	}
	mines = preferLeft(mines)

	var cols []string
	for _, c := range []string{MineID, MineName, Street, City, State, ZipCode, Commodity, MineStatus, StatusDate, MineType} {
		if mines.Has(c) {
			cols = append(cols, c)
		}
	}
	if a.Mines, err = mines.Select(cols...); err != nil {
		return nil, err
	}

	g, err := a.Mines.GroupBy([]string{State}, table.Agg{Column: MineID, Name: NumActiveMines, Func: table.Count})
	if err != nil {
		return nil, fmt.Errorf("msha: counting mines by state: %w", err)
	}
	if a.ByState, err = g.SortFloat(NumActiveMines, true); err != nil {
		return nil, err
	}

	if a.Excluded, err = address.Join(inactiveStatus, []string{MineID}, table.Inner); err != nil {
		return nil, fmt.Errorf("msha: finding inactive mines: %w", err)
	}
	return a, nil
}

// preferLeft resolves columns that were in both tables of a join by
// keeping the left (_x) values under the original name.
func preferLeft(t *table.Table) *table.Table {
	rename := make(map[string]string)
	var drop []string
	for _, h := range t.Header {
		if base := strings.TrimSuffix(h, "_x"); base != h && t.Has(base+"_y") {
			rename[h] = base
			drop = append(drop, base+"_y")
		}
	}
	return t.Drop(drop...).Rename(rename)
}
