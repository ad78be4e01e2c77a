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

package table

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Aggregation is a way of combining the values in a group.
type Aggregation int

// These are the available aggregations. Missing values are skipped.
const (
	Sum Aggregation = iota
	Mean
	Count
)

// Agg describes one output column of GroupBy.
type Agg struct {
	// Column is the input column and Name is the output column.
	Column, Name string
	Func         Aggregation
}

// GroupBy groups the rows of t by the values of the key columns and
// aggregates each group. Groups are sorted by key, and rows with a
// missing key are dropped.
func (t *Table) GroupBy(keys []string, aggs ...Agg) (*Table, error) {
	kIdx, err := t.indices(keys)
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(aggs))
	for i, a := range aggs {
		cols[i] = a.Column
	}
	aIdx, err := t.indices(cols)
	if err != nil {
		return nil, err
	}
	type group struct {
		key    []string
		sums   []float64
		counts []int
	}
	groups := make(map[string]*group)
	var order []string
	for i, r := range t.Rows {
		key := make([]string, len(kIdx))
		missing := false
		for j, k := range kIdx {
			key[j] = r[k]
			missing = missing || Missing(r[k])
		}
		if missing {
			continue
		}
		id := strings.Join(key, "\x00")
		g, ok := groups[id]
		if !ok {
			g = &group{key: key, sums: make([]float64, len(aggs)), counts: make([]int, len(aggs))}
			groups[id] = g
			order = append(order, id)
		}
		for j, k := range aIdx {
			if Missing(r[k]) {
				continue
			}
			g.counts[j]++
			if aggs[j].Func == Count {
				continue
			}
			v, err := ParseFloat(r[k])
			if err != nil {
				return nil, fmt.Errorf("table: grouping column %s row %d: %w", cols[j], i, err)
			}
			g.sums[j] += v
		}
	}
	sort.Slice(order, func(a, b int) bool {
		ka, kb := groups[order[a]].key, groups[order[b]].key
		for i := range ka {
			if ka[i] != kb[i] {
				return ka[i] < kb[i]
			}
		}
		return false
	})
	o := &Table{Header: append([]string(nil), keys...)}
	for _, a := range aggs {
		name := a.Name
		if name == "" {
			name = a.Column
		}
		o.Header = append(o.Header, name)
	}
	for _, id := range order {
		g := groups[id]
		row := append([]string(nil), g.key...)
		for j, a := range aggs {
			var v float64
			switch a.Func {
			case Sum:
				v = g.sums[j]
			case Mean:
				v = math.NaN()
				if g.counts[j] > 0 {
					v = g.sums[j] / float64(g.counts[j])
				}
			case Count:
				v = float64(g.counts[j])
			}
			if math.IsNaN(v) {
				row = append(row, "")
			} else {
				row = append(row, FormatFloat(v))
			}
		}
		o.Rows = append(o.Rows, row)
	}
	return o, nil
}

// Sums returns the sum of the named column over all rows. Missing
// values are skipped.
func (t *Table) Sums(name string) (float64, error) {
	v, err := t.Floats(name)
	if err != nil {
		return 0, err
	}
	var s float64
	for _, x := range v {
		if !math.IsNaN(x) {
			s += x
		}
	}
	return s, nil
}

// JoinType specifies which rows are kept by Join.
type JoinType int

// These are the supported join types.
const (
	Inner JoinType = iota
	Left
	Outer
)

// Join merges t and o on the key columns. Other columns that appear in
// both tables get the suffixes "_x" (from t) and "_y" (from o). Rows
// are in the order of t, followed for an outer join by the unmatched
// rows of o. Key values of unmatched rows from o are taken from o.
func (t *Table) Join(o *Table, on []string, how JoinType) (*Table, error) {
	lk, err := t.indices(on)
	if err != nil {
		return nil, err
	}
	rk, err := o.indices(on)
	if err != nil {
		return nil, fmt.Errorf("%w in right table", err)
	}
	isKey := make(map[string]bool)
	for _, k := range on {
		isKey[k] = true
	}
	inLeft, inRight := make(map[string]bool), make(map[string]bool)
	for _, h := range t.Header {
		inLeft[h] = true
	}
	for _, h := range o.Header {
		inRight[h] = true
	}

	out := &Table{Header: append([]string(nil), on...)}
	var lCols, rCols []int
	for j, h := range t.Header {
		if isKey[h] {
			continue
		}
		lCols = append(lCols, j)
		if inRight[h] {
			h += "_x"
		}
		out.Header = append(out.Header, h)
	}
	for j, h := range o.Header {
		if isKey[h] {
			continue
		}
		rCols = append(rCols, j)
		if inLeft[h] {
			h += "_y"
		}
		out.Header = append(out.Header, h)
	}

	keyOf := func(r []string, idx []int) string {
		k := make([]string, len(idx))
		for i, j := range idx {
			k[i] = strings.TrimSpace(r[j])
		}
		return strings.Join(k, "\x00")
	}
	right := make(map[string][]int)
	for i, r := range o.Rows {
		k := keyOf(r, rk)
		right[k] = append(right[k], i)
	}
	build := func(l, r []string) []string {
		row := make([]string, 0, len(out.Header))
		for i := range on {
			if l != nil {
				row = append(row, l[lk[i]])
			} else {
				row = append(row, r[rk[i]])
			}
		}
		for _, j := range lCols {
			if l != nil {
				row = append(row, l[j])
			} else {
				row = append(row, "")
			}
		}
		for _, j := range rCols {
			if r != nil {
				row = append(row, r[j])
			} else {
				row = append(row, "")
			}
		}
		return row
	}
	matched := make(map[int]bool)
	for _, l := range t.Rows {
		ri, ok := right[keyOf(l, lk)]
		if !ok {
			if how != Inner {
				out.Rows = append(out.Rows, build(l, nil))
			}
			continue
		}
		for _, i := range ri {
			matched[i] = true
			out.Rows = append(out.Rows, build(l, o.Rows[i]))
		}
	}
	if how == Outer {
		for i, r := range o.Rows {
			if !matched[i] {
				out.Rows = append(out.Rows, build(nil, r))
			}
		}
	}
	return out, nil
}
