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

// Package production merges state-level cement production from the
// EPA GHGRP with state-level construction aggregate production from
// the USGS.
package production

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spatialmodel/cementflow/etl/ghgrp"
	"github.com/spatialmodel/cementflow/etl/states"
	"github.com/spatialmodel/cementflow/etl/usgs"
	"github.com/spatialmodel/cementflow/internal/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Column names in the merged table.
const (
	State               = "State"
	StateAbbrev         = "State_Abbrev"
	CementProduction    = "Cement_Production"
	AggregateProduction = "Aggregate_Production"
)

// Columns is the order of the columns in the merged table.
var Columns = []string{
	State,
	StateAbbrev,
	CementProduction,
	AggregateProduction,
	ghgrp.NumProducingFacilities,
	ghgrp.TotalFacilities,
}

// Merged holds merged state production.
type Merged struct {
	// Table has one row per state, sorted by aggregate production,
	// largest first. Missing production values are 0.
	Table *table.Table

	// Both, CementOnly, and AggregateOnly are the states that are in
	// both data sets or only one of them.
	Both, CementOnly, AggregateOnly []string

	// Unmapped holds cement state abbreviations that are not known.
	Unmapped []string
}

// Merge merges a cement state summary from ghgrp.StateSummary with
// aggregate state production from usgs.StateProduction. The cement
// states may be either abbreviations or full names; aggregate states
// are full names.
func Merge(cement, aggregate *table.Table) (*Merged, error) {
	if err := cement.Require(ghgrp.State, ghgrp.TotalProduction); err != nil {
		return nil, fmt.Errorf("production: cement: %w", err)
	}
	if err := aggregate.Require(usgs.State, usgs.TotalQuantity); err != nil {
		return nil, fmt.Errorf("production: aggregate: %w", err)
	}
	m := new(Merged)
	cement = m.standardizeStates(cement)
	ai := aggregate.Index(usgs.State)
	aggregate = aggregate.Map(func(r []string) { r[ai] = strings.TrimSpace(r[ai]) })

	inCement := columnSet(cement, State)
	inAggregate := columnSet(aggregate, State)

	j, err := cement.Join(aggregate, []string{State}, table.Outer)
	if err != nil {
		return nil, fmt.Errorf("production: merging: %w", err)
	}
	j = j.Rename(map[string]string{
		ghgrp.TotalProduction: CementProduction,
		usgs.TotalQuantity:    AggregateProduction,
	}).FillMissing("0", CementProduction, AggregateProduction)
	if j, err = j.SortFloat(AggregateProduction, true); err != nil {
		return nil, err
	}
	var cols []string
	for _, c := range Columns {
		if j.Has(c) {
			cols = append(cols, c)
		}
	}
	if m.Table, err = j.Select(cols...); err != nil {
		return nil, err
	}

	names, _ := m.Table.Column(State)
	for _, s := range names {
		switch {
		case inCement[s] && inAggregate[s]:
			m.Both = append(m.Both, s)
		case inCement[s]:
			m.CementOnly = append(m.CementOnly, s)
		default:
			m.AggregateOnly = append(m.AggregateOnly, s)
		}
	}
	return m, nil
}

// standardizeStates converts the cement states to full names if they
// are abbreviations, and adds an abbreviation column.
func (m *Merged) standardizeStates(t *table.Table) *table.Table {
	col, _ := t.Column(ghgrp.State)
	var maxLen int
	for _, s := range col {
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}
	j := t.Index(ghgrp.State)
	if maxLen == 2 {
		unmapped := make(map[string]bool)
		t = t.AddColumn(StateAbbrev, func(r table.Row) string { return r.Values[j] }).Map(func(r []string) {
			n, ok := states.Name(r[j])
			if !ok {
				unmapped[r[j]] = true
			}
			r[j] = n
		})
		for s := range unmapped {
			m.Unmapped = append(m.Unmapped, s)
		}
		sort.Strings(m.Unmapped)
		return t
	}
	return t.AddColumn(StateAbbrev, func(r table.Row) string {
		a, _ := states.Abbrev(r.Values[j])
		return a
	})
}

func columnSet(t *table.Table, name string) map[string]bool {
	col, _ := t.Column(name)
	o := make(map[string]bool, len(col))
	for _, v := range col {
		o[v] = true
	}
	return o
}

// Totals returns the number of states with cement production, with
// aggregate production, and with both, and the total production of each.
func (m *Merged) Totals() (withCement, withAggregate, withBoth int, cement, aggregate float64) {
	for i := 0; i < m.Table.Len(); i++ {
		r := m.Table.Row(i)
		c, _ := r.Float(CementProduction)
		a, _ := r.Float(AggregateProduction)
		if c > 0 {
			withCement++
			cement += c
		}
		if a > 0 {
			withAggregate++
			aggregate += a
		}
		if c > 0 && a > 0 {
			withBoth++
		}
	}
	return
}

// Unmatched returns the states that produce cement but have no
// aggregate production and those that produce aggregate but no cement.
func (m *Merged) Unmatched() (cementOnly, aggregateOnly []string) {
	for i := 0; i < m.Table.Len(); i++ {
		r := m.Table.Row(i)
		c, _ := r.Float(CementProduction)
		a, _ := r.Float(AggregateProduction)
		switch {
		case c > 0 && a == 0:
			cementOnly = append(cementOnly, r.Get(State))
		case c == 0 && a > 0:
			aggregateOnly = append(aggregateOnly, r.Get(State))
		}
	}
	return
}

// WriteSummary writes the merged table and data quality checks to w.
func (m *Merged) WriteSummary(w io.Writer) error {
	p := message.NewPrinter(language.English)
	line := strings.Repeat("=", 90)
	p.Fprintf(w, "%s\nMERGED PRODUCTION DATA (CEMENT + AGGREGATE)\n%s\n", line, line)
	p.Fprintf(w, "%-20s %-8s %15s %15s %10s\n", "State", "Abbrev", "Cement", "Aggregate", "Facilities")
	p.Fprintf(w, "%s\n", strings.Repeat("-", 90))
	for i := 0; i < m.Table.Len(); i++ {
		r := m.Table.Row(i)
		c, _ := r.Float(CementProduction)
		a, _ := r.Float(AggregateProduction)
		f, err := r.Float(ghgrp.NumProducingFacilities)
		if err != nil {
			f = 0
		}
		p.Fprintf(w, "%-20s %-8s %15.0f %15.0f %10.0f\n", r.Get(State), r.Get(StateAbbrev), c, a, f)
	}
	withCement, withAggregate, withBoth, cement, aggregate := m.Totals()
	p.Fprintf(w, "%s\n%-20s %-8s %15.0f %15.0f\n\n", line, "TOTAL", "", cement, aggregate)

	p.Fprintf(w, "DATA QUALITY CHECKS\n")
	p.Fprintf(w, "  Both datasets: %d states\n", len(m.Both))
	p.Fprintf(w, "  Cement only: %d states\n", len(m.CementOnly))
	p.Fprintf(w, "  Aggregate only: %d states\n", len(m.AggregateOnly))
	if len(m.Unmapped) > 0 {
		p.Fprintf(w, "  Could not map these states: %s\n", strings.Join(m.Unmapped, ", "))
	}
	cementOnly, aggregateOnly := m.Unmatched()
	if len(cementOnly) > 0 {
		p.Fprintf(w, "  States with cement but no aggregate (%d): %s\n", len(cementOnly), strings.Join(cementOnly, ", "))
	}
	if len(aggregateOnly) > 0 {
		p.Fprintf(w, "  States with aggregate but no cement (%d): %s\n", len(aggregateOnly), strings.Join(aggregateOnly, ", "))
	}
	p.Fprintf(w, "\nSUMMARY STATISTICS\n")
	p.Fprintf(w, "Total states: %d\n", m.Table.Len())
	p.Fprintf(w, "States with cement: %d\n", withCement)
	p.Fprintf(w, "States with aggregate: %d\n", withAggregate)
	p.Fprintf(w, "States with both: %d\n", withBoth)
	p.Fprintf(w, "Total cement production: %.0f\n", cement)
	_, err := p.Fprintf(w, "Total aggregate production: %.0f\n", aggregate)
	return err
}
