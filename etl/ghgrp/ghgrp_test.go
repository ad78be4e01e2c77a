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

package ghgrp

import (
	"io"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cementflow/internal/table"
)

const raw = `Facility Id,Facility Name,City,State,Zip Code,Address,County,Latitude,Longitude,Primary NAICS Code,Industry Type (subparts),Total reported direct emissions,Cement Production
1,Plant A,Austin,TX,78701,1 Main St,Travis,30.2,-97.7,327310,"C,H",1000,900
2,Power Plant,Austin,TX,78701,2 Main St,Travis,30.2,-97.7,221112,"C,D",5000,
3,Plant B,Waco,TX,76701,3 Main St,McLennan,31.5,-97.1,327310,H,800,600
4,Plant C,Fresno,CA,93701,4 Main St,Fresno,36.7,-119.8,327310,H,700,1200
5,Plant D,Ohio City,OH,45874,5 Main St,Van Wert,40.8,-84.6,327310,H,100,
`

func cleaned(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	c, err := CleanCementProducers(tbl)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCleanCementProducers(t *testing.T) {
	c := cleaned(t)
	if c.Len() != 4 {
		t.Fatalf("have %d producers, want 4", c.Len())
	}
	ids, _ := c.Column(FacilityID)
	if strings.Join(ids, ",") != "1,3,4,5" {
		t.Errorf("facility ids %v", ids)
	}
	if c.Has(IndustryType) || c.Has("Total reported direct emissions") {
		t.Errorf("unneeded columns kept: %v", c.Header)
	}
}

func TestFileYear(t *testing.T) {
	tests := map[string]int{
		"data/cement_production_2021-12_8_2025.csv": 2021,
		"cement_production_2010.csv":                2010,
		"all_producers.csv":                         0,
	}
	for path, want := range tests {
		y, ok := FileYear(path)
		if y != want || ok != (want != 0) {
			t.Errorf("%s: have %d %v, want %d", path, y, ok, want)
		}
	}
}

func TestMergeYears(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard
	a := table.New([]string{"Facility Id", "Cement Production"}, []string{"1", "10"})
	b := table.New([]string{"Facility Id", "Cement Production", "County"}, []string{"2", "20", "Kern"})
	m, err := MergeYears(map[string]*table.Table{
		"x/cement_production_2012.csv": b,
		"x/cement_production_2011.csv": a,
		"x/notes.csv":                  a,
	}, log)
	if err != nil {
		t.Fatal(err)
	}
	want := table.New([]string{"Facility Id", "Cement Production", "year", "County"},
		[]string{"1", "10", "2011", ""},
		[]string{"2", "20", "2012", "Kern"},
	)
	if diff := pretty.Diff(m, want); len(diff) != 0 {
		t.Error(diff)
	}
	if _, err := MergeYears(map[string]*table.Table{"notes.csv": a}, log); err == nil {
		t.Error("expected an error when no file has a year")
	}
}

func TestStateSummary(t *testing.T) {
	c := cleaned(t)
	s, err := StateSummary(c)
	if err != nil {
		t.Fatal(err)
	}
	want := table.New([]string{"State", "Total_Production", "Avg_Production_Per_Facility",
		"Num_Cement_Production_Facilities", "Total_Facilities"},
		[]string{"TX", "1500", "750", "2", "2"},
		[]string{"CA", "1200", "1200", "1", "1"},
	)
	if diff := pretty.Diff(s, want); len(diff) != 0 {
		t.Error(diff)
	}
	n, err := NationalSummary(c, s)
	if err != nil {
		t.Fatal(err)
	}
	wantN := &National{TotalProduction: 2700, Facilities: 3, States: 2, MeanProduction: 900, TopState: "TX", TopProduction: 1500}
	if diff := pretty.Diff(n, wantN); len(diff) != 0 {
		t.Error(diff)
	}
}
