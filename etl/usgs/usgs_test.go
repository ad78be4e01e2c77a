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

package usgs

import (
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/cementflow/internal/table"
)

const aggregatesCSV = `Year,State Coverage,Region,Commodity,Quantity,Data Description,Total Value,Notes
2021,Texas,South,"Sand and gravel, construction","100,000",State totals,"$1,000,000",
2021,Texas,South,"Stone, crushed","50,000",State totals,"$600,000",
2021,Texas,South,"Aggregates, construction","150,000",State totals,"$1,600,000",
2021,Texas,South,"Stone, crushed",W,State totals,W,
2021,Texas,South,"Stone, crushed","20,000",Concrete,"$10",
2021,Ohio,Midwest,"Stone, crushed",--,State totals,--,
2021,Ohio,Midwest,"Sand and gravel, construction","30,000",State totals,"$300,000",
2021,United States,,"Stone, crushed","900,000",State totals,"$9,000,000",
2020,Texas,South,"Stone, crushed","40,000",State totals,"$400,000",
`

func readTable(t *testing.T, s string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestCleanAggregateProduction(t *testing.T) {
	c, err := CleanAggregateProduction(readTable(t, aggregatesCSV))
	if err != nil {
		t.Fatal(err)
	}
	want := table.New([]string{"Year", "State Coverage", "Region", "Quantity", "Total Value"},
		[]string{"2020", "Texas", "South", "40000", "400000"},
		[]string{"2021", "Ohio", "Midwest", "30000", "300000"},
		[]string{"2021", "Texas", "South", "150000", "1600000"},
	)
	if diff := pretty.Diff(c, want); len(diff) != 0 {
		t.Error(diff)
	}

	s, err := StateProduction(c, 2021)
	if err != nil {
		t.Fatal(err)
	}
	want = table.New([]string{"State", "Total_Quantity"},
		[]string{"Texas", "150000"},
		[]string{"Ohio", "30000"},
	)
	if diff := pretty.Diff(s, want); len(diff) != 0 {
		t.Error(diff)
	}
	if _, err := StateProduction(c, 1990); err == nil {
		t.Error("expected an error for a year with no data")
	}

	a, err := AnnualTotals(c)
	if err != nil {
		t.Fatal(err)
	}
	want = table.New([]string{"Year", "Quantity"},
		[]string{"2020", "40000"},
		[]string{"2021", "180000"},
	)
	if diff := pretty.Diff(a, want); len(diff) != 0 {
		t.Error(diff)
	}
}

func TestCleanAggregateProductionMissingColumn(t *testing.T) {
	if _, err := CleanAggregateProduction(readTable(t, "Year,Quantity\n2021,1\n")); err == nil {
		t.Error("expected an error")
	}
}

func TestCleanConsumption(t *testing.T) {
	raw := `Year,Production,Imports,Exports,Apparent consumption,,
1902,"1,000",,,"1,000",,
,,,,,,
1903,"2,000",10,5,"2,005",,
`
	c, err := CleanConsumption(readTable(t, raw))
	if err != nil {
		t.Fatal(err)
	}
	want := table.New([]string{"Year", "Production", "Imports", "Exports", "Apparent consumption"},
		[]string{"1902", "1000", "0", "0", "1000"},
		[]string{"1903", "2000", "10", "5", "2005"},
	)
	if diff := pretty.Diff(c, want); len(diff) != 0 {
		t.Error(diff)
	}
	recs, err := ReadConsumption(c)
	if err != nil {
		t.Fatal(err)
	}
	wantRecs := []Consumption{
		{Year: 1902, Production: 1000, Apparent: 1000},
		{Year: 1903, Production: 2000, Imports: 10, Exports: 5, Apparent: 2005},
	}
	if diff := pretty.Diff(recs, wantRecs); len(diff) != 0 {
		t.Error(diff)
	}
}
