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

package production

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/cementflow/internal/table"
)

func cementSummary() *table.Table {
	return table.New([]string{"State", "Total_Production", "Avg_Production_Per_Facility", "Num_Cement_Production_Facilities", "Total_Facilities"},
		[]string{"TX", "12000", "1500", "8", "9"},
		[]string{"CA", "9000", "1000", "9", "9"},
		[]string{"PR", "500", "500", "1", "1"},
	)
}

func aggregateProduction() *table.Table {
	return table.New([]string{"State", "Total_Quantity"},
		[]string{"Texas ", "300000"},
		[]string{"California", "200000"},
		[]string{"Ohio", "100000"},
	)
}

func TestMerge(t *testing.T) {
	m, err := Merge(cementSummary(), aggregateProduction())
	if err != nil {
		t.Fatal(err)
	}
	want := table.New(Columns,
		[]string{"Texas", "TX", "12000", "300000", "8", "9"},
		[]string{"California", "CA", "9000", "200000", "9", "9"},
		[]string{"Ohio", "", "0", "100000", "", ""},
		[]string{"Puerto Rico", "PR", "500", "0", "1", "1"},
	)
	if diff := pretty.Diff(m.Table, want); len(diff) != 0 {
		t.Error(diff)
	}
	if diff := pretty.Diff([][]string{m.Both, m.CementOnly, m.AggregateOnly},
		[][]string{{"Texas", "California"}, {"Puerto Rico"}, {"Ohio"}}); len(diff) != 0 {
		t.Error(diff)
	}
	withCement, withAggregate, withBoth, cement, aggregate := m.Totals()
	if withCement != 3 || withAggregate != 3 || withBoth != 2 || cement != 21500 || aggregate != 600000 {
		t.Errorf("totals: %d %d %d %g %g", withCement, withAggregate, withBoth, cement, aggregate)
	}

	var b bytes.Buffer
	if err := m.WriteSummary(&b); err != nil {
		t.Fatal(err)
	}
	cementOnly, aggregateOnly := m.Unmatched()
	if diff := pretty.Diff([][]string{cementOnly, aggregateOnly}, [][]string{{"Puerto Rico"}, {"Ohio"}}); len(diff) != 0 {
		t.Error(diff)
	}
	for _, s := range []string{
		"Cement only: 1 states",
		"States with cement but no aggregate (1): Puerto Rico",
		"States with aggregate but no cement (1): Ohio",
		"Total aggregate production: 600,000",
	} {
		if !strings.Contains(b.String(), s) {
			t.Errorf("summary doesn't contain %q:\n%s", s, b.String())
		}
	}
}

func TestMergeFullNames(t *testing.T) {
	c := table.New([]string{"State", "Total_Production"},
		[]string{"Texas", "12000"},
		[]string{"Atlantis", "10"},
	)
	m, err := Merge(c, aggregateProduction())
	if err != nil {
		t.Fatal(err)
	}
	abbrevs, _ := m.Table.Column(StateAbbrev)
	if strings.Join(abbrevs, ",") != "TX,,," {
		t.Errorf("abbreviations %q", abbrevs)
	}
	if len(m.Unmapped) != 0 {
		t.Errorf("unmapped %v", m.Unmapped)
	}
}

func TestMergeMissingColumn(t *testing.T) {
	if _, err := Merge(table.New([]string{"State"}), aggregateProduction()); err == nil {
		t.Error("expected an error")
	}
}
