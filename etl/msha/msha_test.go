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

package msha

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/kr/pretty"
	"github.com/spatialmodel/cementflow/internal/table"
)

const statusCSV = `Mine ID,Mine Name,Mine Status,Status Date,Type of Mine,Commodity
1,Sandy,Active,01/01/2020,Surface,Sand
2,Gravelly,Abandoned,01/01/1990,Surface,Gravel
3,Pit Three,NonProdActive,01/01/2021,Surface,Sand
4,Quarry,Intermittent,01/01/2019,Surface,Sand
5,Dune,Active,01/01/2018,Surface,Sand
`

const addressCSV = `Mine ID,Mine Name,Street,City,State,Zip Code
1,Sandy Pit,1 Sand Rd,Austin,TX,78701
2,Gravelly,,Waco,TX,76701
3,Pit Three,3 Pit Rd,Fresno,CA,93701
4,Quarry,4 Rock Rd,Dallas,TX,75201
4,Quarry Duplicate,4 Rock Rd,Dallas,TX,75201
5,Dune,5 Dune Rd,Ohio City,OH,45874
6,Unknown,6 Nowhere Rd,Reno,NV,89501
`

func readTable(t *testing.T, s string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestJoinAndClean(t *testing.T) {
	j, err := JoinMines(readTable(t, statusCSV), readTable(t, addressCSV))
	if err != nil {
		t.Fatal(err)
	}
	if j.Len() != 6 || !j.Has("Mine Name_x") || !j.Has("Mine Name_y") {
		t.Fatalf("join: %d rows, header %v", j.Len(), j.Header)
	}
	counts, err := StatusCounts(j)
	if err != nil {
		t.Fatal(err)
	}
	wantCounts := []Count{{"Active", 2}, {"Intermittent", 2}, {"Abandoned", 1}, {"NonProdActive", 1}}
	if diff := pretty.Diff(counts, wantCounts); len(diff) != 0 {
		t.Error(diff)
	}
	if m := MissingCounts(j); m["Street"] != 1 || m["City"] != 0 {
		t.Errorf("missing counts %v", m)
	}
	d, abandoned, err := DropMissingStreet(j)
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 5 || abandoned != 1 {
		t.Errorf("drop missing street: %d rows, %d abandoned", d.Len(), abandoned)
	}
	a, err := AddFullAddress(d)
	if err != nil {
		t.Fatal(err)
	}
	if addr := a.Row(0).Get(FullAddress); addr != "1 Sand Rd, Austin, TX 78701" {
		t.Errorf("full address %q", addr)
	}
}

func TestCleanGeocoded(t *testing.T) {
	g := readTable(t, `Mine ID,Mine Name_x,Mine Name_y,Mine Status,Type of Mine,Street,City,State,Zip Code,full_address,lat,lon
1,Sandy,Sandy Pit,Active,Surface,1 Sand Rd,Austin,TX,78701,x,30.2,-97.7
2,Gravelly,Gravelly,Temporarily Idled,Surface,2 Rd,Waco,TX,76701,x,,
3,Old,Old,AbandonedSealed,Surface,3 Rd,Fresno,CA,93701,x,36.7,-119.8
4,Quarry,Quarry,Intermittent,Surface,4 Rock Rd,Dallas,TX,75201,x,32.8,-96.8
`)
	c, err := CleanGeocoded(g)
	if err != nil {
		t.Fatal(err)
	}
	want := table.New([]string{"Mine ID", "Mine Name", "Mine Status", "Type of Mine", "Street", "City", "State", "Zip Code", "Latitude", "Longitude"},
		[]string{"1", "Sandy", "Active", "Surface", "1 Sand Rd", "Austin", "TX", "78701", "30.2", "-97.7"},
		[]string{"4", "Quarry", "Intermittent", "Surface", "4 Rock Rd", "Dallas", "TX", "75201", "32.8", "-96.8"},
	)
	if diff := pretty.Diff(c, want); len(diff) != 0 {
		t.Error(diff)
	}

	recs, err := MineRecords(c)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "mines.shp")
	if err := WriteShapefile(path, recs); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), "mines.prj")); err != nil {
		t.Error(err)
	}
	dec, err := shp.NewDecoder(path)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	var pts []geom.Point
	for {
		var rec MineRecord
		if !dec.DecodeRow(&rec) {
			break
		}
		pts = append(pts, rec.Point)
	}
	if err := dec.Error(); err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(pts, []geom.Point{{X: -97.7, Y: 30.2}, {X: -96.8, Y: 32.8}}); len(diff) != 0 {
		t.Error(diff)
	}
}

func TestActiveMines(t *testing.T) {
	a, err := ActiveMines(readTable(t, addressCSV), readTable(t, statusCSV))
	if err != nil {
		t.Fatal(err)
	}
	ids, _ := a.Mines.Column(MineID)
	if strings.Join(ids, ",") != "1,4,5" {
		t.Errorf("active mine ids %v", ids)
	}
	names, _ := a.Mines.Column(MineName)
	if strings.Join(names, ",") != "Sandy Pit,Quarry,Dune" {
		t.Errorf("mine names %v", names)
	}
	if a.Duplicates != 2 || a.NameMismatches != 1 {
		t.Errorf("duplicates %d, name mismatches %d", a.Duplicates, a.NameMismatches)
	}
	want := table.New([]string{"State", "Num_Active_Mines"}, []string{"TX", "2"}, []string{"OH", "1"})
	if diff := pretty.Diff(a.ByState, want); len(diff) != 0 {
		t.Error(diff)
	}
	if a.Excluded.Len() != 2 {
		t.Errorf("have %d excluded mines, want 2", a.Excluded.Len())
	}
	wantHeader := []string{"Mine ID", "Mine Name", "Street", "City", "State", "Zip Code", "Commodity", "Mine Status", "Status Date", "Type of Mine"}
	if diff := pretty.Diff(a.Mines.Header, wantHeader); len(diff) != 0 {
		t.Error(diff)
	}
}
