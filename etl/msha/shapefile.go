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
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/spatialmodel/cementflow/internal/table"
)

// wgs84 is the projection of geocoded mine locations.
const wgs84 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// MineRecord is a mine location in a shapefile.
type MineRecord struct {
	geom.Point
	MineID   string
	Name     string
	Status   string
	MineType string
	State    string
}

// MineRecords converts a table from CleanGeocoded to mine locations.
func MineRecords(t *table.Table) ([]MineRecord, error) {
	if err := t.Require(MineID, Latitude, Longitude); err != nil {
		return nil, fmt.Errorf("msha: %w", err)
	}
	o := make([]MineRecord, t.Len())
	for i := range o {
		r := t.Row(i)
		lat, err := r.Float(Latitude)
		if err != nil {
			return nil, fmt.Errorf("msha: mine %s: %w", r.Get(MineID), err)
		}
		lon, err := r.Float(Longitude)
		if err != nil {
			return nil, fmt.Errorf("msha: mine %s: %w", r.Get(MineID), err)
		}
		o[i] = MineRecord{
			Point:    geom.Point{X: lon, Y: lat},
			MineID:   r.Get(MineID),
			Name:     r.Get(MineName),
			Status:   r.Get(MineStatus),
			MineType: r.Get(MineType),
			State:    r.Get(State),
		}
	}
	return o, nil
}

// WriteShapefile writes mine locations to a point shapefile with
// latitude-longitude coordinates. fileName should end in ".shp".
func WriteShapefile(fileName string, mines []MineRecord) error {
	e, err := shp.NewEncoder(fileName, MineRecord{})
	if err != nil {
		return fmt.Errorf("msha: creating shapefile: %w", err)
	}
	for i := range mines {
		if err := e.Encode(&mines[i]); err != nil {
			e.Close()
			return fmt.Errorf("msha: writing shapefile: %w", err)
		}
	}
	e.Close()
	prj := strings.TrimSuffix(fileName, ".shp") + ".prj"
	if err := os.WriteFile(prj, []byte(wgs84), 0644); err != nil {
		return fmt.Errorf("msha: writing projection: %w", err)
	}
	return nil
}
