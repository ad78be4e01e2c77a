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

// Package census cleans US Census Bureau data sets: state building
// permit surveys and American Community Survey (ACS) table B25024
// (units in structure). It also holds a client for the Census
// geocoder.
package census

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cementflow/internal/table"
)

// permitHeaderRows is the number of title and header rows at the top
// of a building permit survey file.
const permitHeaderRows = 6

// PermitColumns are the columns of a cleaned building permit file.
var PermitColumns = []string{
	"year",
	"location",
	"total",
	"num_1_units",
	"num_2_units",
	"num_3_4_units",
	"num_5_more_units",
	"num_structures_more_5_units",
}

var yearPattern = regexp.MustCompile(`(\d{4})`)

// FileYear returns the first four-digit number in the base name of
// path, such as 2022 in "stateannual_202299.csv".
func FileYear(path string) (string, bool) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := yearPattern.FindStringSubmatch(base)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CleanPermits cleans a Census building permit survey file read from r.
// fileName is the name of the file, which the survey year is taken
// from. The title rows are removed, as are empty rows and columns, and
// the year is added as the first column. If the result has the
// expected number of columns they are named as in PermitColumns;
// otherwise the columns keep their positions as names and a warning
// is logged.
func CleanPermits(r io.Reader, fileName string, log logrus.FieldLogger) (*table.Table, error) {
	raw, err := table.ReadRawCSV(r)
	if err != nil {
		return nil, fmt.Errorf("census: reading permits %s: %w", fileName, err)
	}
	t := raw.Skip(permitHeaderRows).DropEmptyRows().DropEmptyColumns().TrimSpace()
	log = log.WithField("file", fileName)

	if year, ok := FileYear(fileName); ok {
		cols := append([]string{"year"}, t.Header...)
		t, err = t.AddColumn("year", func(table.Row) string { return year }).Select(cols...)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("couldn't extract year from file name")
	}

	if len(t.Header) != len(PermitColumns) {
		log.Warnf("expected %d columns but found %d", len(PermitColumns), len(t.Header))
		return t, nil
	}
	t.Header = append([]string(nil), PermitColumns...)
	log.WithField("rows", t.Len()).Debug("cleaned building permits")
	return t, nil
}

// unitsInStructure holds the readable names of the ACS B25024
// estimates, in table order starting at B25024_001.
var unitsInStructure = []string{
	"total_units",
	"single_family_detached",
	"single_family_attached",
	"units_2",
	"units_3_4",
	"units_5_9",
	"units_10_19",
	"units_20_49",
	"units_50_plus",
	"mobile_homes",
	"boat_rv_van",
}

// BuildingTypeColumns maps ACS B25024 column codes to readable names.
// Estimates (E) get the name of the quantity and margins of error (M)
// get the same name with a "_moe" suffix.
func BuildingTypeColumns() map[string]string {
	m := map[string]string{
		"GEO_ID": "geo_id",
		"NAME":   "state_name",
	}
	for i, name := range unitsInStructure {
		code := fmt.Sprintf("B25024_%03d", i+1)
		m[code+"E"] = name
		m[code+"M"] = name + "_moe"
	}
	return m
}

// CleanBuildingTypes renames the columns of ACS table B25024 and
// drops the margin of error columns. The label row that follows the
// header in data.census.gov downloads is dropped. Cells are stripped
// of white space and quotes, and the estimate columns are converted to
// integers with thousands separators removed. A column that can't be
// converted is left as is and a warning is logged.
func CleanBuildingTypes(t *table.Table, log logrus.FieldLogger) *table.Table {
	t = t.Rename(BuildingTypeColumns())
	var moe []string
	for _, h := range t.Header {
		if strings.HasSuffix(h, "_moe") {
			moe = append(moe, h)
		}
	}
	t = t.Drop(moe...).Map(func(r []string) {
		for i, v := range r {
			r[i] = strings.Trim(strings.TrimSpace(v), `"`)
		}
	})
	if isLabelRow(t) {
		t = t.Skip(1)
	}
	for j := 2; j < len(t.Header); j++ {
		vals := make([]string, t.Len())
		var err error
		for i, r := range t.Rows {
			if vals[i], err = integer(r[j]); err != nil {
				break
			}
		}
		if err != nil {
			log.WithField("column", t.Header[j]).Warnf("couldn't convert to integer: %v", err)
			continue
		}
		for i, r := range t.Rows {
			r[j] = vals[i]
		}
	}
	return t
}

// isLabelRow reports whether the first row of t holds the column
// descriptions ("Geography", "Estimate!!Total:") rather than data.
func isLabelRow(t *table.Table) bool {
	if t.Len() == 0 {
		return false
	}
	r := t.Row(0)
	if strings.EqualFold(r.Get("geo_id"), "Geography") {
		return true
	}
	if !t.Has("total_units") {
		return false
	}
	_, err := r.Float("total_units")
	return err != nil
}

func integer(s string) (string, error) {
	v, err := table.ParseFloat(s)
	if err != nil {
		return "", err
	}
	if v != math.Trunc(v) {
		return "", fmt.Errorf("%q is not a whole number", s)
	}
	return strconv.FormatInt(int64(v), 10), nil
}
