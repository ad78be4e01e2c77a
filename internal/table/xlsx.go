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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/tealeg/xlsx"
)

// excelCache holds previously opened Microsoft Excel files
// to avoid reading the same file multiple times.
var excelCache *requestcache.Cache

var loadExcelCacheOnce sync.Once

// loadExcelFile loads a Microsoft Excel file from disk, utilizing
// a cache to avoid loading the same file more than once.
func loadExcelFile(fileName string) (*xlsx.File, error) {
	loadExcelCacheOnce.Do(func() {
		excelCache = requestcache.NewCache(func(ctx context.Context, req interface{}) (interface{}, error) {
			filename := req.(string)
			f, err := xlsx.OpenFile(filename)
			if err != nil {
				return nil, fmt.Errorf("table: opening xlsx file: %w", err)
			}
			return f, nil
		}, runtime.GOMAXPROCS(-1), requestcache.Memory(100))
	})
	r := excelCache.NewRequest(context.Background(), fileName, fileName)
	fI, err := r.Result()
	if err != nil {
		return nil, err
	}
	return fI.(*xlsx.File), nil
}

// ReadXLSX reads a sheet from a Microsoft Excel file, using row
// headerRow (starting at 0) as the header and the rows below it as
// data. If sheet is empty the first sheet is used. Trailing rows with
// no values are dropped.
func ReadXLSX(fileName, sheet string, headerRow int) (*Table, error) {
	f, err := loadExcelFile(fileName)
	if err != nil {
		return nil, err
	}
	var s *xlsx.Sheet
	if sheet == "" {
		if len(f.Sheets) == 0 {
			return nil, fmt.Errorf("table: %s has no sheets", fileName)
		}
		s = f.Sheets[0]
	} else {
		var ok bool
		if s, ok = f.Sheet[sheet]; !ok {
			return nil, fmt.Errorf("table: reading %s; no sheet %s", fileName, sheet)
		}
	}
	if headerRow >= s.MaxRow {
		return nil, fmt.Errorf("table: header row %d is past the end of sheet %s", headerRow, s.Name)
	}
	t := &Table{Header: make([]string, s.MaxCol)}
	for j := range t.Header {
		t.Header[j] = strings.TrimSpace(s.Cell(headerRow, j).Value)
	}
	for i := headerRow + 1; i < s.MaxRow; i++ {
		row := make([]string, s.MaxCol)
		for j := range row {
			row[j] = s.Cell(i, j).Value
		}
		t.Rows = append(t.Rows, row)
	}
	for len(t.Rows) > 0 && isEmpty(t.Rows[len(t.Rows)-1]) {
		t.Rows = t.Rows[:len(t.Rows)-1]
	}
	return t, nil
}

func isEmpty(row []string) bool {
	for _, v := range row {
		if !Missing(v) {
			return false
		}
	}
	return true
}

// ReadFile reads a table from a CSV file, or from the first sheet
// of a file ending in .xlsx.
func ReadFile(fileName string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(fileName), ".xlsx") {
		return ReadXLSX(fileName, "", 0)
	}
	f, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	defer f.Close()
	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, fileName)
	}
	return t, nil
}
