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

// Package table holds a small in-memory table of string cells with the
// selection, filtering, grouping and joining operations needed to clean
// public datasets. Missing values are empty strings.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Table is a set of rows with named columns.
type Table struct {
	Header []string
	Rows   [][]string
}

// New returns a table with the given header and rows.
func New(header []string, rows ...[]string) *Table {
	return &Table{Header: header, Rows: rows}
}

// ReadCSV reads a CSV file whose first record is the header. Records
// shorter than the header are padded with missing values.
func ReadCSV(r io.Reader) (*Table, error) {
	recs, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("table: csv file has no header")
	}
	t := &Table{Header: trimAll(recs[0])}
	for _, rec := range recs[1:] {
		t.Rows = append(t.Rows, pad(rec, len(t.Header)))
	}
	return t, nil
}

// ReadRawCSV reads a CSV file that has no header. The columns are
// named by their position, starting at "0".
func ReadRawCSV(r io.Reader) (*Table, error) {
	recs, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	var n int
	for _, rec := range recs {
		if len(rec) > n {
			n = len(rec)
		}
	}
	t := &Table{Header: make([]string, n)}
	for i := range t.Header {
		t.Header[i] = strconv.Itoa(i)
	}
	for _, rec := range recs {
		t.Rows = append(t.Rows, pad(rec, n))
	}
	return t, nil
}

func readRecords(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("table: reading csv: %w", err)
	}
	return recs, nil
}

func pad(rec []string, n int) []string {
	if len(rec) >= n {
		return rec[:n]
	}
	return append(rec, make([]string, n-len(rec))...)
}

func trimAll(s []string) []string {
	o := make([]string, len(s))
	for i, v := range s {
		o[i] = strings.TrimSpace(strings.TrimPrefix(v, "\ufeff"))
	}
	return o
}

// WriteCSV writes t, including its header, to w.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("table: writing csv: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("table: writing csv: %w", err)
	}
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Has reports whether t has the named column.
func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

// Require returns an error naming the first missing column.
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if !t.Has(n) {
			return fmt.Errorf("table: missing column %q", n)
		}
	}
	return nil
}

func (t *Table) indices(names []string) ([]int, error) {
	o := make([]int, len(names))
	for i, n := range names {
		o[i] = t.Index(n)
		if o[i] < 0 {
			return nil, fmt.Errorf("table: missing column %q", n)
		}
	}
	return o, nil
}

// Row gives named access to one row of a table.
type Row struct {
	t      *Table
	Values []string
}

// Get returns the value in the named column, or "" if there is no
// such column.
func (r Row) Get(name string) string {
	i := r.t.Index(name)
	if i < 0 {
		return ""
	}
	return r.Values[i]
}

// Float parses the value in the named column with ParseFloat.
func (r Row) Float(name string) (float64, error) {
	return ParseFloat(r.Get(name))
}

// Row returns row i.
func (t *Table) Row(i int) Row { return Row{t: t, Values: t.Rows[i]} }

// Column returns the values in the named column.
func (t *Table) Column(name string) ([]string, error) {
	j := t.Index(name)
	if j < 0 {
		return nil, fmt.Errorf("table: missing column %q", name)
	}
	o := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		o[i] = r[j]
	}
	return o, nil
}

// Floats returns the values in the named column parsed with ParseFloat.
// Missing values are NaN.
func (t *Table) Floats(name string) ([]float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	o := make([]float64, len(col))
	for i, s := range col {
		if Missing(s) {
			o[i] = math.NaN()
			continue
		}
		if o[i], err = ParseFloat(s); err != nil {
			return nil, fmt.Errorf("table: column %s row %d: %w", name, i, err)
		}
	}
	return o, nil
}

// Select returns a table with only the named columns, in that order.
func (t *Table) Select(names ...string) (*Table, error) {
	idx, err := t.indices(names)
	if err != nil {
		return nil, err
	}
	o := &Table{Header: append([]string(nil), names...), Rows: make([][]string, len(t.Rows))}
	for i, r := range t.Rows {
		row := make([]string, len(idx))
		for j, k := range idx {
			row[j] = r[k]
		}
		o.Rows[i] = row
	}
	return o, nil
}

// Drop returns a table without the named columns. Names that are not
// columns of t are ignored.
func (t *Table) Drop(names ...string) *Table {
	drop := make(map[string]bool)
	for _, n := range names {
		drop[n] = true
	}
	var keep []string
	for _, h := range t.Header {
		if !drop[h] {
			keep = append(keep, h)
		}
	}
	o, _ := t.Select(keep...)
	return o
}

// Filter returns a table with the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	o := &Table{Header: t.Header}
	for _, r := range t.Rows {
		if keep(Row{t: t, Values: r}) {
			o.Rows = append(o.Rows, r)
		}
	}
	return o
}

// Rename returns a table with columns renamed from the keys of m
// to its values.
func (t *Table) Rename(m map[string]string) *Table {
	h := make([]string, len(t.Header))
	for i, n := range t.Header {
		if to, ok := m[n]; ok {
			h[i] = to
		} else {
			h[i] = n
		}
	}
	return &Table{Header: h, Rows: t.Rows}
}

// Missing reports whether s is a missing value.
func Missing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "NA")
}

// DropMissing returns a table without the rows that are missing a value
// in any of the named columns, or in any column if no names are given.
func (t *Table) DropMissing(names ...string) *Table {
	idx := t.allOr(names)
	return t.Filter(func(r Row) bool {
		for _, i := range idx {
			if Missing(r.Values[i]) {
				return false
			}
		}
		return true
	})
}

// DropEmptyRows returns a table without rows where every value is missing.
func (t *Table) DropEmptyRows() *Table {
	return t.Filter(func(r Row) bool {
		for _, v := range r.Values {
			if !Missing(v) {
				return true
			}
		}
		return false
	})
}

// DropEmptyColumns returns a table without columns where every value
// is missing.
func (t *Table) DropEmptyColumns() *Table {
	var keep []string
	for j, h := range t.Header {
		for _, r := range t.Rows {
			if !Missing(r[j]) {
				keep = append(keep, h)
				break
			}
		}
	}
	o, _ := t.Select(keep...)
	return o
}

// FillMissing replaces missing values in the named columns, or in all
// columns if no names are given, with v.
func (t *Table) FillMissing(v string, names ...string) *Table {
	idx := t.allOr(names)
	return t.Map(func(r []string) {
		for _, i := range idx {
			if Missing(r[i]) {
				r[i] = v
			}
		}
	})
}

// allOr returns the indices of names that are columns of t, or of
// all columns if names is empty.
func (t *Table) allOr(names []string) []int {
	var idx []int
	if len(names) == 0 {
		for i := range t.Header {
			idx = append(idx, i)
		}
		return idx
	}
	for _, n := range names {
		if i := t.Index(n); i >= 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

// Map returns a copy of t with f applied to a copy of each row.
func (t *Table) Map(f func(row []string)) *Table {
	o := &Table{Header: t.Header, Rows: make([][]string, len(t.Rows))}
	for i, r := range t.Rows {
		row := append([]string(nil), r...)
		f(row)
		o.Rows[i] = row
	}
	return o
}

// TrimSpace returns a copy of t with leading and trailing white space
// removed from every cell.
func (t *Table) TrimSpace() *Table {
	return t.Map(func(r []string) {
		for i, v := range r {
			r[i] = strings.TrimSpace(v)
		}
	})
}

// AddColumn returns a table with a new column holding f of each row.
// If the column already exists its values are replaced.
func (t *Table) AddColumn(name string, f func(Row) string) *Table {
	j := t.Index(name)
	o := &Table{Header: t.Header, Rows: make([][]string, len(t.Rows))}
	if j < 0 {
		o.Header = append(append([]string(nil), t.Header...), name)
	}
	for i, r := range t.Rows {
		v := f(Row{t: t, Values: r})
		row := append([]string(nil), r...)
		if j < 0 {
			row = append(row, v)
		} else {
			row[j] = v
		}
		o.Rows[i] = row
	}
	return o
}

// DropDuplicates returns a table where only the first row with each
// value of the named column is kept.
func (t *Table) DropDuplicates(name string) (*Table, error) {
	j := t.Index(name)
	if j < 0 {
		return nil, fmt.Errorf("table: missing column %q", name)
	}
	seen := make(map[string]bool)
	return t.Filter(func(r Row) bool {
		k := r.Values[j]
		if seen[k] {
			return false
		}
		seen[k] = true
		return true
	}), nil
}

// SortFloat returns a copy of t sorted by the numeric value of the named
// column. Values that cannot be parsed sort last. Equal values keep
// their order.
func (t *Table) SortFloat(name string, descending bool) (*Table, error) {
	j := t.Index(name)
	if j < 0 {
		return nil, fmt.Errorf("table: missing column %q", name)
	}
	o := &Table{Header: t.Header, Rows: append([][]string(nil), t.Rows...)}
	key := func(i int) (float64, bool) {
		v, err := ParseFloat(o.Rows[i][j])
		return v, err == nil && !math.IsNaN(v)
	}
	sort.SliceStable(o.Rows, func(a, b int) bool {
		va, oka := key(a)
		vb, okb := key(b)
		if !oka || !okb {
			return oka && !okb
		}
		if descending {
			return va > vb
		}
		return va < vb
	})
	return o, nil
}

// SortString returns a copy of t sorted by the named columns.
func (t *Table) SortString(names ...string) (*Table, error) {
	idx, err := t.indices(names)
	if err != nil {
		return nil, err
	}
	o := &Table{Header: t.Header, Rows: append([][]string(nil), t.Rows...)}
	sort.SliceStable(o.Rows, func(a, b int) bool {
		for _, j := range idx {
			if o.Rows[a][j] != o.Rows[b][j] {
				return o.Rows[a][j] < o.Rows[b][j]
			}
		}
		return false
	})
	return o, nil
}

// Head returns a table with at most the first n rows of t.
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Header: t.Header, Rows: t.Rows[:n]}
}

// Skip returns a table without the first n rows of t.
func (t *Table) Skip(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Header: t.Header, Rows: t.Rows[n:]}
}

// Concat stacks tables. The result has the union of the columns, in
// order of first appearance, and values are missing where a table
// lacks a column.
func Concat(tables ...*Table) *Table {
	o := new(Table)
	pos := make(map[string]int)
	for _, t := range tables {
		for _, h := range t.Header {
			if _, ok := pos[h]; !ok {
				pos[h] = len(o.Header)
				o.Header = append(o.Header, h)
			}
		}
	}
	for _, t := range tables {
		for _, r := range t.Rows {
			row := make([]string, len(o.Header))
			for j, h := range t.Header {
				row[pos[h]] = r[j]
			}
			o.Rows = append(o.Rows, row)
		}
	}
	return o
}

// ParseFloat parses a number that may contain currency symbols,
// thousands separators and surrounding white space.
func ParseFloat(s string) (float64, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ', '\t', '"':
			return -1
		}
		return r
	}, s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("table: invalid number %q", s)
	}
	return v, nil
}

// FormatFloat formats v with the fewest digits needed to represent it.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
