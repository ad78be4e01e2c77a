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

// Package aca scrapes the cement plant and terminal listings from the
// American Cement Association (ACA) state one-sheet PDFs. Each sheet
// lists the companies and terminals in a state along with the member
// of the House of Representatives for their district.
package aca

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"rsc.io/pdf"
)

// Entry is a company or terminal listed on a sheet.
type Entry struct {
	Company     string `json:"company"`
	Location    string `json:"location"`
	HouseMember string `json:"house_member"`
}

// Sheet holds the information scraped from one state one-sheet.
type Sheet struct {
	State     string  `json:"state"`
	Path      string  `json:"pdf_path"`
	Companies []Entry `json:"companies"`
	Terminals []Entry `json:"terminals"`
}

// UnknownState is the state of a sheet without a state heading.
const UnknownState = "Unknown"

var (
	statePattern = regexp.MustCompile(`(?m)^([A-Z\s]+):\s*\n`)

	companyStart = regexp.MustCompile(`(?i)COMPANY\s+LOCATION\s+HOUSE\s+MEMBERS\s*\n`)
	companyEnd   = regexp.MustCompile(`(?i)PLANT\s+LOCATIONS`)

	terminalStart = regexp.MustCompile(`(?i)PLANT\s+LOCATIONS\s+TERMINALS\s*\n`)
	terminalEnd   = regexp.MustCompile(`(?i)Locations\s+with\s+terminals|American\s+Cement|For\s+more\s+information`)

	// representative matches a name followed by party and district
	// at the end of a line, as in "Terri Sewell (D-7th)".
	representative = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\s+\(([RD])-(\d+(?:st|nd|rd|th))\)\s*$`)

	terminalPattern = regexp.MustCompile(`([^,\n]+),\s*([^,]+),\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\s+\(([RD])-(\d+(?:st|nd|rd|th))\)`)
)

// section returns the text after the first match of start up to the
// first match of end, or to the end of the text. ok is false if start
// does not match.
func section(text string, start, end *regexp.Regexp) (s string, ok bool) {
	loc := start.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	s = text[loc[1]:]
	if e := end.FindStringIndex(s); e != nil {
		s = s[:e[0]]
	}
	return strings.TrimSpace(s), true
}

func houseMember(m []string) string {
	return fmt.Sprintf("%s (%s-%s)", strings.TrimSpace(m[1]), m[2], m[3])
}

// State returns the state named in the heading of a sheet.
func State(text string) string {
	m := statePattern.FindStringSubmatch(text)
	if m == nil {
		return UnknownState
	}
	return strings.TrimSpace(m[1])
}

// Companies returns the companies in the "COMPANY LOCATION HOUSE
// MEMBERS" section of a sheet. Each company is on a line ending with
// its representative. A company name that wraps onto a following line
// starting with "of " or a lowercase letter is joined back together.
// The last word before the representative is taken as the location.
func Companies(text string, log logrus.FieldLogger) []Entry {
	s, ok := section(text, companyStart, companyEnd)
	if !ok {
		log.Warn("couldn't find COMPANY LOCATION HOUSE MEMBERS section")
		return nil
	}
	var o []Entry
	lines := strings.Split(s, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		loc := representative.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		m := submatches(line, loc)
		before := strings.TrimSpace(line[:loc[0]])

		var suffix string
		if i+1 < len(lines) {
			if next := strings.TrimSpace(lines[i+1]); continuation(next) {
				suffix = " " + next
				i++
			}
		}

		var e Entry
		parts := strings.Fields(before)
		switch len(parts) {
		case 0:
			e.Company = before + suffix
		case 1:
			e.Company = parts[0] + suffix
		default:
			e.Location = parts[len(parts)-1]
			e.Company = strings.Join(parts[:len(parts)-1], " ") + suffix
		}
		e.Company = strings.TrimSpace(e.Company)
		e.HouseMember = houseMember(m)
		o = append(o, e)
	}
	return o
}

func continuation(line string) bool {
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "of ") {
		return true
	}
	r, _ := utf8.DecodeRuneInString(line)
	return unicode.IsLower(r)
}

func submatches(s string, loc []int) []string {
	o := make([]string, len(loc)/2)
	for i := range o {
		if loc[2*i] >= 0 {
			o[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return o
}

// Terminals returns the terminals in the "PLANT LOCATIONS TERMINALS"
// section of a sheet, which are listed as
// "Company, Location, Representative (Party-District)".
func Terminals(text string, log logrus.FieldLogger) []Entry {
	s, ok := section(text, terminalStart, terminalEnd)
	if !ok {
		log.Warn("couldn't find PLANT LOCATIONS TERMINALS section")
		return nil
	}
	var o []Entry
	for _, m := range terminalPattern.FindAllStringSubmatch(s, -1) {
		o = append(o, Entry{
			Company:     strings.TrimSpace(m[1]),
			Location:    strings.TrimSpace(m[2]),
			HouseMember: houseMember(m[2:]),
		})
	}
	return o
}

// Parse extracts the state, companies, and terminals from the text
// of a sheet.
func Parse(text, path string, log logrus.FieldLogger) *Sheet {
	log = log.WithField("file", path)
	return &Sheet{
		State:     State(text),
		Path:      path,
		Companies: Companies(text, log),
		Terminals: Terminals(text, log),
	}
}

// Scrape reads the PDF at path and parses its text.
func Scrape(path string, log logrus.FieldLogger) (*Sheet, error) {
	text, err := ExtractText(path)
	if err != nil {
		return nil, err
	}
	return Parse(text, path, log), nil
}

// ScrapeAll scrapes each of the PDFs at paths. Files that cannot be
// read are logged and skipped.
func ScrapeAll(paths []string, log logrus.FieldLogger) []*Sheet {
	var o []*Sheet
	for _, p := range paths {
		s, err := Scrape(p, log)
		if err != nil {
			log.WithField("file", p).Error(err)
			continue
		}
		log.WithFields(logrus.Fields{
			"file":      p,
			"state":     s.State,
			"companies": len(s.Companies),
			"terminals": len(s.Terminals),
		}).Info("scraped sheet")
		o = append(o, s)
	}
	return o
}

// ExtractText returns the text of every page of the PDF at path.
// Text fragments are grouped into lines by their vertical position.
func ExtractText(path string) (text string, err error) {
	// The pdf package panics on malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("aca: reading %s: %v", path, r)
		}
	}()
	r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("aca: opening %s: %w", path, err)
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, line := range pageLines(p.Content().Text) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// pageLines joins the text fragments on a page into lines, from the
// top of the page down.
func pageLines(texts []pdf.Text) []string {
	t := append([]pdf.Text(nil), texts...)
	sort.SliceStable(t, func(i, j int) bool {
		if !sameLine(t[i], t[j]) {
			return t[i].Y > t[j].Y
		}
		return t[i].X < t[j].X
	})
	var lines []string
	var b strings.Builder
	for i, c := range t {
		if i > 0 {
			prev := t[i-1]
			if !sameLine(prev, c) {
				lines = append(lines, b.String())
				b.Reset()
			} else if c.X-(prev.X+prev.W) > 0.15*c.FontSize {
				b.WriteByte(' ')
			}
		}
		b.WriteString(c.S)
	}
	if b.Len() > 0 {
		lines = append(lines, b.String())
	}
	return lines
}

func sameLine(a, b pdf.Text) bool {
	return math.Abs(a.Y-b.Y) < 0.5*math.Max(1, math.Min(a.FontSize, b.FontSize))
}

// WriteCSV writes the companies and terminals on the sheets to w, one
// row per entry, with the columns State, Type, Company, Location, and
// House Member.
func WriteCSV(w io.Writer, sheets []*Sheet) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"State", "Type", "Company", "Location", "House Member"})
	for _, s := range sheets {
		for _, e := range s.Companies {
			cw.Write([]string{s.State, "Company", e.Company, e.Location, e.HouseMember})
		}
		for _, e := range s.Terminals {
			cw.Write([]string{s.State, "Terminal", e.Company, e.Location, e.HouseMember})
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the sheets to w as indented JSON.
func WriteJSON(w io.Writer, sheets []*Sheet) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(sheets)
}
