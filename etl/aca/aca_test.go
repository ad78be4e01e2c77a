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

package aca

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
)

const sheet = `ALABAMA:
Cement plants support 1,200 jobs
COMPANY LOCATION HOUSE MEMBERS
Argos USA Roberta Terri Sewell (D-7th)
Lehigh Cement Company Leeds Gary Palmer (R-6th)
National Cement Company Ragland Robert Aderholt (R-4th)
of Alabama, Inc.
Footnote without a representative
PLANT LOCATIONS TERMINALS
Argos USA, Mobile, Jerry Carl (R-1st)
Holcim US, Birmingham, Terri Sewell (D-7th)
Locations with terminals are shown in blue
`

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func TestParse(t *testing.T) {
	s := Parse(sheet, "ACA_Alabama.pdf", quietLog())
	want := &Sheet{
		State: "ALABAMA",
		Path:  "ACA_Alabama.pdf",
		Companies: []Entry{
			{Company: "Argos USA", Location: "Roberta", HouseMember: "Terri Sewell (D-7th)"},
			{Company: "Lehigh Cement Company", Location: "Leeds", HouseMember: "Gary Palmer (R-6th)"},
			{Company: "National Cement Company of Alabama, Inc.", Location: "Ragland", HouseMember: "Robert Aderholt (R-4th)"},
		},
		Terminals: []Entry{
			{Company: "Argos USA", Location: "Mobile", HouseMember: "Jerry Carl (R-1st)"},
			{Company: "Holcim US", Location: "Birmingham", HouseMember: "Terri Sewell (D-7th)"},
		},
	}
	if diff := pretty.Diff(s, want); len(diff) != 0 {
		t.Error(diff)
	}
}

func TestParseMissingSections(t *testing.T) {
	s := Parse("nothing to see here\n", "x.pdf", quietLog())
	if s.State != UnknownState || s.Companies != nil || s.Terminals != nil {
		t.Errorf("have %+v", s)
	}
}

func TestWrite(t *testing.T) {
	sheets := []*Sheet{Parse(sheet, "ACA_Alabama.pdf", quietLog())}
	var b bytes.Buffer
	if err := WriteCSV(&b, sheets); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("have %d lines, want 6", len(lines))
	}
	if lines[0] != "State,Type,Company,Location,House Member" {
		t.Errorf("header %q", lines[0])
	}
	if want := `ALABAMA,Company,"National Cement Company of Alabama, Inc.",Ragland,Robert Aderholt (R-4th)`; lines[3] != want {
		t.Errorf("have %q, want %q", lines[3], want)
	}
	if want := "ALABAMA,Terminal,Holcim US,Birmingham,Terri Sewell (D-7th)"; lines[5] != want {
		t.Errorf("have %q, want %q", lines[5], want)
	}

	b.Reset()
	if err := WriteJSON(&b, sheets); err != nil {
		t.Fatal(err)
	}
	var have []*Sheet
	if err := json.Unmarshal(b.Bytes(), &have); err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(have, sheets); len(diff) != 0 {
		t.Error(diff)
	}
}
