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

// Package states maps between US state names and postal abbreviations.
package states

import "strings"

var abbrevToName = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "DC": "District of Columbia",
	"PR": "Puerto Rico", "VI": "Virgin Islands", "GU": "Guam",
}

var nameToAbbrev = func() map[string]string {
	o := make(map[string]string, len(abbrevToName))
	for a, n := range abbrevToName {
		o[strings.ToLower(n)] = a
	}
	return o
}()

// Name returns the full name of the state with the given postal
// abbreviation.
func Name(abbrev string) (string, bool) {
	n, ok := abbrevToName[strings.ToUpper(strings.TrimSpace(abbrev))]
	return n, ok
}

// Abbrev returns the postal abbreviation of the named state.
// Matching ignores case and surrounding white space.
func Abbrev(name string) (string, bool) {
	a, ok := nameToAbbrev[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// IsAbbrev reports whether s is a known postal abbreviation.
func IsAbbrev(s string) bool {
	_, ok := Name(s)
	return ok && len(strings.TrimSpace(s)) == 2
}
