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

package states

import "testing"

func TestStates(t *testing.T) {
	if n, ok := Name("ny"); !ok || n != "New York" {
		t.Errorf("Name(ny) = %q, %v", n, ok)
	}
	if a, ok := Abbrev(" district of columbia "); !ok || a != "DC" {
		t.Errorf("Abbrev(district of columbia) = %q, %v", a, ok)
	}
	if _, ok := Name("XX"); ok {
		t.Error("XX should not be a state")
	}
	if _, ok := Abbrev("Ontario"); ok {
		t.Error("Ontario should not be a state")
	}
	if !IsAbbrev("GU") || IsAbbrev("Guam") {
		t.Error("IsAbbrev")
	}
	if len(abbrevToName) != 54 || len(nameToAbbrev) != 54 {
		t.Errorf("have %d and %d states", len(abbrevToName), len(nameToAbbrev))
	}
}
