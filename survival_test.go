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

package cementflow

import (
	"math"
	"testing"
)

const testTolerance = 1.e-8

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func TestNormalLifetime(t *testing.T) {
	n := NormalLifetime{Mean: 70, StdDev: 20}
	tests := []struct {
		age, want float64
	}{
		{age: 70, want: 0.5},
		{age: 50, want: 0.8413447460685429},
		{age: 90, want: 0.15865525393145707},
		{age: -1000, want: 1},
	}
	for _, test := range tests {
		have := n.Survival(test.age)
		if different(have, test.want, testTolerance) {
			t.Errorf("age %g: have %g, want %g", test.age, have, test.want)
		}
	}
	if have := n.Survival(1000); have < 0 || have > 1e-10 {
		t.Errorf("very old buildings: have %g, want ~0", have)
	}
}

func TestWeibullLifetime(t *testing.T) {
	w := WeibullLifetime{Shape: 2, Scale: 60}
	tests := []struct {
		age, want float64
	}{
		{age: -5, want: 1},
		{age: 0, want: 1},
		{age: 60, want: math.Exp(-1)},
		{age: 120, want: math.Exp(-4)},
	}
	for _, test := range tests {
		have := w.Survival(test.age)
		if different(have, test.want, testTolerance) {
			t.Errorf("age %g: have %g, want %g", test.age, have, test.want)
		}
	}
}

func TestParseSurvivor(t *testing.T) {
	tests := []struct {
		in   string
		want Survivor
		err  bool
	}{
		{in: "normal:70:20", want: NormalLifetime{Mean: 70, StdDev: 20}},
		{in: " Weibull:2.5:60 ", want: WeibullLifetime{Shape: 2.5, Scale: 60}},
		{in: "normal:70:0", err: true},
		{in: "weibull:0:60", err: true},
		{in: "weibull:2:-1", err: true},
		{in: "lognormal:70:20", err: true},
		{in: "normal:70", err: true},
		{in: "normal:x:20", err: true},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			have, err := ParseSurvivor(test.in)
			if test.err {
				if err == nil {
					t.Errorf("expected an error, got %v", have)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if have != test.want {
				t.Errorf("have %v, want %v", have, test.want)
			}
		})
	}
}

func TestParseLifetimes(t *testing.T) {
	l, err := ParseLifetimes(map[string]string{"Industrial": "weibull:2:40"})
	if err != nil {
		t.Fatal(err)
	}
	if l[Industrial] != (WeibullLifetime{Shape: 2, Scale: 40}) {
		t.Errorf("industrial lifetime not overridden: %v", l[Industrial])
	}
	if l[Residential] != (NormalLifetime{Mean: 70, StdDev: 20}) {
		t.Errorf("residential lifetime changed: %v", l[Residential])
	}
	if _, err := ParseLifetimes(map[string]string{"agricultural": "normal:30:5"}); err == nil {
		t.Error("expected an error for an invalid building type")
	}
}
