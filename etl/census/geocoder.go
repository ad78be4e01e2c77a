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

package census

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/groupcache/lru"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cementflow/internal/table"
)

// GeocoderURL is the address of the Census one-line address geocoder.
const GeocoderURL = "https://geocoding.geo.census.gov/geocoder/locations/onelineaddress"

// Location is a geocoded position in degrees.
type Location struct {
	Lat, Lon float64
}

// Geocoder finds the locations of street addresses with the Census
// geocoder. Results, including failed matches, are cached.
// A Geocoder is not safe for concurrent use.
type Geocoder struct {
	// URL is the geocoder endpoint.
	URL string

	// Benchmark is the address database version to match against.
	Benchmark string

	// Client makes the requests.
	Client *http.Client

	// Attempts is the number of times a request is tried, and
	// RetryDelay is the time to wait between attempts.
	Attempts   int
	RetryDelay time.Duration

	// Delay is the time to wait after each request.
	Delay time.Duration

	Log logrus.FieldLogger

	cache *lru.Cache
}

type cacheEntry struct {
	loc Location
	ok  bool
}

// NewGeocoder returns a geocoder with the default settings that
// caches up to cacheSize addresses.
func NewGeocoder(cacheSize int) *Geocoder {
	return &Geocoder{
		URL:        GeocoderURL,
		Benchmark:  "Public_AR_Current",
		Client:     &http.Client{Timeout: 10 * time.Second},
		Attempts:   3,
		RetryDelay: time.Second,
		Delay:      100 * time.Millisecond,
		Log:        logrus.StandardLogger(),
		cache:      lru.New(cacheSize),
	}
}

// geocodeResponse is the part of the geocoder response that we use.
type geocodeResponse struct {
	Result struct {
		AddressMatches []struct {
			Coordinates struct {
				X, Y float64
			} `json:"coordinates"`
		} `json:"addressMatches"`
	} `json:"result"`
}

// Geocode returns the location of the first match for address.
// ok is false if there is no match. An error is returned if the
// geocoder could not be reached after all attempts.
func (g *Geocoder) Geocode(ctx context.Context, address string) (loc Location, ok bool, err error) {
	if g.cache == nil {
		g.cache = lru.New(0)
	}
	if v, found := g.cache.Get(address); found {
		e := v.(cacheEntry)
		return e.loc, e.ok, nil
	}
	attempts := g.Attempts
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(g.RetryDelay), uint64(attempts-1)), ctx)
	err = backoff.RetryNotify(
		func() error {
			var err error
			loc, ok, err = g.request(ctx, address)
			return err
		},
		b,
		func(err error, d time.Duration) {
			g.Log.WithField("address", address).Warnf("%v: retrying in %v", err, d)
		},
	)
	if err != nil {
		return Location{}, false, fmt.Errorf("census: geocoding %q: %w", address, err)
	}
	g.cache.Add(address, cacheEntry{loc: loc, ok: ok})
	if g.Delay > 0 {
		select {
		case <-ctx.Done():
			return loc, ok, ctx.Err()
		case <-time.After(g.Delay):
		}
	}
	return loc, ok, nil
}

func (g *Geocoder) request(ctx context.Context, address string) (Location, bool, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("benchmark", g.Benchmark)
	q.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.URL+"?"+q.Encode(), nil)
	if err != nil {
		return Location{}, false, backoff.Permanent(err)
	}
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Location{}, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Location{}, false, fmt.Errorf("geocoder returned status %s", resp.Status)
	}
	var r geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Location{}, false, err
	}
	if len(r.Result.AddressMatches) == 0 {
		return Location{}, false, nil
	}
	c := r.Result.AddressMatches[0].Coordinates
	return Location{Lat: c.Y, Lon: c.X}, true, nil
}

// GeocodeTable geocodes the addresses in the named column of t and
// returns a copy of t with "lat" and "lon" columns. Addresses that
// are not matched, or that fail, have missing coordinates. The number
// of matched addresses is also returned.
func (g *Geocoder) GeocodeTable(ctx context.Context, t *table.Table, column string) (*table.Table, int, error) {
	j := t.Index(column)
	if j < 0 {
		return nil, 0, fmt.Errorf("census: missing column %q", column)
	}
	o := &table.Table{Header: append(append([]string(nil), t.Header...), "lat", "lon")}
	var matched int
	for i, r := range t.Rows {
		var lat, lon string
		loc, ok, err := g.Geocode(ctx, r[j])
		switch {
		case ctx.Err() != nil:
			return nil, matched, ctx.Err()
		case err != nil:
			g.Log.WithField("row", i).Warn(err)
		case ok:
			lat = strconv.FormatFloat(loc.Lat, 'f', -1, 64)
			lon = strconv.FormatFloat(loc.Lon, 'f', -1, 64)
			matched++
		}
		o.Rows = append(o.Rows, append(append([]string(nil), r...), lat, lon))
		if (i+1)%100 == 0 {
			g.Log.WithFields(logrus.Fields{"rows": i + 1, "matched": matched}).Info("geocoding")
		}
	}
	return o, matched, nil
}
