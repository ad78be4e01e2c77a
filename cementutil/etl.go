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

package cementutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cementflow/charts"
	"github.com/spatialmodel/cementflow/etl/aca"
	"github.com/spatialmodel/cementflow/etl/census"
	"github.com/spatialmodel/cementflow/etl/ghgrp"
	"github.com/spatialmodel/cementflow/etl/msha"
	"github.com/spatialmodel/cementflow/etl/production"
	"github.com/spatialmodel/cementflow/etl/usgs"
	"github.com/spatialmodel/cementflow/flows"
	"github.com/spatialmodel/cementflow/internal/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// cleanTables reads and stacks the Input tables, cleans them with
// clean, and writes the result to Output.
func cleanTables(ctx context.Context, clean func(*table.Table) (*table.Table, error)) error {
	files, err := inputs(Cfg)
	if err != nil {
		return err
	}
	out, err := output(Cfg)
	if err != nil {
		return err
	}
	t, err := readTables(ctx, Cfg, files)
	if err != nil {
		return err
	}
	if t, err = clean(t); err != nil {
		return err
	}
	return writeTable(ctx, out, t)
}

func cleanProduction(ctx context.Context) error {
	return cleanTables(ctx, usgs.CleanAggregateProduction)
}

func cleanConsumption(ctx context.Context) error {
	return cleanTables(ctx, usgs.CleanConsumption)
}

func cleanBuildingTypes(ctx context.Context) error {
	return cleanTables(ctx, func(t *table.Table) (*table.Table, error) {
		return census.CleanBuildingTypes(t, log()), nil
	})
}

func cleanCement(ctx context.Context) error {
	files, err := inputs(Cfg)
	if err != nil {
		return err
	}
	out, err := output(Cfg)
	if err != nil {
		return err
	}
	cleaned := make(map[string]*table.Table)
	for _, f := range files {
		t, err := readTable(ctx, Cfg, f)
		if err != nil {
			return err
		}
		if cleaned[f], err = ghgrp.CleanCementProducers(t); err != nil {
			return fmt.Errorf("%w (file %s)", err, f)
		}
	}
	t, err := ghgrp.MergeYears(cleaned, log())
	if err != nil {
		return err
	}
	return writeTable(ctx, out, t)
}

// readMines reads the StatusFile and AddressFile tables.
func readMines(ctx context.Context) (status, address *table.Table, err error) {
	statusFile, addressFile := Cfg.GetString("StatusFile"), Cfg.GetString("AddressFile")
	if statusFile == "" || addressFile == "" {
		return nil, nil, fmt.Errorf("cementflow: both StatusFile and AddressFile must be specified")
	}
	if status, err = readTable(ctx, Cfg, statusFile); err != nil {
		return nil, nil, err
	}
	if address, err = readTable(ctx, Cfg, addressFile); err != nil {
		return nil, nil, err
	}
	return status, address, nil
}

func cleanMines(ctx context.Context) error {
	out, err := output(Cfg)
	if err != nil {
		return err
	}
	status, address, err := readMines(ctx)
	if err != nil {
		return err
	}
	t, err := msha.JoinMines(status, address)
	if err != nil {
		return err
	}
	counts, err := msha.StatusCounts(t)
	if err != nil {
		return err
	}
	for _, c := range counts {
		log().WithFields(logrus.Fields{"status": c.Value, "mines": c.N}).Info("mine status")
	}
	for col, n := range msha.MissingCounts(t) {
		log().WithFields(logrus.Fields{"column": col, "missing": n}).Debug("missing values")
	}
	t, abandoned, err := msha.DropMissingStreet(t)
	if err != nil {
		return err
	}
	log().WithField("abandoned", abandoned).Info("dropped abandoned mines without a street address")
	if t, err = msha.AddFullAddress(t); err != nil {
		return err
	}
	return writeTable(ctx, out, t)
}

func cleanGeocoded(ctx context.Context) error {
	files, err := inputs(Cfg)
	if err != nil {
		return err
	}
	t, err := readTables(ctx, Cfg, files)
	if err != nil {
		return err
	}
	if t, err = msha.CleanGeocoded(t); err != nil {
		return err
	}
	if out := Cfg.GetString("Output"); out != "" {
		if err := writeTable(ctx, out, t); err != nil {
			return err
		}
	}
	shp := Cfg.GetString("ShapefileOutput")
	if shp == "" {
		return nil
	}
	mines, err := msha.MineRecords(t)
	if err != nil {
		return err
	}
	u := new(uploader)
	if err := msha.WriteShapefile(u.maybeUpload(shp), mines); err != nil {
		return err
	}
	if err := u.upload(ctx); err != nil {
		return err
	}
	log().WithFields(logrus.Fields{"file": shp, "mines": len(mines)}).Info("wrote shapefile")
	return nil
}

func cleanPermits(ctx context.Context) error {
	files, err := inputs(Cfg)
	if err != nil {
		return err
	}
	out, err := output(Cfg)
	if err != nil {
		return err
	}
	tables := make([]*table.Table, len(files))
	for i, f := range files {
		err := readWith(ctx, f, func(r io.Reader) error {
			var err error
			tables[i], err = census.CleanPermits(r, f, log())
			return err
		})
		if err != nil {
			return err
		}
	}
	return writeTable(ctx, out, table.Concat(tables...))
}

var printer = message.NewPrinter(language.English)

func summarizeCement(ctx context.Context, w io.Writer) error {
	files, err := inputs(Cfg)
	if err != nil {
		return err
	}
	out, err := output(Cfg)
	if err != nil {
		return err
	}
	t, err := readTables(ctx, Cfg, files)
	if err != nil {
		return err
	}
	s, err := ghgrp.StateSummary(t)
	if err != nil {
		return err
	}
	n, err := ghgrp.NationalSummary(t, s)
	if err != nil {
		return err
	}
	printer.Fprintf(w, "Total cement production: %.0f metric tons\n", n.TotalProduction)
	printer.Fprintf(w, "Facilities reporting production: %d in %d states\n", n.Facilities, n.States)
	printer.Fprintf(w, "Average production per facility: %.0f metric tons\n", n.MeanProduction)
	if n.TopState != "" {
		printer.Fprintf(w, "Largest producing state: %s (%.0f metric tons)\n", n.TopState, n.TopProduction)
	}
	return writeTable(ctx, out, s)
}

func summarizeMines(ctx context.Context, w io.Writer) error {
	out, err := output(Cfg)
	if err != nil {
		return err
	}
	status, address, err := readMines(ctx)
	if err != nil {
		return err
	}
	a, err := msha.ActiveMines(address, status)
	if err != nil {
		return err
	}
	log().WithFields(logrus.Fields{
		"duplicates":     a.Duplicates,
		"nameMismatches": a.NameMismatches,
		"excluded":       a.Excluded.Len(),
	}).Info("cross-referenced mines")
	printer.Fprintf(w, "Active mines: %d\n\n", a.Mines.Len())
	if err := a.ByState.WriteCSV(w); err != nil {
		return err
	}
	return writeTable(ctx, out, a.Mines)
}

// lastYear returns the largest value in the year column of t.
func lastYear(t *table.Table, column string) (int, error) {
	years, err := t.Floats(column)
	if err != nil {
		return 0, err
	}
	if len(years) == 0 {
		return 0, fmt.Errorf("cementflow: no years in data")
	}
	sort.Float64s(years)
	return int(years[len(years)-1]), nil
}

func summarizeAggregate(ctx context.Context, w io.Writer) error {
	files, err := inputs(Cfg)
	if err != nil {
		return err
	}
	out, err := output(Cfg)
	if err != nil {
		return err
	}
	t, err := readTables(ctx, Cfg, files)
	if err != nil {
		return err
	}
	year := Cfg.GetInt("Year")
	if year == 0 {
		if year, err = lastYear(t, usgs.Year); err != nil {
			return err
		}
	}
	s, err := usgs.StateProduction(t, year)
	if err != nil {
		return err
	}
	total, err := s.Sums(usgs.TotalQuantity)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Aggregate production in %d: %s metric tons in %d states\n", year, printer.Sprintf("%.0f", total), s.Len())
	if err := writeTable(ctx, out, s); err != nil {
		return err
	}
	return writeOption(ctx, "ProductionChart", func(w io.Writer) error {
		annual, err := usgs.AnnualTotals(t)
		if err != nil {
			return err
		}
		y, err := annual.Floats(usgs.Year)
		if err != nil {
			return err
		}
		q, err := annual.Floats(usgs.Quantity)
		if err != nil {
			return err
		}
		years := make([]int, len(y))
		for i, v := range y {
			years[i] = int(v)
		}
		return charts.Production(w, years, q)
	})
}

func mergeProduction(ctx context.Context, w io.Writer) error {
	cementFile, aggregateFile := Cfg.GetString("CementFile"), Cfg.GetString("AggregateFile")
	if cementFile == "" || aggregateFile == "" {
		return fmt.Errorf("cementflow: both CementFile and AggregateFile must be specified")
	}
	out, err := output(Cfg)
	if err != nil {
		return err
	}
	cement, err := readTable(ctx, Cfg, cementFile)
	if err != nil {
		return err
	}
	aggregate, err := readTable(ctx, Cfg, aggregateFile)
	if err != nil {
		return err
	}
	m, err := production.Merge(cement, aggregate)
	if err != nil {
		return err
	}
	for _, s := range m.Unmapped {
		log().WithField("state", s).Warn("unknown state abbreviation")
	}
	if err := m.WriteSummary(w); err != nil {
		return err
	}
	return writeTable(ctx, out, m.Table)
}

func geocode(ctx context.Context) error {
	files, err := inputs(Cfg)
	if err != nil {
		return err
	}
	out, err := output(Cfg)
	if err != nil {
		return err
	}
	delay, err := time.ParseDuration(Cfg.GetString("GeocodeDelay"))
	if err != nil {
		return fmt.Errorf("cementflow: GeocodeDelay: %w", err)
	}
	t, err := readTables(ctx, Cfg, files)
	if err != nil {
		return err
	}
	g := census.NewGeocoder(Cfg.GetInt("GeocodeCacheSize"))
	g.URL = Cfg.GetString("GeocoderURL")
	g.Delay = delay
	g.Attempts = Cfg.GetInt("GeocodeAttempts")
	g.Log = log()
	o, matched, err := g.GeocodeTable(ctx, t, Cfg.GetString("AddressColumn"))
	if err != nil {
		return err
	}
	log().WithFields(logrus.Fields{"rows": o.Len(), "matched": matched}).Info("geocoded addresses")
	return writeTable(ctx, out, o)
}

func scrape(ctx context.Context) error {
	files, err := inputs(Cfg)
	if err != nil {
		return err
	}
	out, err := output(Cfg)
	if err != nil {
		return err
	}
	local := make([]string, len(files))
	original := make(map[string]string)
	for i, f := range files {
		if local[i], err = maybeDownload(ctx, f, log()); err != nil {
			return err
		}
		original[local[i]] = f
	}
	sheets := aca.ScrapeAll(local, log())
	if len(sheets) == 0 {
		return fmt.Errorf("cementflow: no fact sheets could be read")
	}
	for _, s := range sheets {
		s.Path = original[s.Path]
	}
	if err := writeOutput(ctx, out, func(w io.Writer) error { return aca.WriteCSV(w, sheets) }); err != nil {
		return err
	}
	return writeOption(ctx, "JSONOutput", func(w io.Writer) error { return aca.WriteJSON(w, sheets) })
}

func analyzeFlows(ctx context.Context, w io.Writer) error {
	files, err := inputs(Cfg)
	if err != nil {
		return err
	}
	t, err := readTables(ctx, Cfg, files)
	if err != nil {
		return err
	}
	c, err := usgs.ReadConsumption(t)
	if err != nil {
		return err
	}
	years := flows.FromConsumption(c)
	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })
	s, err := flows.Summarize(years)
	if err != nil {
		return err
	}
	if err := s.Write(w); err != nil {
		return err
	}

	year := Cfg.GetInt("Year")
	if year == 0 {
		year = years[len(years)-1].Year
	}
	var y *flows.Year
	for i := range years {
		if years[i].Year == year {
			y = &years[i]
		}
	}
	if y == nil {
		return fmt.Errorf("cementflow: no flow data for %d", year)
	}
	fmt.Fprintf(w, "\nFlows in %d:\n", year)
	for _, l := range y.Links() {
		fmt.Fprintf(w, "  %s -> %s: %s\n", l.Source, l.Target, l.Label())
	}
	fmt.Fprintf(w, "  Balance: %.3fM tons\n", y.Balance())

	if err := writeOption(ctx, "SankeyChart", func(w io.Writer) error { return charts.Sankey(w, *y) }); err != nil {
		return err
	}
	if err := writeOption(ctx, "ConsumptionChart", func(w io.Writer) error { return charts.Consumption(w, years) }); err != nil {
		return err
	}
	return writeOption(ctx, "GapChart", func(w io.Writer) error { return charts.ConsumptionGap(w, years) })
}
