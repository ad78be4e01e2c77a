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

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cementflow"
	"github.com/spatialmodel/cementflow/charts"
	"github.com/spf13/cobra"
)

// readWith opens path and reads it with read.
func readWith(ctx context.Context, path string, read func(io.Reader) error) error {
	r, err := openInput(ctx, path)
	if err != nil {
		return err
	}
	defer r.Close()
	if err := read(r); err != nil {
		return fmt.Errorf("%w (file %s)", err, path)
	}
	return nil
}

// StockModel holds the results of the national stock model.
type StockModel struct {
	Parameters *cementflow.Parameters
	Inflows    *cementflow.Inflows
	Survival   *cementflow.SurvivalMatrix

	// Stock is the stock in Parameters.CurrentYear.
	Stock      cementflow.Stocks
	TimeSeries *cementflow.TimeSeries
}

// NationalStock runs the national stock model as specified in cfg.
func NationalStock(ctx context.Context, cfg *viper.Viper) (*StockModel, error) {
	p, err := Parameters(cfg)
	if err != nil {
		return nil, err
	}
	prod := cementflow.SampleProduction()
	if f := cfg.GetString("ProductionFile"); f != "" {
		err := readWith(ctx, f, func(r io.Reader) error {
			prod, err = cementflow.ReadProduction(r)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	var alloc *cementflow.Allocation
	if f := cfg.GetString("AllocationFile"); f != "" {
		err = readWith(ctx, f, func(r io.Reader) error {
			alloc, err = cementflow.ReadAllocation(r)
			return err
		})
	} else {
		alloc, err = cementflow.UniformAllocation(prod.Years, cementflow.DefaultFractions)
	}
	if err != nil {
		return nil, err
	}
	in, err := cementflow.CalculateInflows(prod, alloc, p)
	if err != nil {
		return nil, err
	}
	start := cfg.GetInt("StartYear")
	if start == 0 {
		start = in.Years[0]
	}
	sm, err := cementflow.NewSurvivalMatrix(p.CurrentYear, start, p.Lifetimes)
	if err != nil {
		return nil, err
	}
	ts, err := cementflow.CalculateStockTimeSeries(in, p.Lifetimes, start, p.CurrentYear)
	if err != nil {
		return nil, err
	}
	log().WithFields(logrus.Fields{
		"years":       len(in.Years),
		"start":       start,
		"currentYear": p.CurrentYear,
	}).Info("calculated national stock")
	return &StockModel{
		Parameters: p,
		Inflows:    in,
		Survival:   sm,
		Stock:      cementflow.CalculateStock(in, sm),
		TimeSeries: ts,
	}, nil
}

func runStock(cmd *cobra.Command) error {
	ctx := cmd.Context()
	m, err := NationalStock(ctx, Cfg)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	built := Cfg.GetInt("SurvivalYear")
	if built < m.Survival.StartYear {
		built = m.Survival.StartYear
	}
	if err := cementflow.WriteSurvival(w, m.Survival, built); err != nil {
		return err
	}
	peakYear, peak := m.Inflows.Peak()
	fmt.Fprintf(w, "\nAverage annual concrete to buildings: %.1f million metric tons\n", m.Inflows.MeanToBuildings())
	fmt.Fprintf(w, "Peak year: %d (%.1f million metric tons)\n\n", peakYear, peak)
	if err := cementflow.WriteStockSummary(w, m.Stock, m.Parameters.CurrentYear, Cfg.GetFloat64("Population")); err != nil {
		return err
	}
	outputs := []struct {
		option string
		write  func(io.Writer) error
	}{
		{"TimeSeriesFile", func(w io.Writer) error { return cementflow.WriteTimeSeriesCSV(w, m.TimeSeries) }},
		{"InflowsFile", func(w io.Writer) error { return cementflow.WriteInflowsCSV(w, m.Inflows) }},
		{"WorkbookFile", func(w io.Writer) error { return cementflow.WriteWorkbook(w, m.TimeSeries, m.Inflows, nil) }},
		{"StockChart", func(w io.Writer) error { return charts.StockAnalysis(w, m.TimeSeries, m.Inflows) }},
	}
	for _, o := range outputs {
		if err := writeOption(ctx, o.option, o.write); err != nil {
			return err
		}
	}
	return nil
}

// writeOption writes to the path in the given option, if it is set.
func writeOption(ctx context.Context, option string, write func(io.Writer) error) error {
	path := Cfg.GetString(option)
	if path == "" {
		return nil
	}
	if err := writeOutput(ctx, path, write); err != nil {
		return err
	}
	log().WithField("file", path).Infof("wrote %s", option)
	return nil
}

// SpatialModel holds the results of a spatial allocation.
type SpatialModel struct {
	Year    int
	Stock   *StockModel // nil if the national stock was read from a file
	Regions []cementflow.Region
	Results []cementflow.RegionStock
}

// AllocateStock allocates the national stock to regions as specified
// in cfg.
func AllocateStock(ctx context.Context, cfg *viper.Viper) (*SpatialModel, error) {
	o := new(SpatialModel)
	var stocks cementflow.Stocks
	if f := cfg.GetString("NationalStockFile"); f != "" {
		err := readWith(ctx, f, func(r io.Reader) error {
			var err error
			stocks, o.Year, err = cementflow.ReadNationalStocks(r)
			return err
		})
		if err != nil {
			return nil, err
		}
	} else {
		m, err := NationalStock(ctx, cfg)
		if err != nil {
			return nil, err
		}
		o.Stock = m
		o.Year, stocks = m.TimeSeries.Latest()
	}

	regions := cementflow.SampleRegions()
	if f := cfg.GetString("RegionsFile"); f != "" {
		err := readWith(ctx, f, func(r io.Reader) error {
			var err error
			regions, err = cementflow.ReadRegions(r)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	if f := cfg.GetString("UnitsFile"); f != "" {
		if err := readWith(ctx, f, func(r io.Reader) error {
			return cementflow.ReadHousingUnits(r, regions)
		}); err != nil {
			return nil, err
		}
	}
	if f := cfg.GetString("SpendingFile"); f != "" {
		if err := readWith(ctx, f, func(r io.Reader) error {
			return cementflow.ReadSpending(r, regions)
		}); err != nil {
			return nil, err
		}
	}

	method, err := cementflow.ParseMethod(cfg.GetString("Method"))
	if err != nil {
		return nil, err
	}
	var strategies map[cementflow.BuildingType]cementflow.Strategy
	if f := cfg.GetString("StrategiesFile"); f != "" {
		err := readWith(ctx, f, func(r io.Reader) error {
			var err error
			strategies, err = cementflow.LoadStrategies(r)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	o.Regions = regions
	if o.Results, err = cementflow.AllocateNational(stocks, regions, method, strategies); err != nil {
		return nil, err
	}
	log().WithFields(logrus.Fields{
		"year":    o.Year,
		"regions": len(regions),
		"method":  method,
	}).Info("allocated national stock")
	return o, nil
}

func runSpatial(cmd *cobra.Command) error {
	ctx := cmd.Context()
	m, err := AllocateStock(ctx, Cfg)
	if err != nil {
		return err
	}
	s, err := cementflow.SummarizeSpatial(m.Results)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Spatial allocation of the %d stock\n", m.Year)
	if err := cementflow.WriteSpatialSummary(cmd.OutOrStdout(), s); err != nil {
		return err
	}
	c := cementflow.Characteristics(m.Regions, Cfg.GetInt("CurrentYear"))
	if err := cementflow.WriteCharacteristics(cmd.OutOrStdout(), c); err != nil {
		return err
	}
	if err := writeOption(ctx, "SpatialFile", func(w io.Writer) error {
		return cementflow.WriteSpatialCSV(w, m.Results)
	}); err != nil {
		return err
	}
	if err := writeOption(ctx, "WorkbookFile", func(w io.Writer) error {
		if m.Stock == nil {
			return cementflow.WriteWorkbook(w, nil, nil, m.Results)
		}
		return cementflow.WriteWorkbook(w, m.Stock.TimeSeries, m.Stock.Inflows, m.Results)
	}); err != nil {
		return err
	}
	return writeOption(ctx, "SpatialChart", func(w io.Writer) error {
		return charts.Spatial(w, m.Results)
	})
}
