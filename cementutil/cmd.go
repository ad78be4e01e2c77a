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

// Package cementutil contains the command-line interface to the
// cementflow model and its data preparation tools.
package cementutil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cementflow"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to cementflow.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel sets the level of log messages to print. Options
              are "debug", "info", "warn", and "error".`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "ProductionFile",
			usage: `
              ProductionFile is a CSV file with columns "year" and
              "production_mt" giving annual cement production in
              million metric tons. If it is empty, a built-in approximate
              1950-2024 series is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{stockCmd.Flags(), spatialCmd.Flags()},
		},
		{
			name: "AllocationFile",
			usage: `
              AllocationFile is a CSV file with columns "year",
              "residential_fraction", "commercial_fraction",
              "institutional_fraction", and "industrial_fraction" giving the
              fraction of building concrete that goes to each building type
              in each year. If it is empty, the same default fractions are used
              for every year.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{stockCmd.Flags(), spatialCmd.Flags()},
		},
		{
			name: "CurrentYear",
			usage: `
              CurrentYear is the year to calculate the stock for.`,
			defaultVal: 2024,
			flagsets:   []*pflag.FlagSet{stockCmd.Flags(), spatialCmd.Flags()},
		},
		{
			name: "StartYear",
			usage: `
              StartYear is the first year of the stock time series. If it is
              zero the first production year is used.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{stockCmd.Flags()},
		},
		{
			name: "SurvivalYear",
			usage: `
              SurvivalYear is the construction year whose survival
              probabilities in CurrentYear are printed. If it is before
              StartYear, StartYear is used.`,
			defaultVal: 1970,
			flagsets:   []*pflag.FlagSet{stockCmd.Flags()},
		},
		{
			name: "ConcreteToCement",
			usage: `
              ConcreteToCement is the tons of concrete made from each ton
              of cement.`,
			defaultVal: 5.5,
			flagsets:   []*pflag.FlagSet{stockCmd.Flags(), spatialCmd.Flags()},
		},
		{
			name: "BuildingFraction",
			usage: `
              BuildingFraction is the fraction of concrete that is used in
              buildings rather than infrastructure.`,
			defaultVal: 0.55,
			flagsets:   []*pflag.FlagSet{stockCmd.Flags(), spatialCmd.Flags()},
		},
		{
			name: "Lifetimes",
			usage: `
              Lifetimes overrides the building lifetime distributions. Keys
              are building types and values are in the form
              "normal:mean:std" or "weibull:shape:scale", in years.
              Building types that are not given keep their default lifetime.
              When set from the command line it should be in JSON format,
              for example '{"residential":"weibull:2.5:80"}'.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{stockCmd.Flags(), spatialCmd.Flags()},
		},
		{
			name: "Population",
			usage: `
              Population is the number of people used to calculate the
              national per capita stock.`,
			defaultVal: 335e6,
			flagsets:   []*pflag.FlagSet{stockCmd.Flags()},
		},
		{
			name: "TimeSeriesFile",
			usage: `
              TimeSeriesFile is the path to write the stock time series to
              as CSV. Blob paths (gs://, s3://, file://) are allowed here
              and for the other output files. If it is empty no file is
              written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{stockCmd.Flags()},
		},
		{
			name: "InflowsFile",
			usage: `
              InflowsFile is the path to write the annual concrete inflows
              to as CSV.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{stockCmd.Flags()},
		},
		{
			name: "StockChart",
			usage: `
              StockChart is the path to write a PNG chart of the stock time
              series, its composition, the inflows, and the growth rate to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{stockCmd.Flags()},
		},
		{
			name: "WorkbookFile",
			usage: `
              WorkbookFile is the path to write the results to as an
              Excel workbook.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{stockCmd.Flags(), spatialCmd.Flags()},
		},
		{
			name: "NationalStockFile",
			usage: `
              NationalStockFile is a stock time series CSV as written by
              the stock command. The last year in the file is allocated.
              If it is empty, the national stock is calculated using the
              stock options.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{spatialCmd.Flags()},
		},
		{
			name: "RegionsFile",
			usage: `
              RegionsFile is a CSV file of regional proxy variables with
              columns "state", "state_abbrev", "population" (millions), "gdp"
              (billion $), "floor_area" (million m²), "urbanization",
              "avg_construction_year", and optionally "nighttime_lights".
              If it is empty, built-in data for the ten most populous
              states is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{spatialCmd.Flags()},
		},
		{
			name: "Method",
			usage: `
              Method is the spatial allocation method. Options are
              "population", "gdp", "floor_area", "nighttime_lights",
              "hybrid", "building_type", and "construction_spending".
              "building_type" requires UnitsFile and
              "construction_spending" requires SpendingFile.`,
			defaultVal: "hybrid",
			flagsets:   []*pflag.FlagSet{spatialCmd.Flags()},
		},
		{
			name: "UnitsFile",
			usage: `
              UnitsFile is a cleaned ACS table B25024 file, as written by
              "clean buildingtypes", with the housing units of each
              structure type in each region. Regions are matched by
              "state_name".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{spatialCmd.Flags()},
		},
		{
			name: "SpendingFile",
			usage: `
              SpendingFile is a CSV file of annual construction spending
              with a "year" column and one column per region, named by
              the region's abbreviation.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{spatialCmd.Flags()},
		},
		{
			name: "StrategiesFile",
			usage: `
              StrategiesFile is a TOML file with hybrid allocation weights
              for each building type. Building types that are not in the
              file use the default weights.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{spatialCmd.Flags()},
		},
		{
			name: "SpatialFile",
			usage: `
              SpatialFile is the path to write the regional stocks to as CSV.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{spatialCmd.Flags()},
		},
		{
			name: "SpatialChart",
			usage: `
              SpatialChart is the path to write a PNG chart of the regional
              stocks to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{spatialCmd.Flags()},
		},
		{
			name: "Input",
			usage: `
              Input is one or more input files. Files may be local, http(s)
              URLs, or blob paths. Files ending in .xlsx are read as Excel
              files; other files are read as CSV.`,
			shorthand:  "i",
			defaultVal: []string{},
			flagsets: []*pflag.FlagSet{cleanCmd.PersistentFlags(), summarizeCmd.PersistentFlags(),
				geocodeCmd.Flags(), scrapeCmd.Flags(), flowsCmd.Flags()},
		},
		{
			name: "Output",
			usage: `
              Output is the output file. It may be a local path or a blob path.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets: []*pflag.FlagSet{cleanCmd.PersistentFlags(), summarizeCmd.PersistentFlags(),
				mergeCmd.Flags(), geocodeCmd.Flags(), scrapeCmd.Flags()},
		},
		{
			name: "Sheet",
			usage: `
              Sheet is the name of the sheet to read from Excel input files.
              If it is empty the first sheet is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cleanCmd.PersistentFlags(), summarizeCmd.PersistentFlags(), geocodeCmd.Flags(), flowsCmd.Flags()},
		},
		{
			name: "HeaderRow",
			usage: `
              HeaderRow is the row of Excel input files that holds the
              column names, starting at 0.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{cleanCmd.PersistentFlags(), summarizeCmd.PersistentFlags(), geocodeCmd.Flags(), flowsCmd.Flags()},
		},
		{
			name: "StatusFile",
			usage: `
              StatusFile is the MSHA mine status data.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cleanMinesCmd.Flags(), summarizeMinesCmd.Flags()},
		},
		{
			name: "AddressFile",
			usage: `
              AddressFile is the MSHA mine address data.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cleanMinesCmd.Flags(), summarizeMinesCmd.Flags()},
		},
		{
			name: "ShapefileOutput",
			usage: `
              ShapefileOutput is the path to write a point shapefile of the
              cleaned mine locations to. If it is empty no shapefile is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cleanGeocodedCmd.Flags()},
		},
		{
			name: "Year",
			usage: `
              Year is the year to summarize. If it is zero the last year
              in the data is used.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{summarizeAggregateCmd.Flags(), flowsCmd.Flags()},
		},
		{
			name: "ProductionChart",
			usage: `
              ProductionChart is the path to write a PNG chart of annual
              aggregate production to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{summarizeAggregateCmd.Flags()},
		},
		{
			name: "CementFile",
			usage: `
              CementFile is the cement production summary by state, as
              written by 'summarize cement'.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mergeCmd.Flags()},
		},
		{
			name: "AggregateFile",
			usage: `
              AggregateFile is the aggregate production by state, as
              written by 'summarize aggregate'.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{mergeCmd.Flags()},
		},
		{
			name: "AddressColumn",
			usage: `
              AddressColumn is the input column holding one-line addresses.`,
			defaultVal: "full_address",
			flagsets:   []*pflag.FlagSet{geocodeCmd.Flags()},
		},
		{
			name: "GeocoderURL",
			usage: `
              GeocoderURL is the address of the one-line-address geocoding
              service.`,
			defaultVal: "https://geocoding.geo.census.gov/geocoder/locations/onelineaddress",
			flagsets:   []*pflag.FlagSet{geocodeCmd.Flags()},
		},
		{
			name: "GeocodeDelay",
			usage: `
              GeocodeDelay is the time to wait between geocoding requests,
              for example "100ms".`,
			defaultVal: "100ms",
			flagsets:   []*pflag.FlagSet{geocodeCmd.Flags()},
		},
		{
			name: "GeocodeAttempts",
			usage: `
              GeocodeAttempts is the number of times to try each address
              before giving up.`,
			defaultVal: 3,
			flagsets:   []*pflag.FlagSet{geocodeCmd.Flags()},
		},
		{
			name: "GeocodeCacheSize",
			usage: `
              GeocodeCacheSize is the number of geocoded addresses to
              keep in memory.`,
			defaultVal: 10000,
			flagsets:   []*pflag.FlagSet{geocodeCmd.Flags()},
		},
		{
			name: "JSONOutput",
			usage: `
              JSONOutput is the path to write the scraped fact sheets to
              as JSON. If it is empty no JSON file is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{scrapeCmd.Flags()},
		},
		{
			name: "SankeyChart",
			usage: `
              SankeyChart is the path to write a PNG sankey diagram of the
              material flows in Year to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{flowsCmd.Flags()},
		},
		{
			name: "ConsumptionChart",
			usage: `
              ConsumptionChart is the path to write a PNG chart of
              consumption and production over time to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{flowsCmd.Flags()},
		},
		{
			name: "GapChart",
			usage: `
              GapChart is the path to write a PNG chart of the gap between
              consumption and production, with imports and exports, to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{flowsCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CEMENTFLOW")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(stockCmd)
	Root.AddCommand(spatialCmd)
	Root.AddCommand(cleanCmd)
	cleanCmd.AddCommand(cleanProductionCmd, cleanConsumptionCmd, cleanCementCmd,
		cleanMinesCmd, cleanGeocodedCmd, cleanPermitsCmd, cleanBuildingTypesCmd)
	Root.AddCommand(summarizeCmd)
	summarizeCmd.AddCommand(summarizeCementCmd, summarizeMinesCmd, summarizeAggregateCmd)
	Root.AddCommand(mergeCmd)
	Root.AddCommand(geocodeCmd)
	Root.AddCommand(scrapeCmd)
	Root.AddCommand(flowsCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("cementflow: problem reading configuration file: %v", err)
		}
	}
	lvl, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("cementflow: %v", err)
	}
	logrus.SetLevel(lvl)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "cementflow",
	Short: "A stock-flow model of concrete in US buildings.",
	Long: `cementflow estimates the concrete held in US buildings from historical cement
production, using building survival functions, and distributes the national
stock among regions using proxy variables. It also includes tools for preparing
the supporting data on cement, sand and gravel, mines, and building permits.
Use the subcommands specified below to access the functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CEMENTFLOW_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
	SilenceUsage:      true,
	SilenceErrors:     true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of cementflow.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("cementflow v%s\n", cementflow.Version)
	},
	DisableAutoGenTag: true,
}

// stockCmd calculates the national stock.
var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Calculate the national concrete stock.",
	Long: `stock converts annual cement production to concrete inflows to each building
type and accumulates them into a standing stock using building survival
functions. The survival of buildings built in SurvivalYear, the peak
inflow, and a summary of the stock in CurrentYear are printed, and the
time series, inflows, workbook, and chart are written if their paths are given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStock(cmd)
	},
	DisableAutoGenTag: true,
}

// spatialCmd allocates the national stock to regions.
var spatialCmd = &cobra.Command{
	Use:   "spatial",
	Short: "Allocate the national stock to regions.",
	Long: `spatial distributes the national stock of each building type among regions
using proxy variables and prints summary statistics of the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSpatial(cmd)
	},
	DisableAutoGenTag: true,
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean raw input data.",
	Long: `clean prepares raw data sets for analysis. Use the subcommands specified below
to choose the data set.`,
	DisableAutoGenTag: true,
}

var cleanProductionCmd = &cobra.Command{
	Use:   "production",
	Short: "Clean USGS aggregate production data.",
	Long: `production reduces the USGS aggregates time series in Input to state
total production of each year, state, and region.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cleanProduction(cmd.Context())
	},
	DisableAutoGenTag: true,
}

var cleanConsumptionCmd = &cobra.Command{
	Use:   "consumption",
	Short: "Clean USGS sand and gravel consumption data.",
	Long: `consumption keeps the year, production, imports, exports, and apparent
consumption columns of the USGS construction sand and gravel data in Input.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cleanConsumption(cmd.Context())
	},
	DisableAutoGenTag: true,
}

var cleanCementCmd = &cobra.Command{
	Use:   "cement",
	Short: "Clean and merge EPA GHGRP cement producer data.",
	Long: `cement keeps the cement producing facilities in each GHGRP file in Input
and stacks them into one table. The reporting year is taken from file names
of the form "cement_production_YYYY"; files without a year are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cleanCement(cmd.Context())
	},
	DisableAutoGenTag: true,
}

var cleanMinesCmd = &cobra.Command{
	Use:   "mines",
	Short: "Join and clean MSHA mine data.",
	Long: `mines joins the MSHA mine status and address data, drops mines without a
street address, and writes the mine addresses with a one-line address
column for geocoding.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cleanMines(cmd.Context())
	},
	DisableAutoGenTag: true,
}

var cleanGeocodedCmd = &cobra.Command{
	Use:   "geocoded",
	Short: "Clean geocoded mine locations.",
	Long: `geocoded drops abandoned mines and mines that could not be geocoded from the
geocoded mine table in Input, and optionally writes them as a shapefile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cleanGeocoded(cmd.Context())
	},
	DisableAutoGenTag: true,
}

var cleanPermitsCmd = &cobra.Command{
	Use:   "permits",
	Short: "Clean Census building permit files.",
	Long: `permits cleans the Census building permit files in Input. Each file's
year is taken from its name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cleanPermits(cmd.Context())
	},
	DisableAutoGenTag: true,
}

var cleanBuildingTypesCmd = &cobra.Command{
	Use:   "buildingtypes",
	Short: "Clean ACS units-in-structure data.",
	Long: `buildingtypes renames the ACS table B25024 columns in Input to building type
names and drops the margin of error columns.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cleanBuildingTypes(cmd.Context())
	},
	DisableAutoGenTag: true,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize cleaned data.",
	Long: `summarize calculates state and national summaries of cleaned data sets.
Use the subcommands specified below to choose the data set.`,
	DisableAutoGenTag: true,
}

var summarizeCementCmd = &cobra.Command{
	Use:   "cement",
	Short: "Summarize cement production by state.",
	Long: `cement summarizes the cleaned cement producers in Input by state, writes the
state summary to Output, and prints national totals.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return summarizeCement(cmd.Context(), cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

var summarizeMinesCmd = &cobra.Command{
	Use:   "mines",
	Short: "Count active mines by state.",
	Long: `mines cross-references the MSHA mine address and status data, writes the
active mines to Output, and prints the number of active mines in each state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return summarizeMines(cmd.Context(), cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

var summarizeAggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Summarize aggregate production by state.",
	Long: `aggregate sums the cleaned aggregate production in Input by state for Year,
writes the result to Output, and prints the national total.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return summarizeAggregate(cmd.Context(), cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge cement and aggregate production by state.",
	Long: `merge combines the cement production summary in CementFile with the
aggregate production in AggregateFile, matching states by name or
abbreviation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mergeProduction(cmd.Context(), cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Geocode addresses.",
	Long: `geocode adds "lat" and "lon" columns to the table in Input by looking up the
addresses in AddressColumn with the Census geocoder. Addresses that cannot
be geocoded are left without coordinates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return geocode(cmd.Context())
	},
	DisableAutoGenTag: true,
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape cement industry state fact sheets.",
	Long: `scrape extracts the companies, plant locations, and terminals from the
state fact sheet PDFs in Input.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return scrape(cmd.Context())
	},
	DisableAutoGenTag: true,
}

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "Analyze national material flows.",
	Long: `flows summarizes the national sand and gravel production, trade, and
consumption in Input and draws the requested charts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyzeFlows(cmd.Context(), cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}
