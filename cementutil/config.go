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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cementflow"
	"github.com/spatialmodel/cementflow/internal/table"
	"github.com/spf13/cast"
)

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return make(map[string]string), nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("cementflow: parsing %s: %w", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("cementflow: invalid type for %s: %#v", varName, i)
	}
}

// Parameters returns the stock model parameters specified in cfg.
func Parameters(cfg *viper.Viper) (*cementflow.Parameters, error) {
	p := cementflow.DefaultParameters()
	p.CurrentYear = cfg.GetInt("CurrentYear")
	p.ConcreteToCement = cfg.GetFloat64("ConcreteToCement")
	p.BuildingFraction = cfg.GetFloat64("BuildingFraction")
	lifetimes, err := GetStringMapString("Lifetimes", cfg)
	if err != nil {
		return nil, err
	}
	if p.Lifetimes, err = cementflow.ParseLifetimes(lifetimes); err != nil {
		return nil, err
	}
	return p, p.Validate()
}

// log returns the logger that commands write to.
func log() logrus.FieldLogger { return logrus.StandardLogger() }

// inputs returns the Input files, which must not be empty.
func inputs(cfg *viper.Viper) ([]string, error) {
	files := cfg.GetStringSlice("Input")
	if len(files) == 0 {
		return nil, fmt.Errorf("cementflow: no Input files specified")
	}
	return files, nil
}

// output returns the Output file, which must not be empty.
func output(cfg *viper.Viper) (string, error) {
	o := cfg.GetString("Output")
	if o == "" {
		return "", fmt.Errorf("cementflow: no Output file specified")
	}
	return o, nil
}

// readTable reads the table in path, downloading it first if necessary.
// Excel files are read from the configured Sheet and HeaderRow.
func readTable(ctx context.Context, cfg *viper.Viper, path string) (*table.Table, error) {
	local, err := maybeDownload(ctx, path, log())
	if err != nil {
		return nil, err
	}
	var t *table.Table
	if strings.EqualFold(filepath.Ext(local), ".xlsx") {
		t, err = table.ReadXLSX(local, cfg.GetString("Sheet"), cfg.GetInt("HeaderRow"))
	} else {
		t, err = table.ReadFile(local)
	}
	if err != nil {
		return nil, err
	}
	log().WithFields(logrus.Fields{"file": path, "rows": t.Len()}).Info("read table")
	return t, nil
}

// readTables reads and stacks the tables in paths.
func readTables(ctx context.Context, cfg *viper.Viper, paths []string) (*table.Table, error) {
	tables := make([]*table.Table, len(paths))
	for i, p := range paths {
		var err error
		if tables[i], err = readTable(ctx, cfg, p); err != nil {
			return nil, err
		}
	}
	return table.Concat(tables...), nil
}

// writeTable writes t to path as CSV.
func writeTable(ctx context.Context, path string, t *table.Table) error {
	if err := writeOutput(ctx, path, t.WriteCSV); err != nil {
		return err
	}
	log().WithFields(logrus.Fields{"file": path, "rows": t.Len()}).Info("wrote table")
	return nil
}
