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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func TestIsBlob(t *testing.T) {
	for path, want := range map[string]bool{
		"gs://bucket/file.csv": true,
		"s3://bucket/file.csv": true,
		"file:///tmp/file.csv": true,
		"/tmp/file.csv":        false,
		"https://x.org/f.csv":  false,
	} {
		if IsBlob(path) != want {
			t.Errorf("IsBlob(%q) = %v", path, !want)
		}
	}
}

func TestSplitBlob(t *testing.T) {
	tests := []struct {
		path, bucket, key string
	}{
		{"file:///tmp/x/results.csv", "file:///tmp/x", "results.csv"},
		{"gs://bucket/dir/results.csv", "gs://bucket", "dir/results.csv"},
		{"s3://bucket/results.csv?region=us-east-2", "s3://bucket?region=us-east-2", "results.csv"},
	}
	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			b, k, err := splitBlob(test.path)
			if err != nil {
				t.Fatal(err)
			}
			if b != test.bucket || k != test.key {
				t.Errorf("got %s, %s; want %s, %s", b, k, test.bucket, test.key)
			}
		})
	}
	if _, _, err := splitBlob("ftp://x/y"); err == nil {
		t.Error("expected an error for an invalid provider")
	}
}

func TestExpandShp(t *testing.T) {
	want := []string{"gs://b/mines.shp", "gs://b/mines.dbf", "gs://b/mines.shx", "gs://b/mines.prj"}
	if got := expandShp("gs://b/mines.shp"); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := expandShp("mines.csv"); !reflect.DeepEqual(got, []string{"mines.csv"}) {
		t.Errorf("got %v", got)
	}
}

func TestMaybeDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/production.csv" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "year,cement_production_mt\n2020,90\n")
	}))
	defer srv.Close()
	ctx := context.Background()

	local, err := maybeDownload(ctx, srv.URL+"/data/production.csv", quietLog())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(local) != "production.csv" {
		t.Errorf("downloaded to %s", local)
	}
	b, err := os.ReadFile(local)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "year,cement_production_mt\n2020,90\n" {
		t.Errorf("downloaded %q", b)
	}

	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	if _, err := maybeDownload(ctx, srv.URL+"/missing.csv", quietLog()); err == nil {
		t.Error("expected an error for a missing file")
	}
	if left, err := os.ReadDir(tmp); err != nil || len(left) != 0 {
		t.Errorf("download directory not removed: %v %v", left, err)
	}

	if p, err := maybeDownload(ctx, "production.csv", quietLog()); err != nil || p != "production.csv" {
		t.Errorf("local file: %s, %v", p, err)
	}
}

func TestBlobRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	path := "file://" + filepath.ToSlash(dir) + "/out.txt"
	err := writeOutput(ctx, path, func(w io.Writer) error {
		_, err := fmt.Fprint(w, "concrete")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "concrete" {
		t.Errorf("wrote %q", b)
	}

	local, err := maybeDownload(ctx, path, quietLog())
	if err != nil {
		t.Fatal(err)
	}
	if b, err = os.ReadFile(local); err != nil || string(b) != "concrete" {
		t.Errorf("downloaded %q, %v", b, err)
	}
}

func TestUploader(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	u := new(uploader)
	if p := u.maybeUpload("local.shp"); p != "local.shp" {
		t.Errorf("local path changed to %s", p)
	}
	tmp := u.maybeUpload("file://" + filepath.ToSlash(dir) + "/mines.shp")
	if filepath.Base(tmp) != "mines.shp" || IsBlob(tmp) {
		t.Fatalf("temporary path %s", tmp)
	}
	if len(u.files) != 4 {
		t.Fatalf("registered %d files, want 4", len(u.files))
	}
	for _, ext := range []string{".shp", ".dbf", ".shx", ".prj"} {
		if err := os.WriteFile(tmp[:len(tmp)-4]+ext, []byte(ext), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := u.upload(ctx); err != nil {
		t.Fatal(err)
	}
	for _, ext := range []string{".shp", ".dbf", ".shx", ".prj"} {
		b, err := os.ReadFile(filepath.Join(dir, "mines"+ext))
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != ext {
			t.Errorf("%s: got %q", ext, b)
		}
	}
}
