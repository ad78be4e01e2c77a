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
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"

	// Blob storage providers.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// splitBlob splits a blob path into the URL of its bucket and its key.
// For "file://" paths the bucket is the directory holding the file.
func splitBlob(path string) (bucketURL, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("cementutil: parsing blob path %s: %w", path, err)
	}
	switch u.Scheme {
	case "file":
		p := filepath.FromSlash(u.Host + u.Path)
		return "file://" + filepath.ToSlash(filepath.Dir(p)), filepath.Base(p), nil
	case "gs", "s3":
		bucketURL = u.Scheme + "://" + u.Host
		if u.RawQuery != "" {
			bucketURL += "?" + u.RawQuery
		}
		return bucketURL, strings.TrimPrefix(u.Path, "/"), nil
	default:
		return "", "", fmt.Errorf("cementutil: invalid blob provider %s", u.Scheme)
	}
}

// OpenBucket opens the blob storage bucket holding the given path.
// The accepted storage providers are "file" for the local filesystem
// (e.g., for testing), "gs" for Google Cloud Storage, and "s3" for AWS S3.
// Credentials for gs and s3 are taken from the environment.
func OpenBucket(ctx context.Context, path string) (*blob.Bucket, string, error) {
	bucketURL, key, err := splitBlob(path)
	if err != nil {
		return nil, "", err
	}
	var b *blob.Bucket
	err = retry(func() error {
		var err error
		b, err = blob.OpenBucket(ctx, bucketURL)
		return err
	})
	if err != nil {
		return nil, "", fmt.Errorf("cementutil: opening bucket %s: %w", bucketURL, err)
	}
	return b, key, nil
}

// retry runs f until it succeeds, giving up after a few attempts.
func retry(f func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	return backoff.RetryNotify(f, backoff.WithMaxRetries(b, 3),
		func(err error, d time.Duration) {
			logrus.Warnf("%v: retrying in %v", err, d)
		},
	)
}

type blobWriter struct {
	*blob.Writer
	bucket *blob.Bucket
}

func (w blobWriter) Close() error {
	err := w.Writer.Close()
	if err2 := w.bucket.Close(); err == nil {
		err = err2
	}
	return err
}

type blobReader struct {
	*blob.Reader
	bucket *blob.Bucket
}

func (r blobReader) Close() error {
	err := r.Reader.Close()
	if err2 := r.bucket.Close(); err == nil {
		err = err2
	}
	return err
}

// createOutput creates a file at path, which may be a local file or a
// blob. The output is not complete until it is closed.
func createOutput(ctx context.Context, path string) (io.WriteCloser, error) {
	if !IsBlob(path) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return nil, fmt.Errorf("cementutil: creating output directory: %w", err)
			}
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("cementutil: creating output file: %w", err)
		}
		return f, nil
	}
	bucket, key, err := OpenBucket(ctx, path)
	if err != nil {
		return nil, err
	}
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		bucket.Close()
		return nil, fmt.Errorf("cementutil: opening writer for blob %s: %w", path, err)
	}
	return blobWriter{Writer: w, bucket: bucket}, nil
}

// writeOutput creates the output at path and writes to it with write.
func writeOutput(ctx context.Context, path string, write func(io.Writer) error) error {
	w, err := createOutput(ctx, path)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		w.Close()
		return fmt.Errorf("cementutil: writing %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("cementutil: closing %s: %w", path, err)
	}
	return nil
}

// openInput opens path, which may be a local file, an http(s) URL, or
// a blob.
func openInput(ctx context.Context, path string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("cementutil: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("cementutil: downloading %s: %w", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("cementutil: downloading %s: %s", path, resp.Status)
		}
		return resp.Body, nil
	case IsBlob(path):
		bucket, key, err := OpenBucket(ctx, path)
		if err != nil {
			return nil, err
		}
		r, err := bucket.NewReader(ctx, key, nil)
		if err != nil {
			bucket.Close()
			return nil, fmt.Errorf("cementutil: reading blob %s: %w", path, err)
		}
		return blobReader{Reader: r, bucket: bucket}, nil
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cementutil: %w", err)
		}
		return f, nil
	}
}

// maybeDownload returns path if it is a local file. Otherwise, it copies
// the file from its URL or blob storage into a temporary directory and
// returns the path to the copy. Shapefiles are copied along with their
// associated files.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) (local string, err error) {
	if !IsBlob(path) && !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		return path, nil
	}
	dir, err := os.MkdirTemp("", "cementflow")
	if err != nil {
		return "", fmt.Errorf("cementutil: creating temporary download directory: %w", err)
	}
	defer func() {
		if err != nil {
			os.RemoveAll(dir)
		}
	}()
	files := expandShp(path)
	for _, f := range files {
		log.WithField("file", f).Info("downloading")
		r, err := openInput(ctx, f)
		if err != nil {
			return "", err
		}
		w, err := os.Create(filepath.Join(dir, baseName(f)))
		if err != nil {
			r.Close()
			return "", fmt.Errorf("cementutil: creating file for download: %w", err)
		}
		_, err = io.Copy(w, r)
		r.Close()
		if err2 := w.Close(); err == nil {
			err = err2
		}
		if err != nil {
			return "", fmt.Errorf("cementutil: downloading %s: %w", f, err)
		}
	}
	return filepath.Join(dir, baseName(files[0])), nil
}

// baseName returns the last element of a file path or URL path.
func baseName(path string) string {
	if u, err := url.Parse(path); err == nil && u.Scheme != "" {
		return filepath.Base(u.Path)
	}
	return filepath.Base(path)
}

// expandShp returns the given file + associated [.dbf, .shx, .prj]
// files if the given file has the .shp extension, and returns the given
// file otherwise
func expandShp(filename string) []string {
	o := []string{filename}
	ext := filepath.Ext(filename)
	if ext != ".shp" {
		return o
	}
	for _, newExt := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, filename[0:len(filename)-4]+newExt)
	}
	return o
}

type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string
	err   error
	dir   string
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// the upload method is run.
func (u *uploader) maybeUpload(path string) string {
	if u.err != nil {
		return ""
	}
	if !IsBlob(path) {
		return path
	}
	if u.dir == "" {
		u.dir, u.err = os.MkdirTemp("", "cementflow")
		if u.err != nil {
			return ""
		}
	}
	files := expandShp(path)
	for _, f := range files {
		u.files = append(u.files, [2]string{
			filepath.Join(u.dir, baseName(f)),
			f,
		})
	}
	return filepath.Join(u.dir, baseName(files[0]))
}

// upload copies the files registered with maybeUpload to blob storage.
func (u *uploader) upload(ctx context.Context) error {
	if u.err != nil {
		return u.err
	}
	for _, files := range u.files {
		err := func() error {
			r, err := os.Open(files[0])
			if err != nil {
				return fmt.Errorf("cementutil: opening file '%s' for upload: %w", files[0], err)
			}
			defer r.Close()
			return writeOutput(ctx, files[1], func(w io.Writer) error {
				_, err := io.Copy(w, r)
				return err
			})
		}()
		if err != nil {
			return err
		}
	}
	return nil
}
