// Package loader reads order datasets from JSON, YAML, CSV and XLSX files.
package loader

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/restock/internal/model"
)

// Format identifies a dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// maxConcurrentFiles bounds parallel file reads in LoadFiles.
const maxConcurrentFiles = 8

// Dataset is a set of extracted orders plus the messages they came from.
type Dataset struct {
	Orders   []model.ExtractedOrder `json:"orders" yaml:"orders"`
	Messages []model.RawEmail       `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// Append adds other's orders and messages after d's.
func (d *Dataset) Append(other *Dataset) {
	if other == nil {
		return
	}
	d.Orders = append(d.Orders, other.Orders...)
	d.Messages = append(d.Messages, other.Messages...)
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("loader: unsupported file type %q", path)
	}
}

// LoadFile reads one dataset file, picking the decoder by extension.
func LoadFile(ctx context.Context, path string) (*Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if format == FormatXLSX {
		ds, err := readXLSX(path)
		return ds, eris.Wrapf(err, "loader: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	ds, err := Decode(ctx, f, format)
	return ds, eris.Wrapf(err, "loader: %s", path)
}

// LoadFiles reads every path concurrently and merges the datasets in the
// order the paths were given.
func LoadFiles(ctx context.Context, paths []string) (*Dataset, error) {
	results := make([]*Dataset, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFiles)
	for i, path := range paths {
		g.Go(func() error {
			ds, err := LoadFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &Dataset{}
	for _, ds := range results {
		merged.Append(ds)
	}
	return merged, nil
}

// Decode reads a dataset in the given format from r. XLSX needs random
// access and is only supported through LoadFile.
func Decode(ctx context.Context, r io.Reader, format Format) (*Dataset, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(ctx, r)
	case FormatYAML:
		return decodeYAML(r)
	case FormatCSV:
		return decodeCSV(ctx, r)
	case FormatXLSX:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, eris.Wrap(err, "xlsx: read")
		}
		return readXLSXBytes(data)
	default:
		return nil, eris.Errorf("loader: unsupported format %q", format)
	}
}

// firstByte returns the first non-space byte of data, or 0.
func firstByte(data []byte) byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
