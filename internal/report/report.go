// Package report writes priced grids to disk and to the terminal.
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/contactkeval/option-heatmap/internal/pricing"
)

// Extension is the only accepted suffix for grid exports.
const Extension = ".csv"

// ErrBadExtension is returned when an output name does not end in Extension.
var ErrBadExtension = errors.New("file names must end in " + Extension)

// SpotHeader labels the row-label column of a wide export.
const SpotHeader = "Spot Price"

// ValidateOutputNames checks both export names before any pricing happens.
func ValidateOutputNames(call, put string) error {
	for _, name := range []string{call, put} {
		if !strings.HasSuffix(name, Extension) {
			return fmt.Errorf("%w: %q", ErrBadExtension, name)
		}
	}
	return nil
}

// DefaultOutputNames returns call_<stamp>.csv and put_<stamp>.csv.
func DefaultOutputNames(now time.Time) (call, put string) {
	stamp := now.Format("2006-01-02_15-04-05")
	return "call_" + stamp + Extension, "put_" + stamp + Extension
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes g as a row- and column-labelled table: the header holds
// the strikes, each row starts with its spot.
func WriteCSV(out io.Writer, g pricing.Grid) error {
	w := csv.NewWriter(out)

	headers := make([]string, 0, g.Cols()+1)
	headers = append(headers, SpotHeader)
	for _, k := range g.Strikes {
		headers = append(headers, formatFloat(k))
	}
	if err := w.Write(headers); err != nil {
		return err
	}

	for i, s := range g.Spots {
		row := make([]string, 0, g.Cols()+1)
		row = append(row, formatFloat(s))
		for j := range g.Strikes {
			row = append(row, formatFloat(g.At(i, j)))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteCSVFile creates path (and its directory) and writes g to it.
func WriteCSVFile(path string, g pricing.Grid) error {
	return writeFile(path, func(f io.Writer) error { return WriteCSV(f, g) })
}

// cellRecord is one cell of a grid in long form.
type cellRecord struct {
	Spot   float64 `csv:"spot"`
	Strike float64 `csv:"strike"`
	Price  float64 `csv:"price"`
}

// WriteLongCSV writes g with one spot,strike,price record per cell.
func WriteLongCSV(out io.Writer, g pricing.Grid) error {
	records := make([]*cellRecord, 0, g.Rows()*g.Cols())
	for i, s := range g.Spots {
		for j, k := range g.Strikes {
			records = append(records, &cellRecord{Spot: s, Strike: k, Price: g.At(i, j)})
		}
	}

	if err := gocsv.Marshal(&records, out); err != nil {
		return fmt.Errorf("WriteLongCSV: %w", err)
	}
	return nil
}

// WriteLongCSVFile is WriteLongCSV to a file.
func WriteLongCSVFile(path string, g pricing.Grid) error {
	return writeFile(path, func(f io.Writer) error { return WriteLongCSV(f, g) })
}

// WriteJSON writes v as indented JSON.
func WriteJSON(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = out.Write(b)
	return err
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
