package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/arloliu/dirfile"
	"github.com/arloliu/dirfile/internal/config"
)

func (c command) info(dir string) error {
	df, err := c.open(dir)
	if err != nil {
		return err
	}
	defer df.Close()

	fmt.Fprintf(c.stdout, "path:   %s\n", df.Path())
	fmt.Fprintf(c.stdout, "fields: %d\n", df.NFields())
	fmt.Fprintf(c.stdout, "frames: %d\n", df.NFrames())

	return nil
}

func (c command) fields(dir string) error {
	df, err := c.open(dir)
	if err != nil {
		return err
	}
	defer df.Close()

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tSPF")
	for _, name := range df.Fields() {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", name, df.FieldType(name), df.SPF(name))
	}

	return tw.Flush()
}

func (c command) get(ctx context.Context, dir string, fields []string) error {
	values, err := dirfile.FetchMany(ctx, dir, fields,
		dirfile.WithLogger(c.logger),
		dirfile.WithConcurrency(c.cfg.Workers),
	)
	if err != nil {
		return err
	}

	names := uniqueNames(fields)
	if c.cfg.Output == config.OutputJSON {
		return c.writeJSON(names, values)
	}

	return c.writeCSV(names, values)
}

// writeCSV writes one column per field and one row per sample index. Cells
// past the end of a shorter field are left blank.
func (c command) writeCSV(names []string, values map[string][]float64) error {
	w := csv.NewWriter(c.stdout)
	if err := w.Write(names); err != nil {
		return err
	}

	rows := 0
	for _, name := range names {
		rows = max(rows, len(values[name]))
	}

	record := make([]string, len(names))
	for i := range rows {
		for j, name := range names {
			record[j] = ""
			if col := values[name]; i < len(col) {
				record[j] = c.formatValue(col[i])
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

func (c command) formatValue(v float64) string {
	if c.cfg.Precision < 0 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	return strconv.FormatFloat(v, 'f', c.cfg.Precision, 64)
}

// jsonValue encodes non-finite values as the strings "NaN", "+Inf" and "-Inf".
type jsonValue float64

func (v jsonValue) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.AppendQuote(nil, strconv.FormatFloat(f, 'g', -1, 64)), nil
	}

	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (c command) writeJSON(names []string, values map[string][]float64) error {
	out := make(map[string][]jsonValue, len(names))
	for _, name := range names {
		col := make([]jsonValue, len(values[name]))
		for i, v := range values[name] {
			col[i] = jsonValue(v)
		}
		out[name] = col
	}

	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

func uniqueNames(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}

	return out
}
