// Package ingest parses and cleans daily sales data from uploaded
// files. The source format is a tagged kind, not a duck-typed branch:
// every supported format is an explicit SourceKind with its own reader.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"supplynav/internal/model"
)

// SourceKind tags a supported ingestion format.
type SourceKind string

const (
	SourceCSV   SourceKind = "csv"
	SourceExcel SourceKind = "excel"
)

// ErrUnknownSource is returned for a kind with no registered reader.
var ErrUnknownSource = errors.New("unknown ingestion source")

// ParseKind normalizes a user-supplied source name, accepting common
// file extensions as aliases.
func ParseKind(s string) (SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return SourceCSV, nil
	case "excel", "xlsx", "xls":
		return SourceExcel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
}

// Report is the outcome of one ingestion run: the cleaned records plus
// row-level accounting of what was dropped and why.
type Report struct {
	RowsRead    int
	RowsKept    int
	RowsDropped int
	Records     []model.SalesRecord
	Issues      []string
}

// ReadSales parses sales rows from r according to kind and cleans them.
func ReadSales(kind SourceKind, r io.Reader) (*Report, error) {
	var (
		rows [][]string
		err  error
	)
	switch kind {
	case SourceCSV:
		rows, err = readCSVRows(r)
	case SourceExcel:
		rows, err = readExcelRows(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, kind)
	}
	if err != nil {
		return nil, err
	}
	return clean(rows)
}

// Expected header columns, by name. Revenue is optional.
var requiredColumns = []string{"date", "warehouse_id", "sku_id", "units_sold"}

// clean validates rows against the required header, drops malformed or
// duplicate entries, and reports every dropped row.
func clean(rows [][]string) (*Report, error) {
	if len(rows) == 0 {
		return nil, errors.New("no rows in input")
	}

	header := map[string]int{}
	for i, h := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}
	revenueIdx, hasRevenue := header["revenue"]

	rep := &Report{}
	seen := map[string]bool{}
	for rowNum, row := range rows[1:] {
		rep.RowsRead++
		drop := func(reason string) {
			rep.RowsDropped++
			rep.Issues = append(rep.Issues, fmt.Sprintf("row %d: %s", rowNum+2, reason))
		}

		get := func(col string) string {
			i := header[col]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		dateStr := get("date")
		d, err := parseDate(dateStr)
		if err != nil {
			drop(fmt.Sprintf("bad date %q", dateStr))
			continue
		}
		wh := get("warehouse_id")
		sku := get("sku_id")
		if wh == "" || sku == "" {
			drop("empty warehouse_id or sku_id")
			continue
		}
		units, err := strconv.Atoi(get("units_sold"))
		if err != nil || units < 0 {
			drop(fmt.Sprintf("bad units_sold %q", get("units_sold")))
			continue
		}

		key := d + "|" + wh + "|" + sku
		if seen[key] {
			drop("duplicate (date, warehouse_id, sku_id)")
			continue
		}
		seen[key] = true

		rec := model.SalesRecord{Date: d, WarehouseID: wh, SKUID: sku, UnitsSold: units}
		if hasRevenue && revenueIdx < len(row) {
			if rev, err := strconv.ParseFloat(strings.TrimSpace(row[revenueIdx]), 64); err == nil && rev >= 0 {
				rec.Revenue = rev
			}
		}
		rep.Records = append(rep.Records, rec)
		rep.RowsKept++
	}
	return rep, nil
}

// parseDate accepts ISO dates and the slash format spreadsheets tend to
// produce, normalizing to YYYY-MM-DD.
func parseDate(s string) (string, error) {
	for _, layout := range []string{"2006-01-02", "01/02/2006", "2006/01/02"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unparseable date %q", s)
}
