package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]SourceKind{
		"csv":   SourceCSV,
		"CSV":   SourceCSV,
		"xlsx":  SourceExcel,
		"excel": SourceExcel,
		" xls ": SourceExcel,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("parquet")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestReadSalesCSV(t *testing.T) {
	csv := strings.Join([]string{
		"date,warehouse_id,sku_id,units_sold,revenue",
		"2026-05-01,WH1,SKU1,120,600.00",
		"05/02/2026,WH1,SKU1,130,650.00",
		"2026-05-03,WH1,SKU1,140,",
	}, "\n")

	rep, err := ReadSales(SourceCSV, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 3, rep.RowsRead)
	assert.Equal(t, 3, rep.RowsKept)
	assert.Equal(t, 0, rep.RowsDropped)
	require.Len(t, rep.Records, 3)

	assert.Equal(t, "2026-05-01", rep.Records[0].Date)
	assert.Equal(t, "WH1", rep.Records[0].WarehouseID)
	assert.Equal(t, "SKU1", rep.Records[0].SKUID)
	assert.Equal(t, 120, rep.Records[0].UnitsSold)
	assert.Equal(t, 600.0, rep.Records[0].Revenue)

	// Slash date normalized to ISO.
	assert.Equal(t, "2026-05-02", rep.Records[1].Date)
	// Missing revenue stays zero.
	assert.Equal(t, 0.0, rep.Records[2].Revenue)
}

func TestReadSalesDropsBadRows(t *testing.T) {
	csv := strings.Join([]string{
		"date,warehouse_id,sku_id,units_sold",
		"2026-05-01,WH1,SKU1,100",
		"not-a-date,WH1,SKU1,100",
		"2026-05-02,,SKU1,100",
		"2026-05-03,WH1,SKU1,-5",
		"2026-05-01,WH1,SKU1,999",
	}, "\n")

	rep, err := ReadSales(SourceCSV, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 5, rep.RowsRead)
	assert.Equal(t, 1, rep.RowsKept)
	assert.Equal(t, 4, rep.RowsDropped)
	require.Len(t, rep.Issues, 4)
	assert.Contains(t, rep.Issues[0], "bad date")
	assert.Contains(t, rep.Issues[1], "empty warehouse_id")
	assert.Contains(t, rep.Issues[2], "bad units_sold")
	assert.Contains(t, rep.Issues[3], "duplicate")
	// Issues carry 1-based spreadsheet row numbers, header included.
	assert.Contains(t, rep.Issues[0], "row 3:")
}

func TestReadSalesMissingColumn(t *testing.T) {
	csv := "date,warehouse_id,units_sold\n2026-05-01,WH1,100\n"
	_, err := ReadSales(SourceCSV, strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "sku_id"`)
}

func TestReadSalesExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"date", "warehouse_id", "sku_id", "units_sold", "revenue"},
		{"2026-05-01", "WH1", "SKU1", "120", "600.00"},
		{"2026-05-02", "WH2", "SKU9", "80", "240.00"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rep, err := ReadSales(SourceExcel, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.RowsKept)
	require.Len(t, rep.Records, 2)
	assert.Equal(t, "WH2", rep.Records[1].WarehouseID)
	assert.Equal(t, 80, rep.Records[1].UnitsSold)
}

func TestReadSalesUnknownKind(t *testing.T) {
	_, err := ReadSales(SourceKind("json"), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnknownSource)
}
