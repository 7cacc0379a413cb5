package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"MarketMovers/internal/model"
)

// MoversSheet is the summary sheet name.
const MoversSheet = "Top Movers"

// maxSheetName is Excel's sheet name limit in characters.
const maxSheetName = 31

var seriesHeader = []any{"Date", "Price", "Market Cap", "Market Cap Change"}

// Workbook builds a workbook with the movers summary first and one sheet per symbol.
// The caller must Close the file.
func Workbook(rep *model.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", MoversSheet); err != nil {
		f.Close()
		return nil, err
	}
	capStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeMovers(f, rep, capStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("movers sheet: %w", err)
	}

	used := map[string]bool{strings.ToLower(MoversSheet): true}
	for _, s := range rep.Series {
		name := sheetName(s.Symbol, used)
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		if err := writeSeries(f, name, s, capStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	return f, nil
}

// Write streams the report workbook to w.
func Write(w io.Writer, rep *model.Report) error {
	f, err := Workbook(rep)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// SaveFile writes the workbook under dir as movers-<run id>.xlsx and returns its path.
func SaveFile(dir string, rep *model.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("movers-%s.xlsx", rep.RunID))
	f, err := Workbook(rep)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

func writeMovers(f *excelize.File, rep *model.Report, style int) error {
	rows := [][]any{
		{"Run", rep.RunID.String()},
		{"Range", fmt.Sprintf("%s to %s", rep.Input.Range.Start.Format(model.DateLayout), rep.Input.Range.End.Format(model.DateLayout))},
		{},
		{"Top Gainers", "", "", "", "Top Losers"},
		{"Rank", "Symbol", "Total Market Cap Change", "", "Rank", "Symbol", "Total Market Cap Change"},
	}
	for i := 0; i < len(rep.Gainers) || i < len(rep.Losers); i++ {
		row := make([]any, 7)
		if i < len(rep.Gainers) {
			row[0], row[1], row[2] = i+1, rep.Gainers[i].Symbol, rep.Gainers[i].TotalMarketCapChange.InexactFloat64()
		}
		if i < len(rep.Losers) {
			row[4], row[5], row[6] = i+1, rep.Losers[i].Symbol, rep.Losers[i].TotalMarketCapChange.InexactFloat64()
		}
		rows = append(rows, row)
	}
	if err := setRows(f, MoversSheet, rows); err != nil {
		return err
	}
	if err := f.SetColStyle(MoversSheet, "C", style); err != nil {
		return err
	}
	return f.SetColStyle(MoversSheet, "G", style)
}

func writeSeries(f *excelize.File, sheet string, s model.EnrichedSeries, style int) error {
	rows := make([][]any, 0, len(s.Rows)+1)
	rows = append(rows, seriesHeader)
	for _, r := range s.Rows {
		rows = append(rows, []any{
			r.Date.Format(model.DateLayout),
			nullable(r.Price),
			nullable(r.MarketCap),
			nullable(r.MarketCapChange),
		})
	}
	if err := setRows(f, sheet, rows); err != nil {
		return err
	}
	return f.SetColStyle(sheet, "C:D", style)
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// nullable leaves the cell blank for absent values.
func nullable(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}

// sheetName derives a unique, Excel-safe sheet name from a symbol.
func sheetName(symbol string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, symbol)
	if base == "" {
		base = "Sheet"
	}
	name := truncate(base, maxSheetName)
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
