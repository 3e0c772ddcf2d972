package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/prismtrade/prismtrade/internal/apperrors"
)

// ExportXLSX writes the symbol's snapshot history to an Excel workbook with
// one row per analysis run.
func (r *Recorder) ExportXLSX(symbol, path string) error {
	snapshots, err := r.Load(symbol)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return apperrors.New(apperrors.CategoryStorage, "history", "export",
			fmt.Sprintf("no snapshots recorded for %s", symbol))
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.Wrap(err, apperrors.CategoryStorage, "history", "export")
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const sheet = "Predictions"
	fx.SetSheetName(fx.GetSheetName(0), sheet)

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryStorage, "history", "export")
	}

	fx.SetColWidth(sheet, "A", "A", 20)
	fx.SetColWidth(sheet, "B", "C", 14)
	fx.SetColWidth(sheet, "D", "D", 28)
	fx.SetColWidth(sheet, "E", "E", 12)
	fx.SetColWidth(sheet, "F", "Z", 14)

	horizons := horizonKeys(snapshots)
	headers := []string{"Timestamp", "Price", "Volatility", "Recommendation", "Confidence"}
	for _, h := range horizons {
		headers = append(headers, h+"m Price", h+"m Change %")
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, header)
		fx.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, snap := range snapshots {
		values := []interface{}{
			snap.Timestamp.Format("2006-01-02 15:04:05"),
			snap.CurrentPrice,
			snap.Volatility,
			snap.Recommendation,
			snap.ConfidenceLevel,
		}
		for _, h := range horizons {
			if point, ok := snap.Predictions[h]; ok {
				values = append(values, point.Price, point.Change)
			} else {
				values = append(values, "", "")
			}
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			fx.SetCellValue(sheet, cell, value)
		}
	}

	if err := fx.SaveAs(path); err != nil {
		return apperrors.Wrap(err, apperrors.CategoryStorage, "history", "export")
	}
	return nil
}

// horizonKeys collects the distinct forecast horizons across snapshots in
// ascending numeric order. Keys are minute strings ("15", "30", "60").
func horizonKeys(snapshots []Snapshot) []string {
	seen := map[string]bool{}
	var keys []string
	for _, snap := range snapshots {
		for key := range snap.Predictions {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
