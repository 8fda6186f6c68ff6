package pipeline

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"hwharvest/internal"
	"hwharvest/internal/util"
)

// ImportHeader is the column layout of the commerce import sheet.
var ImportHeader = []string{
	"ID", "Type", "SKU", "Name", "Published", "Is featured?",
	"Visibility in catalog", "Short description", "Description",
	"In stock?", "Stock", "Backorders allowed?", "Sold individually?",
	"Weight (kg)", "Length (cm)", "Width (cm)", "Height (cm)",
	"Allow customer reviews?", "Purchase note", "Sale price",
	"Regular price", "Categories", "Tags", "Shipping class", "Images",
	"Parent", "Upsells", "Position",
}

func BuildImportRows(records []*internal.ProductRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		rows = append(rows, buildImportRow(rec, i+1))
	}
	return rows
}

func buildImportRow(rec *internal.ProductRecord, position int) []string {
	row := make([]string, len(ImportHeader))
	row[1] = "simple"
	row[2] = rec.Code
	row[3] = rec.Name
	row[4] = "1"
	row[5] = "0"
	row[6] = "visible"
	row[8] = description(rec)
	row[9] = "1"
	row[11] = "0"
	row[12] = "0"
	row[17] = "1"
	row[20] = util.PriceNumber(derefString(rec.Price))
	row[21] = derefString(rec.Category)
	row[22] = tags(rec)
	row[24] = derefString(rec.Image)
	row[27] = fmt.Sprintf("%d", position)
	return row
}

// description prefers the raw spec markup; without it the spec lines are
// rendered as an HTML bullet list.
func description(rec *internal.ProductRecord) string {
	if rec.RawMarkup != nil && strings.TrimSpace(*rec.RawMarkup) != "" {
		return strings.TrimSpace(*rec.RawMarkup)
	}
	if len(rec.SpecLines) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, line := range rec.SpecLines {
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

func tags(rec *internal.ProductRecord) string {
	parts := make([]string, 0, 2)
	if rec.Kind == internal.KindMonitor {
		parts = append(parts, "monitor")
	}
	if rec.Brand != nil && strings.TrimSpace(*rec.Brand) != "" {
		parts = append(parts, strings.TrimSpace(*rec.Brand))
	}
	return strings.Join(parts, ", ")
}

// ExportRecordsToXLSX writes the import sheet: the header row followed by
// one row per record in order.
func ExportRecordsToXLSX(records []*internal.ProductRecord, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range ImportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range BuildImportRows(records) {
		r := i + 2
		set := func(col int, value string) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		for col, value := range row {
			if value == "" {
				continue
			}
			set(col+1, value)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

type recordJSON struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Brand     *string  `json:"brand"`
	Category  *string  `json:"category"`
	Price     *string  `json:"price"`
	Image     *string  `json:"image"`
	SpecLines []string `json:"specLines"`
	RawMarkup *string  `json:"rawMarkup"`
}

// ExportRecordsToJSON writes the records as an indented JSON array.
// Absent fields serialize as null, an empty spec list as [].
func ExportRecordsToJSON(records []*internal.ProductRecord, outputPath string) error {
	out := make([]recordJSON, 0, len(records))
	for _, rec := range records {
		lines := rec.SpecLines
		if lines == nil {
			lines = []string{}
		}
		out = append(out, recordJSON{
			Code:      rec.Code,
			Name:      rec.Name,
			Brand:     rec.Brand,
			Category:  rec.Category,
			Price:     rec.Price,
			Image:     rec.Image,
			SpecLines: lines,
			RawMarkup: rec.RawMarkup,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
