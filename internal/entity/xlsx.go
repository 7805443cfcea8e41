package entity

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ImportFailure is one spreadsheet row that could not be added.
type ImportFailure struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResult struct {
	Imported int             `json:"imported"`
	Failed   []ImportFailure `json:"failed"`
}

// Workbook renders rows as a single-sheet workbook with a header row of
// column labels.
func Workbook(meta Meta, rows []Row) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := meta.Plural
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	header, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	for i, col := range meta.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col.Label)
		f.SetCellStyle(sheet, cell, cell, header)
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, name, name, 20)
	}
	for r, row := range rows {
		for i, v := range row.Cells {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	return f, nil
}

// GET /api/<slug>/export.xlsx?q=
func (r *Resource[T]) ExportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := r.List(c.UserContext())
		if err != nil {
			r.logger.Error("export failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("Failed to fetch %s: %v", r.def.Table, err))
		}
		rows = r.def.Search(rows, c.Query("q"))

		f, err := Workbook(r.def.Meta, r.def.Rows(rows))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to build spreadsheet")
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to write spreadsheet")
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=\"%s.xlsx\"", r.def.Slug))
		return c.Send(buf.Bytes())
	}
}

// POST /api/<slug>/import.xlsx (multipart, field "file")
//
// The first row names the columns by field label, camelCase key or column
// name. Each following row is validated and added on its own; failures are
// reported per row and do not stop the import.
func (r *Resource[T]) ImportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "File upload failed: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files can be imported")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to open upload: "+err.Error())
		}
		defer file.Close()

		book, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Failed to read spreadsheet: "+err.Error())
		}
		defer book.Close()

		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Spreadsheet has no sheets")
		}
		sheetRows, err := book.GetRows(sheets[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Failed to read sheet: "+err.Error())
		}
		if len(sheetRows) < 2 {
			return fiber.NewError(fiber.StatusBadRequest, "Spreadsheet has no data rows")
		}

		keys := r.def.headerKeys(sheetRows[0])
		result := ImportResult{Failed: []ImportFailure{}}
		for i := 1; i < len(sheetRows); i++ {
			cells := sheetRows[i]
			if blank(cells) {
				continue
			}
			draft := r.def.NewDraft()
			for col, key := range keys {
				if key != "" && col < len(cells) {
					draft[key] = strings.TrimSpace(cells[col])
				}
			}
			if err := r.def.Validate(draft); err != nil {
				result.Failed = append(result.Failed, ImportFailure{Row: i + 1, Error: err.Error()})
				continue
			}
			row, err := r.def.Decode(draft)
			if err == nil {
				_, err = r.Insert(c.UserContext(), row)
			}
			if err != nil {
				result.Failed = append(result.Failed, ImportFailure{Row: i + 1, Error: err.Error()})
				continue
			}
			result.Imported++
		}

		r.logger.Info("spreadsheet imported",
			zap.Int("imported", result.Imported),
			zap.Int("failed", len(result.Failed)),
		)
		return c.JSON(result)
	}
}

// headerKeys maps each header cell to a field key, or "" when it names no field.
func (m Meta) headerKeys(header []string) []string {
	keys := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		for _, f := range m.Fields {
			if strings.EqualFold(h, f.Label) || h == f.Key || h == f.Column() {
				keys[i] = f.Key
				break
			}
		}
		if keys[i] != "" {
			continue
		}
		// exported sheets are headed by column labels
		for _, c := range m.Columns {
			if f, ok := m.Field(c.Key); ok && strings.EqualFold(h, c.Label) {
				keys[i] = f.Key
				break
			}
		}
	}
	return keys
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
