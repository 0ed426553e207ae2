package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Attendance Report"

var headers = []string{
	"Date", "Course Code", "Course Title", "Student Name", "Matric Number", "Status", "Time Marked",
}

// BuildWorkbook renders report rows as a spreadsheet: a styled header row,
// one row per record, columns widened to fit their longest value.
func BuildWorkbook(rows []Row) (*excelize.File, error) {
	f := excelize.NewFile()
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	widths := make([]int, len(headers))
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, err
		}
		widths[col] = len(h)
	}

	for i, row := range rows {
		values := []string{
			row.SessionDate.Format("2006-01-02"),
			row.CourseCode,
			row.CourseTitle,
			row.StudentName,
			row.MatricNo,
			strings.ToUpper(row.Status),
			row.MarkedAt.Format("15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
			if len(v) > widths[col] {
				widths[col] = len(v)
			}
		}
	}

	for col, w := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheetName, name, name, float64(w+2)); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ContentType is the xlsx MIME type for the export response.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ContentDisposition builds the attachment header for the given filename.
func ContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%s", filename)
}
