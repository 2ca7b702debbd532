package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelGeometry pins where the sheet keeps its data. Defaults mirror the
// course tracking template: task codes in row 5 starting at column C,
// student ids in column B starting at row 6.
type ExcelGeometry struct {
	HeaderRow       int
	CodeStartCol    int
	StudentCol      int
	StudentStartRow int
}

// DefaultGeometry returns the course tracking template layout.
func DefaultGeometry() ExcelGeometry {
	return ExcelGeometry{
		HeaderRow:       5,
		CodeStartCol:    3,
		StudentCol:      2,
		StudentStartRow: 6,
	}
}

// ExcelSheet implements Sheet over a local .xlsx workbook. The workbook is
// reopened per operation so edits made between runs are picked up; the batch
// update is a single open-stage-save cycle.
type ExcelSheet struct {
	path      string
	sheetName string
	geom      ExcelGeometry
}

func NewExcelSheet(path, sheetName string, geom ExcelGeometry) *ExcelSheet {
	return &ExcelSheet{
		path:      path,
		sheetName: sheetName,
		geom:      geom,
	}
}

func (s *ExcelSheet) TaskCodes() ([]TaskColumn, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	var codes []TaskColumn
	for col := s.geom.CodeStartCol; ; col++ {
		value, err := s.cellValue(f, col, s.geom.HeaderRow)
		if err != nil {
			return nil, err
		}
		if value == "" {
			break
		}
		codes = append(codes, TaskColumn{Col: col, Code: value})
	}
	return codes, nil
}

func (s *ExcelSheet) Students() ([]StudentRow, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	var students []StudentRow
	for row := s.geom.StudentStartRow; ; row++ {
		value, err := s.cellValue(f, s.geom.StudentCol, row)
		if err != nil {
			return nil, err
		}
		if value == "" {
			break
		}
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("student id %q at row %d is not numeric: %w", value, row, err)
		}
		students = append(students, StudentRow{Row: row, UserID: id})
	}
	return students, nil
}

func (s *ExcelSheet) BatchUpdate(updates []CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	for _, u := range updates {
		cell, err := excelize.CoordinatesToCellName(u.Col, u.Row)
		if err != nil {
			return fmt.Errorf("cell coordinates (%d, %d): %w", u.Col, u.Row, err)
		}
		if err := f.SetCellInt(s.sheetName, cell, int64(u.Value)); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook %s: %w", s.path, err)
	}
	return nil
}

func (s *ExcelSheet) cellValue(f *excelize.File, col, row int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("cell coordinates (%d, %d): %w", col, row, err)
	}
	value, err := f.GetCellValue(s.sheetName, cell)
	if err != nil {
		return "", fmt.Errorf("read cell %s: %w", cell, err)
	}
	return strings.TrimSpace(value), nil
}
