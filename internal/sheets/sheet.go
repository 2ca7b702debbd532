// Package sheets is the spreadsheet sink of the sync pipeline. The
// orchestrator only sees the Sheet interface: where task codes and student
// ids live is the implementation's concern, and all writes go through one
// batch update per run.
package sheets

// TaskColumn is one task-code header cell: the code and the 1-based column
// it occupies, which is where completion flags for that task are written.
type TaskColumn struct {
	Col  int
	Code string
}

// StudentRow is one student row: the platform user id and the 1-based row
// it occupies.
type StudentRow struct {
	Row    int
	UserID int64
}

// CellUpdate is a staged single-cell write, 1-based coordinates.
type CellUpdate struct {
	Row   int
	Col   int
	Value int
}

// Sheet is the row/column-addressed contract the orchestrator works against.
type Sheet interface {
	// TaskCodes reads the header row left to right until the first empty
	// cell and returns each non-empty code with its column.
	TaskCodes() ([]TaskColumn, error)

	// Students reads the student id column top to bottom until the first
	// empty cell.
	Students() ([]StudentRow, error)

	// BatchUpdate applies all staged updates in one write.
	BatchUpdate(updates []CellUpdate) error
}
