package entity

// Theater has a fixed seating grid: RowCount rows labelled A, B, C, ... with
// SeatsPerRow seats each.
type Theater struct {
	Base
	Name        string `db:"name"`
	RowCount    int    `db:"row_count"`
	SeatsPerRow int    `db:"seats_per_row"`
}

// HasSeat reports whether the (row, number) pair exists in this theater's grid.
func (t *Theater) HasSeat(row string, number int) bool {
	if len(row) != 1 || row[0] < 'A' {
		return false
	}
	rowIndex := int(row[0] - 'A')
	return rowIndex < t.RowCount && number >= 1 && number <= t.SeatsPerRow
}
