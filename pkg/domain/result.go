package domain

// ExtractionResult is the tabular view of one port's data.
// Data is indexed by column first: flat and scalar ports have one column,
// nested ports one column per outer array entry.
type ExtractionResult struct {
	Data       [][]Value `json:"data"`
	PlugType   string    `json:"plugType"`
	DataLength int       `json:"dataLength"`
	MinValue   Value     `json:"minValue"`
	MaxValue   Value     `json:"maxValue"`
}

// Kind resolves the declared type tag.
func (r *ExtractionResult) Kind() PlugType {
	return ParsePlugType(r.PlugType)
}

// Columns returns the number of columns.
func (r *ExtractionResult) Columns() int {
	return len(r.Data)
}

// Rows returns the length of the longest column.
func (r *ExtractionResult) Rows() int {
	rows := 0
	for _, col := range r.Data {
		if len(col) > rows {
			rows = len(col)
		}
	}
	return rows
}

// Cell returns the value at row/column. ok is false for cells past a column's end.
func (r *ExtractionResult) Cell(row, column int) (Value, bool) {
	if column < 0 || column >= len(r.Data) || row < 0 || row >= len(r.Data[column]) {
		return Value{}, false
	}
	return r.Data[column][row], true
}

// Row returns one row across all columns; missing cells are reported as absent.
func (r *ExtractionResult) Row(row int) []Cell {
	cells := make([]Cell, len(r.Data))
	for c := range r.Data {
		v, ok := r.Cell(row, c)
		cells[c] = Cell{Row: row, Column: c, Value: v, Present: ok}
	}
	return cells
}

// Cell addresses one table cell.
type Cell struct {
	Row     int   `json:"row"`
	Column  int   `json:"column"`
	Value   Value `json:"value"`
	Present bool  `json:"present"`
}

// CellRef selects a cell by position.
type CellRef struct {
	Row    int `json:"row" mapstructure:"row"`
	Column int `json:"column" mapstructure:"column"`
}
