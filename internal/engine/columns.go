package engine

// ColumnStore holds a Table in struct-of-arrays form with every column
// dictionary encoded.
type ColumnStore struct {
	Names []string

	// IDs[c][r] is the dictionary ID of row r in column c.
	IDs [][]int32

	// Dicts[c][id] is the string for an ID of column c, in first-seen order.
	Dicts [][]string

	index map[string]int
}

func NewColumnStore(t *Table) *ColumnStore {
	cs := &ColumnStore{
		Names: t.Columns,
		IDs:   make([][]int32, len(t.Columns)),
		Dicts: make([][]string, len(t.Columns)),
		index: make(map[string]int, len(t.Columns)),
	}
	for c, name := range t.Columns {
		cs.index[name] = c
		ids := make([]int32, len(t.Rows))
		lookup := make(map[string]int32)
		for r, row := range t.Rows {
			v, _ := row.GetString(name)
			id, ok := lookup[v]
			if !ok {
				id = int32(len(cs.Dicts[c]))
				cs.Dicts[c] = append(cs.Dicts[c], v)
				lookup[v] = id
			}
			ids[r] = id
		}
		cs.IDs[c] = ids
	}
	return cs
}

// Column returns the position of name, or -1.
func (cs *ColumnStore) Column(name string) int {
	if c, ok := cs.index[name]; ok {
		return c
	}
	return -1
}

// Len returns the number of rows.
func (cs *ColumnStore) Len() int {
	if len(cs.IDs) == 0 {
		return 0
	}
	return len(cs.IDs[0])
}

// Value returns the string at row r of column c.
func (cs *ColumnStore) Value(c, r int) string {
	return cs.Dicts[c][cs.IDs[c][r]]
}
