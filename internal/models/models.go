package models

import "github.com/Velocidex/ordereddict"

// Row is one job listing. Keys follow the header order of the source.
type Row = *ordereddict.Dict

// NewRow builds a row from parallel column and value slices.
func NewRow(columns, values []string) Row {
	row := ordereddict.NewDict()
	for i, column := range columns {
		row.Set(column, values[i])
	}
	return row
}

// CloneRow returns a copy of row that shares no state with it.
func CloneRow(row Row) Row {
	clone := ordereddict.NewDict()
	for _, key := range row.Keys() {
		v, _ := row.Get(key)
		clone.Set(key, v)
	}
	return clone
}

type JobsPage struct {
	Data   []Row `json:"data"`
	Total  int   `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type Health struct {
	Loaded bool `json:"loaded"`
	Loads  int  `json:"loads"`
	Rows   int  `json:"rows"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
