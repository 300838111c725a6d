package engine

import "errors"

var (
	// ErrSourceUnavailable is returned when the row source cannot be opened.
	ErrSourceUnavailable = errors.New("row source unavailable")
	// ErrParse is returned when the row source is structurally malformed.
	ErrParse = errors.New("row source malformed")
	// ErrMissingColumn is returned when a query names a column that is not
	// part of the loaded schema.
	ErrMissingColumn = errors.New("no such column")
	// ErrMissingField is returned when a sort field is absent from a row.
	ErrMissingField = errors.New("no such field")
)
