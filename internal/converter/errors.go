package converter

import "errors"

var (
	// ErrUnsupportedFormat is returned for file extensions or target formats
	// the tabular pipeline does not handle.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrUnknownColumn is returned when a projection names a missing column.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrDuplicateColumn is returned when a projection names a column twice.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrMalformed is returned when file contents cannot be read as a table.
	ErrMalformed = errors.New("malformed file")

	// ErrEmptyFile is returned when a file has no header row.
	ErrEmptyFile = errors.New("empty file")
)
