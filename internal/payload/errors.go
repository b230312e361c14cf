package payload

import "errors"

var (
	// ErrEmptyTableName is returned when a table is created without a name.
	ErrEmptyTableName = errors.New("payload: table name is empty")
	// ErrDuplicateColumn is returned when a table declares the same column twice.
	ErrDuplicateColumn = errors.New("payload: duplicate column")
	// ErrDuplicateTable is returned when a data set already holds a table with the same name.
	ErrDuplicateTable = errors.New("payload: duplicate table")
	// ErrRowWidth is returned when a row does not have one value per column.
	ErrRowWidth = errors.New("payload: row width does not match columns")
	// ErrNoTables is returned when a data set has no primary table.
	ErrNoTables = errors.New("payload: data set has no tables")
	// ErrNoRows is returned when a row is addressed past the end of a table.
	ErrNoRows = errors.New("payload: row out of range")
	// ErrUnknownColumn is returned when a column is addressed that the table does not declare.
	ErrUnknownColumn = errors.New("payload: unknown column")
	// ErrNotInteger is returned when a value cannot be read as an integer.
	ErrNotInteger = errors.New("payload: value is not an integer")
)
