package sheets

import "fmt"

// NetworkError covers transport-level failures: dial errors, cancelled
// requests and non-success HTTP statuses.
type NetworkError struct {
	Spreadsheet string
	Sheet       string
	Err         error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("sheet fetch %s/%s: %v", e.Spreadsheet, e.Sheet, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError means the response arrived but no usable table could be
// extracted from it.
type ParseError struct {
	Spreadsheet string
	Sheet       string
	Reason      string
	Err         error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sheet parse %s/%s: %s", e.Spreadsheet, e.Sheet, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EmptyError means a well-formed payload with zero rows.
type EmptyError struct {
	Spreadsheet string
	Sheet       string
}

func (e *EmptyError) Error() string {
	return fmt.Sprintf("sheet %s/%s has no rows", e.Spreadsheet, e.Sheet)
}
