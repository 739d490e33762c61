package errors

import (
	"bufio"
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryPipeline Category = "pipeline"
	CategoryCLI      Category = "cli"
	CategoryProtocol Category = "protocol"
)

// Location represents a position in a file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// LivecollError is a structured error with a code, location and suggestion.
type LivecollError struct {
	// Code is a unique error identifier (e.g., "E104").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position the error refers to.
	Location *Location

	// Context contains the file lines around Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *LivecollError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *LivecollError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location and the lines around it.
func (e *LivecollError) WithLocation(file string, line, column int) *LivecollError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithJSONLocation locates a JSON decoding error inside data, which was
// read from file. Errors without an offset leave the error unchanged.
func (e *LivecollError) WithJSONLocation(file string, data []byte, err error) *LivecollError {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case stderrors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return e
	}
	line, col := offsetPosition(data, offset)
	return e.WithLocation(file, line, col)
}

// WithSuggestion adds a fix suggestion to the error.
func (e *LivecollError) WithSuggestion(s string) *LivecollError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *LivecollError) WithDetail(d string) *LivecollError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted explanation to the error.
func (e *LivecollError) WithDetailf(format string, args ...any) *LivecollError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *LivecollError) Wrap(err error) *LivecollError {
	e.Wrapped = err
	return e
}

// offsetPosition converts a byte offset into a 1-based line and column.
func offsetPosition(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	prefix := data[:offset]
	line := bytes.Count(prefix, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(prefix, '\n')
	return line, col
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}
	return lines
}

// New creates a LivecollError from a registered error code.
func New(code string) *LivecollError {
	template, ok := registry[code]
	if !ok {
		return &LivecollError{Code: code, Message: "Unknown error"}
	}
	return &LivecollError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a LivecollError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *LivecollError {
	return &LivecollError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in a LivecollError with code, unless err already
// holds one.
func FromError(err error, code string) *LivecollError {
	if err == nil {
		return nil
	}
	var le *LivecollError
	if stderrors.As(err, &le) {
		return le
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first LivecollError in err's chain, or "".
func Code(err error) string {
	var le *LivecollError
	if stderrors.As(err, &le) {
		return le.Code
	}
	return ""
}
