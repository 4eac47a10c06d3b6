package xlsx

import (
	"fmt"
)

// FormatError reports a package or part that does not follow the layout
// this reader understands: bad signature, missing workbook part, malformed
// XML or an unrecognised cell literal.
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return e.Message
}

// NewFormatError creates a new FormatError with the given message.
func NewFormatError(format string, args ...interface{}) *FormatError {
	return &FormatError{Message: fmt.Sprintf(format, args...)}
}

// LookupError reports a reference to something that does not exist: an
// unknown sheet number or a shared-string index outside the table.
type LookupError struct {
	Message string
}

func (e *LookupError) Error() string {
	return e.Message
}

// NewLookupError creates a new LookupError with the given message.
func NewLookupError(format string, args ...interface{}) *LookupError {
	return &LookupError{Message: fmt.Sprintf(format, args...)}
}

// CellKind selects the decode branch of a cell.
type CellKind int

// Cell kinds. The numbering follows xlrd's XL_CELL_* values.
const (
	KindEmpty   CellKind = 0
	KindText    CellKind = 1
	KindNumber  CellKind = 2
	KindDate    CellKind = 3
	KindBoolean CellKind = 4
	KindError   CellKind = 5
)

var cellKindNames = [...]string{
	KindEmpty:   "empty",
	KindText:    "text",
	KindNumber:  "number",
	KindDate:    "date",
	KindBoolean: "boolean",
	KindError:   "error",
}

func (k CellKind) String() string {
	if k >= 0 && int(k) < len(cellKindNames) {
		return cellKindNames[k]
	}
	return fmt.Sprintf("CellKind(%d)", int(k))
}

// ErrorCode is the stable integer of a spreadsheet error literal.
type ErrorCode int

// Error codes as stored in BIFF records.
const (
	ErrNull  ErrorCode = 0x00 // Intersection of two cell ranges is empty
	ErrDiv0  ErrorCode = 0x07 // Division by zero
	ErrValue ErrorCode = 0x0F // Wrong type of operand
	ErrRef   ErrorCode = 0x17 // Illegal or deleted cell reference
	ErrName  ErrorCode = 0x1D // Wrong function or range name
	ErrNum   ErrorCode = 0x24 // Value range overflow
	ErrNA    ErrorCode = 0x2A // Argument or function not available
)

var errorCodeFromText = map[string]ErrorCode{
	"#DIV/0!": ErrDiv0,
	"#N/A":    ErrNA,
	"#NAME?":  ErrName,
	"#NULL!":  ErrNull,
	"#NUM!":   ErrNum,
	"#REF!":   ErrRef,
	"#VALUE!": ErrValue,
}

var errorTextFromCode = map[ErrorCode]string{
	ErrNull:  "#NULL!",
	ErrDiv0:  "#DIV/0!",
	ErrValue: "#VALUE!",
	ErrRef:   "#REF!",
	ErrName:  "#NAME?",
	ErrNum:   "#NUM!",
	ErrNA:    "#N/A",
}

func (c ErrorCode) String() string {
	if text, ok := errorTextFromCode[c]; ok {
		return text
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Cell type codes found in the t attribute of a worksheet c element.
const (
	cellTypeNumber       = "n"
	cellTypeShared       = "s"
	cellTypeString       = "str"
	cellTypeInlineString = "inlineStr"
	cellTypeBoolean      = "b"
	cellTypeError        = "e"
)

// Package part names, lower-cased as they appear in the component map.
const (
	partWorkbook      = "xl/workbook.xml"
	partStyles        = "xl/styles.xml"
	partSharedStrings = "xl/sharedstrings.xml"
)
