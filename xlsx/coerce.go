package xlsx

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const xmlWhitespace = "\t\n \r"

var escapedCharRe = regexp.MustCompile(`_x[0-9A-Fa-f]{4}_`)

// unescapeText replaces the _xHHHH_ escapes Excel writes for characters XML
// cannot carry (control characters mostly) with the code point itself.
func unescapeText(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	return escapedCharRe.ReplaceAllStringFunc(s, func(m string) string {
		cp, err := strconv.ParseUint(m[2:6], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(cp))
	})
}

// cookText applies the xml:space rule and unescapes the result.
func cookText(text, space string) string {
	if space != "preserve" {
		text = strings.Trim(text, xmlWhitespace)
	}
	return unescapeText(text)
}

// XsdToBoolean parses an xsd:boolean literal. Empty text is false.
func XsdToBoolean(s string) (bool, error) {
	switch s {
	case "", "0", "false", "off":
		return false, nil
	case "1", "true", "on":
		return true, nil
	}
	return false, NewFormatError("unexpected xsd:boolean value: %q", s)
}

// ErrorCodeFromText maps an error literal such as "#DIV/0!" to its code.
// Empty text stands for "#N/A".
func ErrorCodeFromText(s string) (ErrorCode, error) {
	if s == "" {
		s = "#N/A"
	}
	code, ok := errorCodeFromText[s]
	if !ok {
		return 0, NewFormatError("unknown error literal: %q", s)
	}
	return code, nil
}

// NormalizeNumber returns v as an int64 when it holds an exact integral
// value in int64 range, otherwise v unchanged.
func NormalizeNumber(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		return v
	}
	return int64(v)
}
