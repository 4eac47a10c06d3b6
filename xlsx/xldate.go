package xlsx

import (
	"fmt"
	"math"
	"time"
)

var (
	epoch1900       = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	epoch1900Minus1 = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
)

// Far beyond year 9999 in either direction; keeps the day arithmetic below
// away from integer overflow.
const xldaysOverflow = 1e8

// XLDateError is the base type for all datetime-related errors.
type XLDateError struct {
	Message string
}

func (e *XLDateError) Error() string {
	return e.Message
}

// XLDateOverflow indicates a serial whose date falls outside years 1 to 9999.
type XLDateOverflow struct {
	XLDateError
}

// XldateAsDatetime converts an Excel serial day count (presumed to represent a
// date, a datetime or a time) into a time.Time in UTC.
//
// Serials below 60 count from 1899-12-31 and the rest from 1899-12-30, which
// reproduces Excel's phantom 1900-02-29. The workbook's 1904 flag is not
// consulted. The fractional part is rounded to the nearest millisecond.
func XldateAsDatetime(xldate float64) (time.Time, error) {
	if math.IsNaN(xldate) || math.IsInf(xldate, 0) || math.Abs(xldate) > xldaysOverflow {
		return time.Time{}, &XLDateOverflow{XLDateError{Message: fmt.Sprintf("xldate out of range: %v", xldate)}}
	}

	epoch := epoch1900
	if xldate >= 60 {
		// Workaround Excel 1900 leap year bug by adjusting the epoch.
		epoch = epoch1900Minus1
	}

	days := int(xldate)
	fraction := xldate - float64(days)

	// Excel's resolution is the millisecond; ties go to the even value.
	milliseconds := int64(math.RoundToEven(fraction * 86400000.0))

	t := epoch.AddDate(0, 0, days).Add(time.Duration(milliseconds) * time.Millisecond)
	if t.Year() < 1 || t.Year() > 9999 {
		return time.Time{}, &XLDateOverflow{XLDateError{Message: fmt.Sprintf("xldate out of range: %v", xldate)}}
	}
	return t, nil
}
