package xlsx

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatesAndTimes1900Epoch(t *testing.T) {
	// Excel date strings and the serial numbers Excel stores for them.
	excelDates := []struct {
		expected string
		xldate   float64
	}{
		// Excel's 0.0 date in the 1900 epoch is 1 day before 1900.
		{"1899-12-31T00:00:00.000", 0},
		// Date/time before the false Excel 1900 leapday.
		{"1900-02-28T02:11:11.986", 59.09111094906},
		// Date/time after the false Excel 1900 leapday.
		{"1900-03-01T05:46:44.068", 61.24078782403},
		{"1982-08-25T00:15:20.213", 30188.010650613425},
		{"2065-04-19T00:16:48.290", 60376.011670023145},
		{"3222-06-11T03:08:08.251", 483014.13065105322},
		{"4379-08-03T06:14:48.580", 905652.26028449077},
		{"5949-12-30T12:59:54.263", 1479232.5416002662},
		// End of Excel's date range.
		{"9999-12-31T23:59:59.000", 2958465.999988426},
	}

	for _, tt := range excelDates {
		exp, err := time.Parse("2006-01-02T15:04:05.000", tt.expected)
		require.NoError(t, err)
		got, err := XldateAsDatetime(tt.xldate)
		require.NoError(t, err, "xldate %v", tt.xldate)
		assert.True(t, got.Equal(exp), "XldateAsDatetime(%v) = %v, want %v", tt.xldate, got, exp)
	}
}

func TestDatesOnly1900Epoch(t *testing.T) {
	excelDates := []struct {
		expected string
		xldate   float64
	}{
		{"1899-12-31", 0},
		{"1900-01-01", 1},
		{"1900-02-28", 59},
		{"1900-03-01", 61},
		{"1902-09-27", 1001},
		{"1999-12-31", 36525},
		{"2000-01-01", 36526},
		{"2023-03-15", 45000},
		{"4000-12-31", 767376},
		{"4321-01-01", 884254},
		{"9999-01-01", 2958101},
		{"9999-12-31", 2958465},
	}

	for _, tt := range excelDates {
		got, err := XldateAsDatetime(tt.xldate)
		require.NoError(t, err, "xldate %v", tt.xldate)
		assert.Equal(t, tt.expected, got.Format("2006-01-02"), "xldate %v", tt.xldate)
	}
}

func TestTimesOnly(t *testing.T) {
	// The 1899-12-31 date is Excel's day 0.
	excelDates := []struct {
		expected string
		xldate   float64
	}{
		{"1899-12-31T00:00:00.000", 0},
		{"1899-12-31T00:15:20.213", 1.0650613425925924e-2},
		{"1899-12-31T02:24:37.095", 0.10042934027777778},
		{"1899-12-31T07:31:20.407", 0.31343063657407405},
		{"1899-12-31T12:00:00.000", 0.5},
		{"1899-12-31T14:37:57.451", 0.60969271990740748},
		{"1899-12-31T21:39:05.944", 0.90215212962962965},
		{"1899-12-31T23:59:59.999", 0.99999998842592586},
	}

	for _, tt := range excelDates {
		exp, err := time.Parse("2006-01-02T15:04:05.000", tt.expected)
		require.NoError(t, err)
		got, err := XldateAsDatetime(tt.xldate)
		require.NoError(t, err)
		assert.WithinDuration(t, exp, got, time.Millisecond, "xldate %v", tt.xldate)
	}
}

func TestLeapYearBugEpochBoundary(t *testing.T) {
	// 59 counts from 1899-12-31, 60 from 1899-12-30: both land on 1900-02-28
	// because Excel's 1900-02-29 does not exist.
	d59, err := XldateAsDatetime(59.0)
	require.NoError(t, err)
	assert.Equal(t, epoch1900.AddDate(0, 0, 59), d59)
	assert.Equal(t, time.Date(1900, 2, 28, 0, 0, 0, 0, time.UTC), d59)

	d60, err := XldateAsDatetime(60.0)
	require.NoError(t, err)
	assert.Equal(t, epoch1900Minus1.AddDate(0, 0, 60), d60)
	assert.Equal(t, time.Date(1900, 2, 28, 0, 0, 0, 0, time.UTC), d60)

	d61, err := XldateAsDatetime(61.0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC), d61)
}

func TestXldateOverflow(t *testing.T) {
	for _, xldate := range []float64{2958466, 1e7, -700000, 1e300} {
		_, err := XldateAsDatetime(xldate)
		var overflow *XLDateOverflow
		assert.True(t, errors.As(err, &overflow), "xldate %v: got %v", xldate, err)
	}
}
