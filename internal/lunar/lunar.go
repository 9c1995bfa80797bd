// Package lunar converts Chinese lunisolar calendar dates to Gregorian dates.
//
// Dates use the todo.txt form YYYY-MM-DD on both sides. A lunar month number
// always names the regular month; leap months cannot be addressed.
package lunar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Date is a lunar date as written in a task field.
// Only the shape is checked at parse time; the calendar decides validity.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ErrBadFormat is returned by ParseDate for anything that is not three
// hyphen separated integers with a non-zero month and day.
var ErrBadFormat = errors.New("expected YYYY-MM-DD")

// ParseDate parses s strictly as YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Date{}, ErrBadFormat
	}
	year, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil {
		return Date{}, ErrBadFormat
	}
	month, err := parseCount(parts[1])
	if err != nil {
		return Date{}, ErrBadFormat
	}
	day, err := parseCount(parts[2])
	if err != nil {
		return Date{}, ErrBadFormat
	}
	return Date{Year: int(year), Month: int(month), Day: int(day)}, nil
}

// parseCount parses a non-zero unsigned number. One leading '+' is allowed,
// matching the sign handling of the year.
func parseCount(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 32)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrBadFormat
	}
	return n, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ConversionError reports a lunar date the calendar cannot map.
// The message is shown to users verbatim.
type ConversionError struct {
	Date   Date
	Reason string
}

func (e *ConversionError) Error() string {
	return e.Reason
}

// Converter maps lunar dates to solar dates.
type Converter interface {
	ToSolar(d Date) (Date, error)
}

// TableConverter converts with the built-in 1900-2100 table.
type TableConverter struct{}

// NewConverter returns the table based converter.
func NewConverter() *TableConverter {
	return &TableConverter{}
}

// ToSolar returns the Gregorian date for the regular lunar month d.Month.
func (TableConverter) ToSolar(d Date) (Date, error) {
	if d.Year < MinYear || d.Year > MaxYear {
		return Date{}, &ConversionError{Date: d, Reason: fmt.Sprintf("year %d out of range [%d, %d]", d.Year, MinYear, MaxYear)}
	}
	if d.Month < 1 || d.Month > 12 {
		return Date{}, &ConversionError{Date: d, Reason: fmt.Sprintf("month %d out of range [1, 12]", d.Month)}
	}
	if n := MonthDays(d.Year, d.Month); d.Day < 1 || d.Day > n {
		return Date{}, &ConversionError{Date: d, Reason: fmt.Sprintf("day %d out of range [1, %d] for month %d of year %d", d.Day, n, d.Month, d.Year)}
	}

	offset := newYearOffsets[d.Year-MinYear]
	leap := LeapMonth(d.Year)
	for m := 1; m < d.Month; m++ {
		offset += MonthDays(d.Year, m)
		if m == leap {
			offset += leapMonthDays(d.Year)
		}
	}
	offset += d.Day - 1

	t := epoch.AddDate(0, 0, offset)
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// ToSolarString parses a lunar YYYY-MM-DD string and returns the solar string.
func ToSolarString(c Converter, s string) (string, error) {
	d, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	solar, err := c.ToSolar(d)
	if err != nil {
		return "", err
	}
	return solar.String(), nil
}

var _ Converter = TableConverter{}
