package validation

import (
	"errors"
	"fmt"
	"math"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const decimalDigits = 4

// IsDecimal reports whether s is a Cedar decimal literal: an integer part,
// a dot and one to four fraction digits, fitting a 64-bit value scaled by 10^4.
func IsDecimal(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return false
	}
	whole, fraction := parts[0], parts[1]
	if whole == "" || (len(whole) > 1 && whole[0] == '0') {
		return false
	}
	for _, r := range whole {
		if (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	if len(fraction) == 0 || len(fraction) > decimalDigits {
		return false
	}
	for _, r := range fraction {
		if r < '0' || r > '9' {
			return false
		}
	}
	wholeValue, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return false
	}
	fractionValue, err := strconv.ParseInt(fraction, 10, 64)
	if err != nil {
		return false
	}
	const scale = 10000
	if wholeValue > math.MaxInt64/scale || wholeValue < math.MinInt64/scale {
		return false
	}
	scaled := wholeValue * scale
	for i := len(fraction); i < decimalDigits; i++ {
		fractionValue *= 10
	}
	if strings.HasPrefix(whole, "-") {
		fractionValue = -fractionValue
	}
	if fractionValue > 0 && scaled > math.MaxInt64-fractionValue {
		return false
	}
	if fractionValue < 0 && scaled < math.MinInt64-fractionValue {
		return false
	}
	return true
}

// Datetime is a parsed datetime literal.
type Datetime struct {
	Time time.Time
	// DateOnly is set for YYYY-MM-DD literals.
	DateOnly bool
}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
}

// ParseDatetime accepts a date, an RFC 3339 timestamp, a timestamp with a
// +hhmm offset or a naive timestamp taken as UTC. Fractional seconds are
// allowed in every timestamp form.
func ParseDatetime(s string) (*Datetime, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return &Datetime{Time: t, DateOnly: true}, nil
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &Datetime{Time: t}, nil
		}
	}
	return nil, fmt.Errorf("invalid datetime %q", s)
}

const (
	daysPerYear  = 365
	daysPerMonth = 30
	daysPerWeek  = 7
)

// Duration is a parsed ISO 8601 duration.
type Duration struct {
	Years, Months, Weeks, Days      int64
	Hours, Minutes, Seconds, Millis int64
}

// TotalDays folds the calendar units into days: a year is 365 days, a month
// 30 and a week 7.
func (d *Duration) TotalDays() (int64, error) {
	total := d.Days
	for _, part := range [][2]int64{{d.Years, daysPerYear}, {d.Months, daysPerMonth}, {d.Weeks, daysPerWeek}} {
		days, ok := mulInt64(part[0], part[1])
		if !ok {
			return 0, errDurationOverflow
		}
		if total, ok = addInt64(total, days); !ok {
			return 0, errDurationOverflow
		}
	}
	return total, nil
}

// TotalMillis is the whole duration in milliseconds, the unit Cedar stores.
func (d *Duration) TotalMillis() (int64, error) {
	days, err := d.TotalDays()
	if err != nil {
		return 0, err
	}
	total := d.Millis
	for _, part := range [][2]int64{{days, 86400000}, {d.Hours, 3600000}, {d.Minutes, 60000}, {d.Seconds, 1000}} {
		millis, ok := mulInt64(part[0], part[1])
		if !ok {
			return 0, errDurationOverflow
		}
		if total, ok = addInt64(total, millis); !ok {
			return 0, errDurationOverflow
		}
	}
	return total, nil
}

var errDurationOverflow = errors.New("duration overflows 64-bit milliseconds")

// mulInt64 and addInt64 expect non negative operands.
func mulInt64(a, b int64) (int64, bool) {
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}

func addInt64(a, b int64) (int64, bool) {
	if a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

var (
	durationExpr = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:[.,](\d+))?S)?)?$`)
	weeksExpr    = regexp.MustCompile(`^P(\d+)W$`)
)

// ParseDuration accepts PnYnMnDTnHnMnS (fractional seconds allowed) and PnW.
func ParseDuration(s string) (*Duration, error) {
	if match := weeksExpr.FindStringSubmatch(s); match != nil {
		weeks, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		ret := &Duration{Weeks: weeks}
		if _, err := ret.TotalMillis(); err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		return ret, nil
	}
	match := durationExpr.FindStringSubmatch(s)
	if match == nil || s == "P" || strings.HasSuffix(s, "T") {
		return nil, fmt.Errorf("invalid duration %q", s)
	}
	var fields [6]int64
	for i := range fields {
		if match[i+1] == "" {
			continue
		}
		value, err := strconv.ParseInt(match[i+1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		fields[i] = value
	}
	ret := &Duration{Years: fields[0], Months: fields[1], Days: fields[2], Hours: fields[3], Minutes: fields[4], Seconds: fields[5]}
	if fraction := match[7]; fraction != "" {
		fraction = (fraction + "000")[:3]
		ret.Millis, _ = strconv.ParseInt(fraction, 10, 64)
	}
	if _, err := ret.TotalMillis(); err != nil {
		return nil, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return ret, nil
}

// ParseIPAddr accepts an IPv4 or IPv6 address or CIDR prefix and returns its
// canonical text.
func ParseIPAddr(s string) (string, error) {
	if strings.Contains(s, "/") {
		prefix, err := netip.ParsePrefix(s)
		if err != nil {
			return "", err
		}
		return prefix.String(), nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", err
	}
	if addr.Zone() != "" {
		return "", fmt.Errorf("invalid IP address %q: zones are not supported", s)
	}
	return addr.String(), nil
}
