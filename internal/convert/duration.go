package convert

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/common"
)

// Unit is the calendar or clock unit of a Duration.
type Unit int

const (
	UnitSecond Unit = iota
	UnitMinute
	UnitHour
	UnitDay
	UnitMonth
	UnitYear
)

// String returns the single letter suffix used when formatting durations.
func (u Unit) String() string {
	switch u {
	case UnitSecond:
		return "s"
	case UnitMinute:
		return "m"
	case UnitHour:
		return "h"
	case UnitDay:
		return "D"
	case UnitMonth:
		return "M"
	case UnitYear:
		return "Y"
	default:
		return common.UnknownStr
	}
}

// Duration is a relative amount of calendar or clock time.
// Months and years cannot be expressed as time.Duration, so the amount is kept
// together with its unit and only resolved against an instant in AddTo.
type Duration struct {
	Amount int64
	Unit   Unit
}

var durationPattern = regexp.MustCompile(`^\s*([+-]?\d+)\s*([A-Za-z]*)\s*$`)

// unitWords lists accepted long unit names. Single letters are handled
// separately because "m" and "M" differ.
var unitWords = map[string]Unit{
	"s":       UnitSecond,
	"sec":     UnitSecond,
	"second":  UnitSecond,
	"seconds": UnitSecond,
	"min":     UnitMinute,
	"minute":  UnitMinute,
	"minutes": UnitMinute,
	"h":       UnitHour,
	"hour":    UnitHour,
	"hours":   UnitHour,
	"d":       UnitDay,
	"day":     UnitDay,
	"days":    UnitDay,
	"month":   UnitMonth,
	"months":  UnitMonth,
	"y":       UnitYear,
	"year":    UnitYear,
	"years":   UnitYear,
}

// ParseDuration parses literals such as "1h", "15m", "3M", "2 days" or
// "1 year". A bare integer is read as minutes.
func ParseDuration(s string) (Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return Duration{}, fmt.Errorf("invalid duration %q", s)
	}

	amount, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Duration{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	unit, err := parseUnit(m[2])
	if err != nil {
		return Duration{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	return Duration{Amount: amount, Unit: unit}, nil
}

func parseUnit(u string) (Unit, error) {
	switch u {
	case "":
		return UnitMinute, nil
	case "m":
		return UnitMinute, nil
	case "M":
		return UnitMonth, nil
	case "D":
		return UnitDay, nil
	case "Y":
		return UnitYear, nil
	}

	if unit, ok := unitWords[strings.ToLower(u)]; ok {
		return unit, nil
	}

	return 0, errors.New("unknown unit " + strconv.Quote(u))
}

// String formats the duration in the compact form accepted by ParseDuration.
func (d Duration) String() string {
	return strconv.FormatInt(d.Amount, 10) + d.Unit.String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// Scale returns the duration multiplied by n.
func (d Duration) Scale(n int64) Duration {
	return Duration{Amount: d.Amount * n, Unit: d.Unit}
}

// IsZero reports whether the duration has no length.
func (d Duration) IsZero() bool {
	return d.Amount == 0
}

// AddTo returns t shifted by the duration. Month and year arithmetic follows
// time.AddDate normalization.
func (d Duration) AddTo(t time.Time) time.Time {
	switch d.Unit {
	case UnitSecond:
		return t.Add(time.Duration(d.Amount) * time.Second)
	case UnitMinute:
		return t.Add(time.Duration(d.Amount) * time.Minute)
	case UnitHour:
		return t.Add(time.Duration(d.Amount) * time.Hour)
	case UnitDay:
		return t.AddDate(0, 0, int(d.Amount))
	case UnitMonth:
		return t.AddDate(0, int(d.Amount), 0)
	case UnitYear:
		return t.AddDate(int(d.Amount), 0, 0)
	default:
		return t
	}
}
