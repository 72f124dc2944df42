package healthexport

import (
	"encoding/xml"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DefaultStepType is the HealthKit identifier of step-count samples.
const DefaultStepType = "HKQuantityTypeIdentifierStepCount"

// appleLayout is the timestamp format the Health app writes.
const appleLayout = "2006-01-02 15:04:05 -0700"

// Record is one step-count sample. Start and End keep the offset written in
// the export.
type Record struct {
	Start time.Time
	End   time.Time
	Value int
}

// Skip reasons, used as the metric label and in trace logs.
const (
	reasonMissingAttribute = "missing_attribute"
	reasonBadTimestamp     = "bad_timestamp"
	reasonBadValue         = "bad_value"
	reasonBadInterval      = "bad_interval"
)

// parseRecord converts the attributes of a matching <Record>. On failure it
// returns the skip reason.
func parseRecord(attrs []xml.Attr) (Record, string) {
	var start, end, value string
	var haveStart, haveEnd, haveValue bool
	for _, a := range attrs {
		switch a.Name.Local {
		case "startDate":
			start, haveStart = a.Value, true
		case "endDate":
			end, haveEnd = a.Value, true
		case "value":
			value, haveValue = a.Value, true
		}
	}
	if !haveStart || !haveEnd || !haveValue {
		return Record{}, reasonMissingAttribute
	}

	s, err := ParseTimestamp(start)
	if err != nil {
		return Record{}, reasonBadTimestamp
	}
	e, err := ParseTimestamp(end)
	if err != nil {
		return Record{}, reasonBadTimestamp
	}
	if e.Before(s) {
		return Record{}, reasonBadInterval
	}
	v, ok := parseValue(value)
	if !ok {
		return Record{}, reasonBadValue
	}
	return Record{Start: s, End: e, Value: v}, ""
}

// ParseTimestamp parses an export timestamp. The Health app layout is tried
// first; anything else goes through dateparse, with zone-less input read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(appleLayout, s); err == nil {
		return t, nil
	}
	return dateparse.ParseIn(s, time.UTC)
}

// parseValue reads a decimal count and truncates it toward zero. Negative,
// non-finite and out-of-range values are rejected.
func parseValue(s string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	f = math.Trunc(f)
	if f >= math.MaxInt64 {
		return 0, false
	}
	return int(f), true
}

func attrValue(attrs []xml.Attr, local string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
