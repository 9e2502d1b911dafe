package ess

import (
	"fmt"
	"time"
)

// SystemTime mirrors the Windows SYSTEMTIME struct. Fields are kept exactly
// as stored; nothing is range checked.
type SystemTime struct {
	Year        uint16 `json:"year"`
	Month       uint16 `json:"month"`
	Weekday     uint16 `json:"weekday"`
	Day         uint16 `json:"day"`
	Hour        uint16 `json:"hour"`
	Minute      uint16 `json:"minute"`
	Second      uint16 `json:"second"`
	Millisecond uint16 `json:"millisecond"`
}

func readSystemTime(c *Cursor) (SystemTime, error) {
	var fields [8]uint16
	for i := range fields {
		v, err := c.ReadU16()
		if err != nil {
			return SystemTime{}, err
		}
		fields[i] = v
	}
	return SystemTime{
		Year:        fields[0],
		Month:       fields[1],
		Weekday:     fields[2],
		Day:         fields[3],
		Hour:        fields[4],
		Minute:      fields[5],
		Second:      fields[6],
		Millisecond: fields[7],
	}, nil
}

// Time converts to a time.Time in loc. It reports false when any field is
// out of range, since time.Date would silently normalise it.
func (t SystemTime) Time(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	if t.Month < 1 || t.Month > 12 || t.Day < 1 || t.Hour > 23 || t.Minute > 59 ||
		t.Second > 59 || t.Millisecond > 999 {
		return time.Time{}, false
	}
	out := time.Date(int(t.Year), time.Month(t.Month), int(t.Day),
		int(t.Hour), int(t.Minute), int(t.Second), int(t.Millisecond)*int(time.Millisecond), loc)
	if out.Day() != int(t.Day) {
		return time.Time{}, false
	}
	return out, true
}

func (t SystemTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%03d",
		t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, t.Millisecond)
}
