package ess

import (
	"testing"
	"time"
)

func TestSystemTimeTime(t *testing.T) {
	st := SystemTime{Year: 2022, Month: 6, Weekday: 4, Day: 2, Hour: 17, Minute: 41, Second: 9, Millisecond: 120}
	got, ok := st.Time(time.UTC)
	if !ok {
		t.Fatalf("valid time rejected")
	}
	want := time.Date(2022, time.June, 2, 17, 41, 9, 120*int(time.Millisecond), time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if s := st.String(); s != "2022-06-02 17:41:09.120" {
		t.Fatalf("String() = %q", s)
	}
}

func TestSystemTimeOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		st   SystemTime
	}{
		{"zero", SystemTime{}},
		{"month 13", SystemTime{Year: 2022, Month: 13, Day: 1}},
		{"feb 30", SystemTime{Year: 2022, Month: 2, Day: 30}},
		{"hour 24", SystemTime{Year: 2022, Month: 1, Day: 1, Hour: 24}},
		{"millis 1000", SystemTime{Year: 2022, Month: 1, Day: 1, Millisecond: 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tt.st.Time(time.UTC); ok {
				t.Fatalf("%v accepted", tt.st)
			}
		})
	}
}
