package format

import (
	"testing"
	"time"
)

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Millisecond, "Less than a second"},
		{time.Second, "1 second"},
		{42 * time.Second, "42 seconds"},
		{time.Minute, "About a minute"},
		{45 * time.Minute, "45 minutes"},
		{time.Hour, "About an hour"},
		{36 * time.Hour, "36 hours"},
		{96 * time.Hour, "4 days"},
		{3 * 24 * 7 * time.Hour, "3 weeks"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := HumanDuration(tt.in); got != tt.want {
				t.Errorf("HumanDuration(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHumanTime(t *testing.T) {
	if got := HumanTime(time.Time{}, "Never"); got != "Never" {
		t.Errorf("zero time = %q, want Never", got)
	}

	past := time.Now().Add(-2 * time.Hour)
	if got := HumanTime(past, "Never"); got != "2 hours ago" {
		t.Errorf("past = %q, want %q", got, "2 hours ago")
	}

	future := time.Now().Add(2*time.Hour + time.Minute)
	if got := HumanTime(future, "Never"); got != "2 hours from now" {
		t.Errorf("future = %q, want %q", got, "2 hours from now")
	}
}
