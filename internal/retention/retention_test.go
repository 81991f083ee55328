package retention

import (
	"testing"
	"time"
)

func TestParsePeriodDays(t *testing.T) {
	d, err := ParsePeriod("30d")
	if err != nil {
		t.Fatalf("ParsePeriod(30d): %v", err)
	}
	if d != 720*time.Hour {
		t.Fatalf("got %v, want 720h", d)
	}
	d, err = ParsePeriod("1.5d")
	if err != nil {
		t.Fatalf("ParsePeriod(1.5d): %v", err)
	}
	if d != 36*time.Hour {
		t.Fatalf("got %v, want 36h", d)
	}
}

func TestParsePeriodDuration(t *testing.T) {
	d, err := ParsePeriod("720h")
	if err != nil {
		t.Fatalf("ParsePeriod(720h): %v", err)
	}
	if d != 720*time.Hour {
		t.Fatalf("got %v, want 720h", d)
	}
}

func TestParsePeriodRejects(t *testing.T) {
	for _, s := range []string{"", "  ", "xd", "soon", "-1h", "0s"} {
		if _, err := ParsePeriod(s); err == nil {
			t.Fatalf("ParsePeriod(%q) accepted, want error", s)
		}
	}
}
