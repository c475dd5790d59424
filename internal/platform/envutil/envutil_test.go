package envutil

import (
	"testing"
	"time"
)

func TestDurationAcceptsBareIntegersAndDurations(t *testing.T) {
	t.Setenv("X_TTL", "90")
	if got := Duration("X_TTL", time.Second, time.Second); got != 90*time.Second {
		t.Fatalf("bare int: got=%v", got)
	}
	t.Setenv("X_TTL", "2m")
	if got := Duration("X_TTL", time.Second, time.Second); got != 2*time.Minute {
		t.Fatalf("duration string: got=%v", got)
	}
	t.Setenv("X_TTL", "nope")
	if got := Duration("X_TTL", time.Second, time.Second); got != time.Second {
		t.Fatalf("fallback: got=%v", got)
	}
}

func TestListDropsBlanks(t *testing.T) {
	t.Setenv("X_ORIGINS", " http://a , ,http://b,")
	got := List("X_ORIGINS", nil)
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Fatalf("unexpected list: %#v", got)
	}
}

func TestIntAndFloatFallBackOnGarbage(t *testing.T) {
	t.Setenv("X_N", "ten")
	if got := Int("X_N", 10); got != 10 {
		t.Fatalf("Int fallback: got=%d", got)
	}
	if got := Float("X_N", 2.5); got != 2.5 {
		t.Fatalf("Float fallback: got=%v", got)
	}
	if !Bool("X_MISSING", true) {
		t.Fatalf("Bool default not honoured")
	}
}
