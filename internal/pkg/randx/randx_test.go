package randx

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestBase62(t *testing.T) {
	s, err := Base62(40)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 40 {
		t.Fatalf("len = %d, want 40", len(s))
	}
	for _, c := range s {
		if !strings.ContainsRune(Base62Chars, c) {
			t.Fatalf("unexpected character %q", c)
		}
	}
}

func TestSecretRejectsShortLength(t *testing.T) {
	if _, err := Secret(8); err == nil {
		t.Error("expected error for short secret")
	}
	if s, err := Secret(32); err != nil || len(s) != 32 {
		t.Errorf("Secret(32) = %q, %v", s, err)
	}
}

func TestID(t *testing.T) {
	a, b := ID(), ID()
	if a == b {
		t.Error("ids should differ")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("not a uuid: %v", err)
	}
}
