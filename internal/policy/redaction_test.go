package policy

import (
	"strings"
	"testing"
)

func TestRedactPII(t *testing.T) {
	input := "Read this to sam@example.com, call +1 (555) 123-9876 and charge 4242 4242 4242 4242."
	out, changed := RedactPII(input)
	if !changed {
		t.Fatalf("changed = false, want true")
	}
	for _, marker := range []string{"[REDACTED_EMAIL]", "[REDACTED_PHONE]", "[REDACTED_CARD]"} {
		if !strings.Contains(out, marker) {
			t.Fatalf("output missing marker %q: %q", marker, out)
		}
	}
}

func TestRedactPIILeavesPlainText(t *testing.T) {
	out, changed := RedactPII("Systems online.")
	if changed || out != "Systems online." {
		t.Fatalf("RedactPII() = %q, %v; want unchanged", out, changed)
	}
}
