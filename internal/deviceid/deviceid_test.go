package deviceid

import (
	"strings"
	"testing"
)

func TestGetIsCachedAndNonEmpty(t *testing.T) {
	reset()
	first := Get()
	if first == "" {
		t.Fatal("Get() returned empty string")
	}
	second := Get()
	if first != second {
		t.Errorf("Get() not cached across calls: %q vs %q", first, second)
	}
}

func TestReadMachineIDTrimsWhitespace(t *testing.T) {
	// readMachineID depends on the host filesystem; this only verifies it
	// degrades to false rather than panicking when the file is absent on a
	// minimal test sandbox, and that a present value is non-empty and
	// trimmed.
	if id, ok := readMachineID(); ok && id == "" {
		t.Errorf("readMachineID returned ok=true with empty id")
	} else if ok && id != strings.TrimSpace(id) {
		t.Errorf("readMachineID returned untrimmed id %q", id)
	}
}
