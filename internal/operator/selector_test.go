package operator

import (
	"errors"
	"testing"

	"contact-dialer/internal/directory"
)

var sample = []directory.Contact{
	{DisplayName: "Ada", PhoneNumber: "+15550000001"},
	{DisplayName: "Grace", PhoneNumber: "+15550000002"},
}

func TestSelect_OneBased(t *testing.T) {
	c, err := Select(sample, " 2 ")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if c.DisplayName != "Grace" {
		t.Fatalf("expected Grace, got %+v", c)
	}
}

func TestSelect_RejectsBadInput(t *testing.T) {
	for _, in := range []string{"0", "3", "-1", "abc", ""} {
		_, err := Select(sample, in)
		var sel *InvalidSelectionError
		if !errors.As(err, &sel) {
			t.Fatalf("%q: expected InvalidSelectionError, got %v", in, err)
		}
		if sel.Max != 2 {
			t.Fatalf("expected max 2, got %d", sel.Max)
		}
	}
}
