package telephony

import (
	"strings"
	"testing"
)

func TestRenderTwiMLPlay(t *testing.T) {
	xml, err := RenderTwiML(Play("https://cdn.example.com/voice.mp3"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if want := "<Play>https://cdn.example.com/voice.mp3</Play>"; !strings.Contains(xml, want) {
		t.Fatalf("expected %q in xml: %s", want, xml)
	}
	if !strings.Contains(xml, "<Response>") {
		t.Fatalf("expected Response root: %s", xml)
	}
}

func TestRenderTwiMLSay(t *testing.T) {
	xml, err := RenderTwiML(Say("Connecting you now"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if want := "<Say>Connecting you now</Say>"; !strings.Contains(xml, want) {
		t.Fatalf("expected %q in xml: %s", want, xml)
	}
}

func TestRenderTwiMLPlayRequiresURL(t *testing.T) {
	if _, err := RenderTwiML(Play("  ")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRenderTwiMLUnknownAction(t *testing.T) {
	if _, err := RenderTwiML(Instruction{Action: "dance"}); err == nil {
		t.Fatalf("expected error")
	}
}
