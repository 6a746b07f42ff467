package orchestration

import (
	"errors"
	"testing"
)

func TestParseDirective(t *testing.T) {
	d, err := ParseDirective("Found availability. <handoff to='Flights'>Available dates: 2025-06-10 to 2025-06-13, Destination: Chicago.</handoff>")
	if err != nil {
		t.Fatalf("ParseDirective() error = %v", err)
	}
	if d.Target != "Flights" {
		t.Errorf("Target = %q, want %q", d.Target, "Flights")
	}
	if d.Payload != "Available dates: 2025-06-10 to 2025-06-13, Destination: Chicago." {
		t.Errorf("unexpected payload %q", d.Payload)
	}
}

func TestParseDirectiveNone(t *testing.T) {
	_, err := ParseDirective("Here is your final itinerary. Have a great trip!")
	if !errors.Is(err, ErrNoDirective) {
		t.Fatalf("error = %v, want ErrNoDirective", err)
	}
}

func TestParseDirectiveMalformed(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"unclosed tag", "<handoff to='Flights'>dates but no closing tag"},
		{"double quotes", `<handoff to="Flights">payload</handoff>`},
		{"missing target attr", "<handoff>payload</handoff>"},
		{"empty target", "<handoff to=''>payload</handoff>"},
		{"whitespace target", "<handoff to='   '>payload</handoff>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDirective(tc.text)
			if !errors.Is(err, ErrMalformedDirective) {
				t.Errorf("error = %v, want ErrMalformedDirective", err)
			}
		})
	}
}

func TestParseDirectiveAmbiguous(t *testing.T) {
	text := "<handoff to='Flights'>one</handoff> and also <handoff to='Hotels'>two</handoff>"
	_, err := ParseDirective(text)
	if !errors.Is(err, ErrAmbiguousDirective) {
		t.Fatalf("error = %v, want ErrAmbiguousDirective", err)
	}
}

func TestParseDirectivePayloadSpansLines(t *testing.T) {
	d, err := ParseDirective("<handoff to='Hotels'>line one\nline two</handoff>")
	if err != nil {
		t.Fatalf("ParseDirective() error = %v", err)
	}
	if d.Payload != "line one\nline two" {
		t.Errorf("payload = %q", d.Payload)
	}
}

func TestParseDirectiveUnknownTargetStillParses(t *testing.T) {
	// Routing validation happens later; the grammar itself accepts any name.
	d, err := ParseDirective("<handoff to='GhostAgent'>payload</handoff>")
	if err != nil {
		t.Fatalf("ParseDirective() error = %v", err)
	}
	if d.Target != "GhostAgent" {
		t.Errorf("Target = %q", d.Target)
	}
}
