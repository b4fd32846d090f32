package twilio

import (
	"strings"
	"testing"
)

func TestVoiceResponse_Say(t *testing.T) {
	twiml := NewVoiceResponse().
		Say("Namaste Asha", "Polly.Aditi", "hi-IN").
		String()

	if !strings.HasPrefix(twiml, xmlHeader+"<Response>") {
		t.Errorf("expected XML header and Response tag, got %s", twiml)
	}
	if !strings.Contains(twiml, `<Say voice="Polly.Aditi" language="hi-IN">Namaste Asha</Say>`) {
		t.Errorf("expected Say verb, got %s", twiml)
	}
	if !strings.HasSuffix(twiml, "</Response>") {
		t.Error("expected closing Response tag")
	}
}

func TestVoiceResponse_Gather(t *testing.T) {
	twiml := NewVoiceResponse().
		Gather(GatherOptions{
			Action:    "/webhooks/ivr?week=20&lang=english&name=A",
			Method:    "GET",
			Input:     "speech dtmf",
			Language:  "en-IN",
			Timeout:   10,
			NumDigits: 1,
			Hints:     "iron, diet",
		}).
		Say("Press 1", "", "").
		EndGather().
		String()

	for _, want := range []string{
		`<Gather input="speech dtmf"`,
		`action="/webhooks/ivr?week=20&amp;lang=english&amp;name=A"`,
		`method="GET"`,
		`timeout="10"`,
		`speechTimeout="auto"`,
		`numDigits="1"`,
		`hints="iron, diet"`,
		`</Gather>`,
	} {
		if !strings.Contains(twiml, want) {
			t.Errorf("expected %q in %s", want, twiml)
		}
	}
}

func TestVoiceResponse_PauseAndHangup(t *testing.T) {
	twiml := NewVoiceResponse().Pause(0).Hangup().String()

	if !strings.Contains(twiml, `<Pause length="1"/>`) {
		t.Error("expected default pause length of 1")
	}
	if !strings.Contains(twiml, "<Hangup/>") {
		t.Error("expected Hangup verb")
	}
}

func TestMessagingResponse(t *testing.T) {
	empty := NewMessagingResponse().String()
	if empty != xmlHeader+"<Response></Response>" {
		t.Errorf("empty response = %s", empty)
	}

	reply := NewMessagingResponse().Message("Type *hi* & more").String()
	if !strings.Contains(reply, "<Message>Type *hi* &amp; more</Message>") {
		t.Errorf("expected escaped message, got %s", reply)
	}
}

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello & goodbye", "Hello &amp; goodbye"},
		{"<tag>", "&lt;tag&gt;"},
		{`"quoted"`, "&quot;quoted&quot;"},
		{"it's", "it&apos;s"},
		{"normal text", "normal text"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := escapeXML(tt.input); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
