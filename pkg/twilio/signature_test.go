package twilio

import (
	"net/url"
	"testing"
)

func TestValidateSignature(t *testing.T) {
	const token = "secret-token"
	fullURL := "https://example.org/webhooks/whatsapp"
	params := url.Values{
		"Body": {"hi"},
		"From": {"whatsapp:+919876543210"},
	}
	valid := computeSignature(token, fullURL+"Bodyhi"+"Fromwhatsapp:+919876543210")

	tests := []struct {
		name      string
		token     string
		url       string
		params    url.Values
		signature string
		want      bool
	}{
		{"valid", token, fullURL, params, valid, true},
		{"tampered body", token, fullURL, url.Values{"Body": {"bye"}, "From": params["From"]}, valid, false},
		{"wrong url", token, fullURL + "?x=1", params, valid, false},
		{"wrong token", "other", fullURL, params, valid, false},
		{"missing signature", token, fullURL, params, "", false},
		{"missing token", "", fullURL, params, valid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateSignature(tt.token, tt.url, tt.params, tt.signature); got != tt.want {
				t.Errorf("ValidateSignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseStatusCallback(t *testing.T) {
	cb := ParseStatusCallback(url.Values{
		"CallSid":      {"CA123"},
		"CallStatus":   {"completed"},
		"CallDuration": {"abc"},
	})
	if cb.CallSid != "CA123" || cb.CallStatus != CallStatusCompleted {
		t.Errorf("unexpected callback: %+v", cb)
	}
	if cb.Duration != 0 {
		t.Errorf("malformed duration should be 0, got %d", cb.Duration)
	}
}

func TestInboundMessage_Phone(t *testing.T) {
	msg := ParseInboundMessage(url.Values{"From": {"whatsapp:+919876543210"}, "Body": {" Hi "}})
	if msg.Phone() != "+919876543210" {
		t.Errorf("Phone() = %q", msg.Phone())
	}
}
