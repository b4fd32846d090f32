package twilio

import (
	"fmt"
	"strings"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

// VoiceResponse builds a voice TwiML document
type VoiceResponse struct {
	builder strings.Builder
}

// NewVoiceResponse creates a new voice TwiML builder
func NewVoiceResponse() *VoiceResponse {
	t := &VoiceResponse{}
	t.builder.WriteString(xmlHeader)
	t.builder.WriteString(`<Response>`)
	return t
}

// Say adds a Say verb to speak text
func (t *VoiceResponse) Say(text, voice, language string) *VoiceResponse {
	if voice == "" {
		voice = "Polly.Raveena"
	}
	if language == "" {
		language = "en-IN"
	}

	t.builder.WriteString(fmt.Sprintf(`<Say voice="%s" language="%s">%s</Say>`,
		voice, language, escapeXML(text)))
	return t
}

// GatherOptions configures a Gather verb
type GatherOptions struct {
	Action        string
	Method        string
	Input         string // "speech", "dtmf" or "speech dtmf"
	Language      string
	Timeout       int
	SpeechTimeout string
	NumDigits     int
	Hints         string
}

// Gather opens a Gather verb. Nested Say verbs go between Gather and EndGather.
func (t *VoiceResponse) Gather(opts GatherOptions) *VoiceResponse {
	if opts.Input == "" {
		opts.Input = "speech"
	}
	if opts.Language == "" {
		opts.Language = "en-IN"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5
	}
	if opts.SpeechTimeout == "" {
		opts.SpeechTimeout = "auto"
	}

	t.builder.WriteString(fmt.Sprintf(`<Gather input="%s" action="%s"`, opts.Input, escapeXML(opts.Action)))
	if opts.Method != "" {
		t.builder.WriteString(fmt.Sprintf(` method="%s"`, opts.Method))
	}
	t.builder.WriteString(fmt.Sprintf(` language="%s" timeout="%d" speechTimeout="%s"`,
		opts.Language, opts.Timeout, opts.SpeechTimeout))
	if opts.NumDigits > 0 {
		t.builder.WriteString(fmt.Sprintf(` numDigits="%d"`, opts.NumDigits))
	}
	if opts.Hints != "" {
		t.builder.WriteString(fmt.Sprintf(` hints="%s"`, escapeXML(opts.Hints)))
	}
	t.builder.WriteString(`>`)
	return t
}

// EndGather closes a Gather verb
func (t *VoiceResponse) EndGather() *VoiceResponse {
	t.builder.WriteString(`</Gather>`)
	return t
}

// Hangup adds a Hangup verb
func (t *VoiceResponse) Hangup() *VoiceResponse {
	t.builder.WriteString(`<Hangup/>`)
	return t
}

// Pause adds a Pause verb
func (t *VoiceResponse) Pause(length int) *VoiceResponse {
	if length == 0 {
		length = 1
	}
	t.builder.WriteString(fmt.Sprintf(`<Pause length="%d"/>`, length))
	return t
}

// String returns the complete TwiML XML
func (t *VoiceResponse) String() string {
	return t.builder.String() + `</Response>`
}

// MessagingResponse builds a messaging TwiML document
type MessagingResponse struct {
	messages []string
}

// NewMessagingResponse creates an empty messaging TwiML builder
func NewMessagingResponse() *MessagingResponse {
	return &MessagingResponse{}
}

// Message adds a Message verb replying to the sender
func (m *MessagingResponse) Message(body string) *MessagingResponse {
	m.messages = append(m.messages, body)
	return m
}

// String returns the complete TwiML XML
func (m *MessagingResponse) String() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Response>`)
	for _, body := range m.messages {
		b.WriteString(`<Message>`)
		b.WriteString(escapeXML(body))
		b.WriteString(`</Message>`)
	}
	b.WriteString(`</Response>`)
	return b.String()
}

// escapeXML escapes special XML characters
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
