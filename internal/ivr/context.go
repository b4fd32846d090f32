package ivr

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/themobileprof/mamacare-be/internal/language"
)

// Context is the call context carried in every action URL. The IVR
// keeps no server-side session; each turn is computed from Context and
// the caller's input alone.
type Context struct {
	Week     int
	Language language.Language
	Name     string
}

// FromQuery parses the week, lang and name parameters. Only a Hindi
// lang selects Hindi; a missing or unrecognised one means English.
func FromQuery(q url.Values) Context {
	week, err := strconv.Atoi(strings.TrimSpace(q.Get("week")))
	if err != nil || week < 0 {
		week = 0
	}
	name := strings.TrimSpace(q.Get("name"))
	if name == "" {
		name = "Patient"
	}
	lang := language.Validate(q.Get("lang"), language.English)
	if lang.UsedFallback {
		lang.Language = language.English
	}
	return Context{
		Week:     week,
		Language: lang.Language,
		Name:     name,
	}
}

// Values encodes the context for an action URL
func (c Context) Values() url.Values {
	v := url.Values{}
	v.Set("week", strconv.Itoa(c.Week))
	v.Set("lang", string(c.Language))
	v.Set("name", c.Name)
	return v
}

// Input is what the caller said or pressed on this turn
type Input struct {
	Speech  string
	Digits  string
	CallSID string
	// Phone is the patient's number when the carrier reports it
	Phone string
}

func (in Input) empty() bool {
	return strings.TrimSpace(in.Speech) == "" && strings.TrimSpace(in.Digits) == ""
}
