package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"strings"
)

// SignatureHeader carries the request signature on every webhook
const SignatureHeader = "X-Twilio-Signature"

// ValidateSignature validates a Twilio webhook request signature.
// fullURL must be the exact URL Twilio requested, including the query
// string; params are the POST form values (nil for GET requests).
func ValidateSignature(authToken, fullURL string, params url.Values, signature string) bool {
	if authToken == "" || signature == "" {
		return false
	}
	expected := computeSignature(authToken, buildSignaturePayload(fullURL, params))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// buildSignaturePayload concatenates the URL and the sorted params
func buildSignaturePayload(fullURL string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var payload strings.Builder
	payload.WriteString(fullURL)
	for _, k := range keys {
		for _, v := range params[k] {
			payload.WriteString(k)
			payload.WriteString(v)
		}
	}
	return payload.String()
}

func computeSignature(authToken, data string) string {
	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
