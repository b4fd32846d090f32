package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/mamacare-be/pkg/logging"
	"github.com/themobileprof/mamacare-be/pkg/twilio"
)

// TwilioSignature rejects webhook requests whose X-Twilio-Signature does
// not match. The signed URL is rebuilt from baseURL because the process
// usually sits behind a proxy that rewrites scheme and host.
func TwilioSignature(authToken, baseURL string, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		fullURL := baseURL + c.Request.URL.RequestURI()

		var params url.Values
		if c.Request.Method == http.MethodPost {
			if err := c.Request.ParseForm(); err != nil {
				c.AbortWithStatus(http.StatusBadRequest)
				return
			}
			params = c.Request.PostForm
		}

		if !twilio.ValidateSignature(authToken, fullURL, params, c.GetHeader(twilio.SignatureHeader)) {
			logger.Warn("rejected webhook with bad signature", "path", c.Request.URL.Path)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
