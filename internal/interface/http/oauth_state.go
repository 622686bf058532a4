package http

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	oauthCookieName = "kai_oauth"
	oauthCookiePath = "/api/v1/auth/google"
	oauthCookieTTL  = 300
)

// oauthPending is the PKCE state kept between the login redirect and the callback.
type oauthPending struct {
	State        string `json:"state"`
	CodeVerifier string `json:"verifier"`
}

func writeOAuthCookie(c *gin.Context, pending oauthPending, maxAge int) {
	value := ""
	if maxAge > 0 {
		data, _ := json.Marshal(pending)
		value = base64.RawURLEncoding.EncodeToString(data)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthCookieName, value, maxAge, oauthCookiePath, "", c.Request.TLS != nil, true)
}

func rememberOAuthState(c *gin.Context, state, codeVerifier string) {
	writeOAuthCookie(c, oauthPending{State: state, CodeVerifier: codeVerifier}, oauthCookieTTL)
}

// consumeOAuthState clears the cookie and returns the verifier when state matches.
func consumeOAuthState(c *gin.Context, state string) (string, bool) {
	raw, err := c.Cookie(oauthCookieName)
	writeOAuthCookie(c, oauthPending{}, -1)
	if err != nil || raw == "" || state == "" {
		return "", false
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", false
	}
	var pending oauthPending
	if err := json.Unmarshal(data, &pending); err != nil || pending.CodeVerifier == "" {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(pending.State), []byte(state)) != 1 {
		return "", false
	}
	return pending.CodeVerifier, true
}
