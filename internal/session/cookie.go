package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

const CookieName = "sessionid"

// Sign returns the cookie value for id: "<id>.<mac>".
func Sign(id, secret string) string {
	return id + "." + mac(id, secret)
}

// Verify returns the id carried by a cookie value when its MAC matches.
func Verify(value, secret string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(mac(id, secret))) {
		return "", false
	}
	return id, true
}

func mac(id, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
