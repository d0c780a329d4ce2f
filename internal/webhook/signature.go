package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// Verifier checks a provider signature header against the raw request body.
// Each provider gets its own instance with its own shared secret.
type Verifier interface {
	Verify(header string, body []byte) bool
}

type HMACVerifier struct {
	secret string
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: secret}
}

// Verify parses a "t=<ts>,v1=<hex>[,vN=<hex>...]" header and accepts when any
// candidate matches HMAC-SHA256("{t}.{body}") under any supported decoding of
// the shared secret. Comparison is constant-time.
func (v *HMACVerifier) Verify(header string, body []byte) bool {
	timestamp, candidates := parseSignatureHeader(header)
	if timestamp == "" || len(candidates) == 0 {
		return false
	}

	signedPayload := append([]byte(timestamp+"."), body...)
	for _, secret := range secretCandidates(v.secret) {
		mac := hmac.New(sha256.New, secret)
		mac.Write(signedPayload)
		expected := hex.EncodeToString(mac.Sum(nil))
		for _, candidate := range candidates {
			if hmac.Equal([]byte(expected), []byte(strings.ToLower(candidate))) {
				return true
			}
		}
	}
	return false
}

// parseSignatureHeader splits the comma-separated key=value pairs, returning
// the t value and every v{n} signature candidate.
func parseSignatureHeader(header string) (timestamp string, candidates []string) {
	for _, part := range strings.Split(header, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch {
		case k == "t":
			timestamp = val
		case len(k) >= 2 && k[0] == 'v' && isDigits(k[1:]):
			candidates = append(candidates, val)
		}
	}
	return timestamp, candidates
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// secretCandidates returns the secret interpreted as raw UTF-8, standard
// Base64 and URL-safe Base64 (padding optional). Configuration discipline for
// the secret varies per environment, so all three are tried before failing
// closed.
func secretCandidates(secret string) [][]byte {
	out := [][]byte{[]byte(secret)}
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if decoded, err := enc.DecodeString(secret); err == nil {
			out = append(out, decoded)
		}
	}
	return out
}
