package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"testing"
)

func sign(secret []byte, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp + "."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyRawSecret(t *testing.T) {
	secret := "whsec_test_secret"
	body := []byte(`{"id":"evt_1","type":"order.updated"}`)
	header := fmt.Sprintf("t=1700000000,v1=%s", sign([]byte(secret), "1700000000", body))

	if !NewHMACVerifier(secret).Verify(header, body) {
		t.Error("valid signature with raw secret must verify")
	}
}

func TestVerifyBase64Secrets(t *testing.T) {
	raw := []byte("binary\x00secret\xffbytes")
	body := []byte(`{"id":"evt_2"}`)
	header := fmt.Sprintf("t=1700000001,v1=%s", sign(raw, "1700000001", body))

	for name, encoded := range map[string]string{
		"std":        base64.StdEncoding.EncodeToString(raw),
		"url":        base64.URLEncoding.EncodeToString(raw),
		"url_no_pad": base64.RawURLEncoding.EncodeToString(raw),
	} {
		if !NewHMACVerifier(encoded).Verify(header, body) {
			t.Errorf("%s-encoded secret must verify", name)
		}
	}
}

func TestVerifyAnyCandidateSignature(t *testing.T) {
	secret := "whsec_rotating"
	body := []byte(`{}`)
	valid := sign([]byte(secret), "1700000002", body)
	header := fmt.Sprintf("t=1700000002,v1=%s,v2=%s", hex.EncodeToString(make([]byte, 32)), valid)

	if !NewHMACVerifier(secret).Verify(header, body) {
		t.Error("any matching v{n} candidate must be accepted")
	}
}

func TestVerifyRejectsMutations(t *testing.T) {
	secret := "whsec_test_secret"
	body := []byte(`{"id":"evt_3","amount":"100.00"}`)
	sig := sign([]byte(secret), "1700000003", body)

	v := NewHMACVerifier(secret)

	// mutated body
	mutated := append([]byte(nil), body...)
	mutated[len(mutated)-2] ^= 0x01
	if v.Verify(fmt.Sprintf("t=1700000003,v1=%s", sig), mutated) {
		t.Error("mutated body must not verify")
	}

	// mutated timestamp
	if v.Verify(fmt.Sprintf("t=1700000004,v1=%s", sig), body) {
		t.Error("mutated timestamp must not verify")
	}

	// mutated signature
	badSig := []byte(sig)
	if badSig[0] == 'a' {
		badSig[0] = 'b'
	} else {
		badSig[0] = 'a'
	}
	if v.Verify(fmt.Sprintf("t=1700000003,v1=%s", badSig), body) {
		t.Error("mutated signature must not verify")
	}

	// wrong secret
	if NewHMACVerifier("whsec_other").Verify(fmt.Sprintf("t=1700000003,v1=%s", sig), body) {
		t.Error("wrong secret must not verify")
	}
}

func TestVerifyRejectsMalformedHeaders(t *testing.T) {
	v := NewHMACVerifier("whsec_test_secret")
	body := []byte(`{}`)
	for _, header := range []string{"", "t=1700000000", "v1=deadbeef", "garbage", "t=,v1="} {
		if v.Verify(header, body) {
			t.Errorf("header %q must not verify", header)
		}
	}
}
