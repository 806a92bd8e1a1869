package payouter

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// FallbackSignature is returned when the payload cannot be serialized. The
// processor rejects it, but callers still get a usable value instead of an
// error mid-request.
const FallbackSignature = "0"

// Sign produces the request signature the processor expects: compact JSON
// with mapping keys sorted alphabetically at every nesting level, apostrophes
// stripped from the serialized text, the result base64-encoded, and an MD5
// hex digest taken over the base64 string concatenated with the secret.
//
// encoding/json already emits map keys in sorted order at every depth, so
// marshaling the payload is the canonicalization step. The output is
// byte-for-byte reproducible for equivalent payloads regardless of how their
// maps were built.
func Sign(payload map[string]any, secret string) string {
	canonical, err := json.Marshal(payload)
	if err != nil {
		return FallbackSignature
	}

	stripped := strings.ReplaceAll(string(canonical), "'", "")
	encoded := base64.StdEncoding.EncodeToString([]byte(stripped))

	sum := md5.Sum([]byte(encoded + secret))

	return hex.EncodeToString(sum[:])
}
