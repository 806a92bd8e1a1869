package payouter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apexpay/payouter/internal/payouter"
)

func TestSign_Deterministic(t *testing.T) {
	// Two payloads built in different insertion order but structurally
	// identical, including a nested mapping.
	a := map[string]any{
		"amount":   "100",
		"currency": "USD",
		"details": map[string]any{
			"orderId":    "o-1",
			"merchantId": "m-1",
		},
	}
	b := map[string]any{
		"details": map[string]any{
			"merchantId": "m-1",
			"orderId":    "o-1",
		},
		"currency": "USD",
		"amount":   "100",
	}

	s1 := payouter.Sign(a, "secret")
	s2 := payouter.Sign(b, "secret")

	assert.Equal(t, s1, s2)
	assert.Len(t, s1, 32) // hex MD5
}

func TestSign_SensitiveToPayloadAndSecret(t *testing.T) {
	base := map[string]any{"amount": "100", "currency": "USD"}

	ref := payouter.Sign(base, "secret")

	changedLeaf := map[string]any{"amount": "101", "currency": "USD"}
	assert.NotEqual(t, ref, payouter.Sign(changedLeaf, "secret"))

	assert.NotEqual(t, ref, payouter.Sign(base, "other-secret"))
}

func TestSign_StripsApostrophes(t *testing.T) {
	withApostrophe := map[string]any{"name": "o'brien"}
	without := map[string]any{"name": "obrien"}

	assert.Equal(t, payouter.Sign(without, "k"), payouter.Sign(withApostrophe, "k"))
}

func TestSign_FallbackOnUnserializablePayload(t *testing.T) {
	payload := map[string]any{"bad": func() {}}

	assert.Equal(t, payouter.FallbackSignature, payouter.Sign(payload, "secret"))
}

func TestSign_ArraysLeftUntouched(t *testing.T) {
	a := map[string]any{"items": []any{"b", "a"}}
	b := map[string]any{"items": []any{"a", "b"}}

	// Array order is part of the payload, not canonicalized away.
	assert.NotEqual(t, payouter.Sign(a, "k"), payouter.Sign(b, "k"))
}
