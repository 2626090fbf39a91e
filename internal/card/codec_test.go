package card_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saxiib/internal/card"
	"saxiib/internal/domain"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	in := domain.ContactCard{ID: "user_1_abc", DisplayName: "Ada", PublicKey: "cHVia2V5"}

	text, err := card.Encode(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"user_1_abc","name":"Ada","publicKey":"cHVia2V5"}`, text)

	got, err := card.Decode(text)
	require.NoError(t, err)
	assert.Equal(t, in, got.Card())
}

func TestDecode_Malformed(t *testing.T) {
	for _, text := range []string{"not json", "", "[1,2]", "null", `"str"`} {
		_, err := card.Decode(text)
		require.Error(t, err, text)
		assert.ErrorIs(t, err, domain.ErrMalformedPayload, text)
		assert.NotErrorIs(t, err, domain.ErrInvalidFormat, text)
	}
}

func TestDecode_InvalidFormat(t *testing.T) {
	cases := map[string]string{
		`{"id":"x"}`:                                  "name",
		`{"id":"","name":"n","publicKey":"k"}`:        "id",
		`{"id":"x","name":"n","publicKey":""}`:        "publicKey",
		`{"id":"x","name":7,"publicKey":"k"}`:         "name",
		`{"name":"n","publicKey":"k","extra":"field"}`: "id",
	}
	for text, field := range cases {
		_, err := card.Decode(text)
		require.Error(t, err, text)
		assert.ErrorIs(t, err, domain.ErrInvalidFormat, text)

		var de *domain.DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, field, de.Field, text)
	}
}

func TestDecode_IgnoresExtraFields(t *testing.T) {
	got, err := card.Decode(`{"id":"x","name":"n","publicKey":"k","v":2}`)
	require.NoError(t, err)
	assert.Equal(t, domain.PeerID("x"), got.ID)
}

func TestEncode_RejectsIncompleteCard(t *testing.T) {
	_, err := card.Encode(domain.ContactCard{ID: "x", PublicKey: "k"})
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)
}
