package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/location-relay/internal/domain/types"
)

func TestDecodeLocationMessage_Valid(t *testing.T) {
	data := []byte(`{"userId":"u1","shopName":"shop1","location":{"type":"Point","coordinates":[28.97,41.01]},"extra":true}`)

	payload, msg, err := DecodeLocationMessage(data)
	require.NoError(t, err)

	assert.Equal(t, "u1", msg.UserID)
	assert.Equal(t, "shop1", msg.ShopName)
	assert.Equal(t, "Point", msg.Location.Type)
	assert.InDelta(t, 28.97, msg.Location.Longitude(), 1e-9)
	assert.InDelta(t, 41.01, msg.Location.Latitude(), 1e-9)
	assert.Equal(t, string(data), string(payload), "payload is the frame as sent")
}

func TestDecodeLocationMessage_PayloadKeepsOrderAndDropsWhitespace(t *testing.T) {
	data := []byte("{\n  \"location\": {\"coordinates\": [28.97, 41.01], \"type\": \"Point\"},\n  \"userId\": \"u1\",\n  \"shopName\": \"shop 1\",\n  \"orderId\": \"o-17\"\n}")

	payload, _, err := DecodeLocationMessage(data)
	require.NoError(t, err)
	assert.Equal(t,
		`{"location":{"coordinates":[28.97,41.01],"type":"Point"},"userId":"u1","shopName":"shop 1","orderId":"o-17"}`,
		string(payload))
}

func TestDecodeLocationMessage_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantField string
		malformed bool
	}{
		{name: "not json", payload: `hello`, malformed: true},
		{name: "json array", payload: `[1,2]`, malformed: true},
		{name: "json null", payload: `null`, malformed: true},
		{name: "missing userId", payload: `{"shopName":"s","location":{"type":"Point","coordinates":[1,2]}}`, wantField: "userId"},
		{name: "empty userId", payload: `{"userId":"","shopName":"s","location":{"type":"Point","coordinates":[1,2]}}`, wantField: "userId"},
		{name: "numeric userId", payload: `{"userId":7,"shopName":"s","location":{"type":"Point","coordinates":[1,2]}}`, wantField: "userId"},
		{name: "numeric shopName", payload: `{"userId":"u","shopName":1,"location":{"type":"Point","coordinates":[1,2]}}`, wantField: "shopName"},
		{name: "missing location", payload: `{"userId":"u","shopName":"s"}`, wantField: "location"},
		{name: "location not object", payload: `{"userId":"u","shopName":"s","location":"here"}`, wantField: "location"},
		{name: "non-string type", payload: `{"userId":"u","shopName":"s","location":{"type":5,"coordinates":[1,2]}}`, wantField: "location.type"},
		{name: "empty type", payload: `{"userId":"u","shopName":"s","location":{"type":"","coordinates":[1,2]}}`, wantField: "location.type"},
		{name: "missing coordinates", payload: `{"userId":"u","shopName":"s","location":{"type":"Point"}}`, wantField: "location.coordinates"},
		{name: "single coordinate", payload: `{"userId":"u","shopName":"s","location":{"type":"Point","coordinates":[1]}}`, wantField: "location.coordinates"},
		{name: "three coordinates", payload: `{"userId":"u","shopName":"s","location":{"type":"Point","coordinates":[1,2,3]}}`, wantField: "location.coordinates"},
		{name: "string coordinate", payload: `{"userId":"u","shopName":"s","location":{"type":"Point","coordinates":["1",2]}}`, wantField: "location.coordinates[0]"},
		{name: "zero longitude", payload: `{"userId":"u","shopName":"s","location":{"type":"Point","coordinates":[0,41.01]}}`, wantField: "location.coordinates[0]"},
		{name: "zero latitude", payload: `{"userId":"u","shopName":"s","location":{"type":"Point","coordinates":[28.97,0]}}`, wantField: "location.coordinates[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, msg, err := DecodeLocationMessage([]byte(tt.payload))
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Nil(t, msg)

			if tt.malformed {
				assert.ErrorIs(t, err, types.ErrMalformedMessage)
				return
			}

			assert.ErrorIs(t, err, types.ErrInvalidMessage)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.wantField)
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"userId":   "must be a non-empty string",
		"location": "must be an object",
	}}
	assert.Equal(t,
		"location message failed validation: location: must be an object; userId: must be a non-empty string",
		err.Error())
}

func BenchmarkDecodeLocationMessage(b *testing.B) {
	data := []byte(`{"userId":"u1","shopName":"shop1","location":{"type":"Point","coordinates":[28.97,41.01]}}`)

	for b.Loop() {
		_, _, _ = DecodeLocationMessage(data)
	}
}
