package models

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/Temutjin2k/location-relay/internal/domain/types"
	"github.com/Temutjin2k/location-relay/pkg/validator"
)

// Point is a typed coordinate pair: [longitude, latitude].
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

func (p Point) Longitude() float64 { return p.Coordinates[0] }
func (p Point) Latitude() float64  { return p.Coordinates[1] }

// LocationMessage is the payload couriers and staff of one shop exchange through the relay.
type LocationMessage struct {
	UserID   string `json:"userId"`
	ShopName string `json:"shopName"`
	Location Point  `json:"location"`
}

// DecodeLocationMessage parses and validates a raw frame and returns the payload to fan
// out: the frame itself with insignificant whitespace removed, so key order and unknown
// fields reach recipients exactly as the sender wrote them. A coordinate equal to 0 is
// rejected like a missing one.
func DecodeLocationMessage(data []byte) ([]byte, *LocationMessage, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", types.ErrMalformedMessage, err)
	}
	if raw == nil {
		return nil, nil, fmt.Errorf("%w: payload must be a JSON object", types.ErrMalformedMessage)
	}

	v := validator.New()
	msg := ValidateLocationMessage(v, raw)
	if !v.Valid() {
		return nil, nil, &ValidationError{Fields: v.Errors}
	}

	var payload bytes.Buffer
	payload.Grow(len(data))
	if err := json.Compact(&payload, data); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", types.ErrMalformedMessage, err)
	}

	return payload.Bytes(), msg, nil
}

// ValidateLocationMessage checks raw against the location message shape and records
// every violation in v. The typed message is only meaningful when v is valid.
func ValidateLocationMessage(v *validator.Validator, raw map[string]any) *LocationMessage {
	msg := &LocationMessage{}

	v.Check(validator.NonEmptyString(raw["userId"]), "userId", "must be a non-empty string")
	v.Check(validator.NonEmptyString(raw["shopName"]), "shopName", "must be a non-empty string")
	msg.UserID, _ = raw["userId"].(string)
	msg.ShopName, _ = raw["shopName"].(string)

	location, ok := raw["location"].(map[string]any)
	if !ok {
		v.AddError("location", "must be an object")
		return msg
	}

	v.Check(validator.NonEmptyString(location["type"]), "location.type", "must be a non-empty string")
	msg.Location.Type, _ = location["type"].(string)

	coords, ok := location["coordinates"].([]any)
	if !ok || len(coords) != 2 {
		v.AddError("location.coordinates", "must be a [longitude, latitude] pair")
		return msg
	}

	v.Check(validator.NonZeroNumber(coords[0]), "location.coordinates[0]", "longitude must be a non-zero number")
	v.Check(validator.NonZeroNumber(coords[1]), "location.coordinates[1]", "latitude must be a non-zero number")
	msg.Location.Coordinates[0], _ = coords[0].(float64)
	msg.Location.Coordinates[1], _ = coords[1].(float64)

	return msg
}

// ValidationError lists the fields of a location message that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", types.ErrInvalidMessage, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return types.ErrInvalidMessage
}
