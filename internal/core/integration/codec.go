package integration

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ContentType of every encoded event.
const ContentType = "application/json"

// ErrMalformedPayload is wrapped by Decode when the body is not valid JSON for
// the target event or a required field is missing.
var ErrMalformedPayload = errors.New("malformed integration event payload")

var validate = validator.New()

// Encode serializes the concrete event with all of its fields.
func Encode(event Event) ([]byte, error) {
	if event == nil {
		return nil, errors.New("encode integration event: event is nil")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event.TypeTag(), err)
	}
	return body, nil
}

// Decode deserializes body into the event type T and checks its required fields.
//
// Example:
//
//	shipped, err := integration.Decode[integration.OrderShipped](msg.Body)
//	if errors.Is(err, integration.ErrMalformedPayload) {
//	    // dead-letter
//	}
func Decode[T Event](body []byte) (T, error) {
	var event T

	if err := json.Unmarshal(body, &event); err != nil {
		return event, fmt.Errorf("%w: %s: %w", ErrMalformedPayload, event.TypeTag(), err)
	}

	if err := validate.Struct(event); err != nil {
		return event, fmt.Errorf("%w: %s: %w", ErrMalformedPayload, event.TypeTag(), err)
	}

	return event, nil
}

// TypeTagOf returns the wire type tag of the event type T.
func TypeTagOf[T Event]() string {
	var zero T
	return zero.TypeTag()
}
