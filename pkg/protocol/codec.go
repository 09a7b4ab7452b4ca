package protocol

import (
	"encoding/json"
	"fmt"
	"math"
)

// Encode serializes an outbound event to a single text frame. The payload
// must serialize to a JSON object; Encode produces that object with the
// "type" field set to t.
func Encode(t EventType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, ErrInvalidPayload
	}

	obj["type"] = string(t)

	frame, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return frame, nil
}

// Decode parses and validates an inbound frame.
//
// Errors are fail-closed and classify the failure: ErrParse for malformed
// JSON, ErrSchema for a frame that is not an object or is missing a string
// type, *UnknownEventError for an unrecognized type, and *ValidationError
// when any single field of a recognized event fails its shape check. A
// frame that fails validation is rejected as a whole.
func Decode(data []byte) (*Event, error) {
	obj, t, err := decodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	if !KnownInbound(t) {
		return nil, &UnknownEventError{Type: string(t)}
	}

	ev := &Event{Type: t}

	switch t {
	case EventWelcome, EventBye:
		// No payload.

	case EventError:
		msg, ok := reqString(obj, "message")
		if !ok {
			return nil, badField(t, "message", "a string")
		}
		ev.Error = &ServerError{Message: msg}

	case EventMessage:
		m, err := decodeMessage(t, obj)
		if err != nil {
			return nil, err
		}
		ev.Message = m

	case EventMessages:
		list, ok := obj["messages"].([]any)
		if !ok {
			return nil, badField(t, "messages", "an array")
		}
		batch := &Messages{Messages: make([]Message, 0, len(list))}
		for _, entry := range list {
			eobj, ok := entry.(map[string]any)
			if !ok {
				return nil, badField(t, "messages", "an array of objects")
			}
			m, err := decodeMessage(t, eobj)
			if err != nil {
				return nil, err
			}
			batch.Messages = append(batch.Messages, *m)
		}
		prepend, ok := optBool(obj, "prepend")
		if !ok {
			return nil, badField(t, "prepend", "a boolean")
		}
		batch.Prepend = prepend
		ev.Messages = batch

	case EventMessageUpdated:
		m, err := decodeMessage(t, obj)
		if err != nil {
			return nil, err
		}
		if m.Sender == nil {
			return nil, badField(t, "sender", "a string")
		}
		if m.ID == nil {
			return nil, badField(t, "id", "an integer")
		}
		ev.MessageUpdated = &MessageUpdated{
			Sender:     *m.Sender,
			ID:         *m.ID,
			Text:       m.Text,
			Attachment: m.Attachment,
			Timestamp:  m.Timestamp,
		}

	case EventMessageDeleted:
		sender, ok := reqString(obj, "sender")
		if !ok {
			return nil, badField(t, "sender", "a string")
		}
		id, ok := reqInt(obj, "id")
		if !ok {
			return nil, badField(t, "id", "an integer")
		}
		ev.MessageDeleted = &MessageDeleted{Sender: sender, ID: id}

	case EventAttachmentAdded:
		id, ok := reqString(obj, "id")
		if !ok {
			return nil, badField(t, "id", "a string")
		}
		ev.AttachmentAdded = &AttachmentAdded{ID: id}

	case EventAttachmentFetched:
		name, ok := optString(obj, "name")
		if !ok {
			return nil, badField(t, "name", "a string")
		}
		data, ok := optString(obj, "data")
		if !ok {
			return nil, badField(t, "data", "a string")
		}
		ev.AttachmentFetched = &AttachmentFetched{Name: name, Data: data}
	}

	return ev, nil
}

// decodeEnvelope parses the frame into an object and extracts its type.
func decodeEnvelope(data []byte) (map[string]any, EventType, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrParse, err)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, "", ErrSchema
	}

	tv, ok := obj["type"]
	if !ok {
		return nil, "", ErrSchema
	}
	ts, ok := tv.(string)
	if !ok {
		return nil, "", ErrSchema
	}

	return obj, EventType(ts), nil
}

// decodeMessage validates the Message field set shared by the message,
// messages, and message-updated events.
func decodeMessage(t EventType, obj map[string]any) (*Message, error) {
	sender, ok := optString(obj, "sender")
	if !ok {
		return nil, badField(t, "sender", "a string")
	}
	id, ok := optInt(obj, "id")
	if !ok {
		return nil, badField(t, "id", "an integer")
	}
	text, ok := reqString(obj, "text")
	if !ok {
		return nil, badField(t, "text", "a string")
	}
	attachment, ok := optString(obj, "attachment")
	if !ok {
		return nil, badField(t, "attachment", "a string")
	}
	ts, ok := reqString(obj, "timestamp")
	if !ok {
		return nil, badField(t, "timestamp", "a string")
	}

	return &Message{
		Sender:     sender,
		ID:         id,
		Text:       text,
		Attachment: attachment,
		Timestamp:  ts,
	}, nil
}

// reqString reads a mandatory string field.
func reqString(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	return s, ok
}

// optString reads an optional string field. Absent and JSON null both
// decode to nil; a present value of any other type fails.
func optString(obj map[string]any, key string) (*string, bool) {
	v, present := obj[key]
	if !present || v == nil {
		return nil, true
	}
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	return &s, true
}

// reqInt reads a mandatory integer field. JSON numbers with a fractional
// part are rejected.
func reqInt(obj map[string]any, key string) (int64, bool) {
	f, ok := obj[key].(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// optInt reads an optional integer field.
func optInt(obj map[string]any, key string) (*int64, bool) {
	v, present := obj[key]
	if !present || v == nil {
		return nil, true
	}
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return nil, false
	}
	n := int64(f)
	return &n, true
}

// optBool reads an optional boolean field; absent decodes to false.
func optBool(obj map[string]any, key string) (bool, bool) {
	v, present := obj[key]
	if !present || v == nil {
		return false, true
	}
	b, ok := v.(bool)
	if !ok {
		return false, false
	}
	return b, true
}
