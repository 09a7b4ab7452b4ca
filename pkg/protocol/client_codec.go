package protocol

// ClientEvent is a decoded client → server frame. Type is always a
// recognized outbound type and exactly one payload field matching it is
// non-nil.
type ClientEvent struct {
	Type EventType

	Join            *Join
	SendMessage     *SendMessage
	EditMessage     *EditMessage
	DeleteMessage   *DeleteMessage
	FetchAttachment *FetchAttachment
	AddAttachment   *AddAttachment
}

// KnownOutbound reports whether t is a recognized client → server event
// type.
func KnownOutbound(t EventType) bool {
	switch t {
	case EventJoin, EventSendMessage, EventEditMessage, EventDeleteMessage,
		EventFetchAttachment, EventAddAttachment:
		return true
	}
	return false
}

// DecodeClient parses and validates a client → server frame, with the
// same fail-closed error taxonomy as Decode.
func DecodeClient(data []byte) (*ClientEvent, error) {
	obj, t, err := decodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	if !KnownOutbound(t) {
		return nil, &UnknownEventError{Type: string(t)}
	}

	ev := &ClientEvent{Type: t}

	switch t {
	case EventJoin:
		nickname, ok := reqString(obj, "nickname")
		if !ok {
			return nil, badField(t, "nickname", "a string")
		}
		ev.Join = &Join{Nickname: nickname}

	case EventSendMessage:
		text, ok := reqString(obj, "text")
		if !ok {
			return nil, badField(t, "text", "a string")
		}
		attachment, ok := optString(obj, "attachment")
		if !ok {
			return nil, badField(t, "attachment", "a string")
		}
		ev.SendMessage = &SendMessage{Text: text, Attachment: attachment}

	case EventEditMessage:
		id, ok := reqInt(obj, "id")
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
		ev.EditMessage = &EditMessage{ID: id, Text: text, Attachment: attachment}

	case EventDeleteMessage:
		id, ok := reqInt(obj, "id")
		if !ok {
			return nil, badField(t, "id", "an integer")
		}
		ev.DeleteMessage = &DeleteMessage{ID: id}

	case EventFetchAttachment:
		id, ok := reqString(obj, "id")
		if !ok {
			return nil, badField(t, "id", "a string")
		}
		ev.FetchAttachment = &FetchAttachment{ID: id}

	case EventAddAttachment:
		name, ok := optString(obj, "name")
		if !ok {
			return nil, badField(t, "name", "a string")
		}
		dataStr, ok := reqString(obj, "data")
		if !ok {
			return nil, badField(t, "data", "a string")
		}
		ev.AddAttachment = &AddAttachment{Name: name, Data: dataStr}
	}

	return ev, nil
}
