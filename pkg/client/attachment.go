package client

// AttachmentChange reports a transition of the pending attachment slot.
// It is handed to the Renderer so attach/unattach affordances follow the
// state explicitly instead of through property side effects.
type AttachmentChange struct {
	// Previous is the reference that was pending before the change, nil
	// if none.
	Previous *string

	// Pending is the reference now pending, nil if the slot is empty.
	Pending *string
}

// AttachmentSession tracks at most one server-confirmed attachment
// reference awaiting inclusion in the next sent or edited message.
type AttachmentSession struct {
	pending *string
}

// Pending returns the pending reference, nil if the slot is empty.
func (a *AttachmentSession) Pending() *string { return a.pending }

// Set replaces the pending reference. A reference already pending is
// discarded without a dedicated release event; the server garbage
// collects unclaimed uploads.
func (a *AttachmentSession) Set(id string) AttachmentChange {
	prev := a.pending
	a.pending = &id
	return AttachmentChange{Previous: prev, Pending: a.pending}
}

// Replace sets the slot from an optional reference, as when an edit loads
// the target message's attachment.
func (a *AttachmentSession) Replace(id *string) AttachmentChange {
	prev := a.pending
	a.pending = id
	return AttachmentChange{Previous: prev, Pending: a.pending}
}

// Clear empties the slot.
func (a *AttachmentSession) Clear() AttachmentChange {
	prev := a.pending
	a.pending = nil
	return AttachmentChange{Previous: prev}
}
