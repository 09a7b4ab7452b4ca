package client

// EditSession tracks at most one in-progress edit of a previously sent
// message. Starting an edit backs up the composer's contents; the backup
// is restored on cancel and discarded on commit. Edits do not nest: a
// second Begin implicitly cancels the first, so the backup always
// describes the composer as it was before any editing started.
type EditSession struct {
	activeID         *int64
	backupText       string
	backupAttachment *string
}

// Active reports whether an edit is in progress.
func (e *EditSession) Active() bool { return e.activeID != nil }

// ActiveID returns the id of the message being edited.
func (e *EditSession) ActiveID() (int64, bool) {
	if e.activeID == nil {
		return 0, false
	}
	return *e.activeID, true
}

// begin records the edit target and backs up the composer state current
// at that moment.
func (e *EditSession) begin(id int64, draftText string, pendingAttachment *string) {
	e.activeID = &id
	e.backupText = draftText
	e.backupAttachment = pendingAttachment
}

// cancel returns the backed-up composer state and resets the session.
func (e *EditSession) cancel() (draftText string, pendingAttachment *string) {
	draftText = e.backupText
	pendingAttachment = e.backupAttachment
	e.reset()
	return draftText, pendingAttachment
}

// reset clears the session without touching the backup destination. Used
// on commit, where the backup is deliberately discarded, and on teardown.
func (e *EditSession) reset() {
	e.activeID = nil
	e.backupText = ""
	e.backupAttachment = nil
}
