package state

import "fmt"

// Event is a one-shot notification from the composer. Events are not part
// of the snapshot; a subscriber that joins late does not see earlier ones.
type Event interface {
	Describe() string
	isEvent()
}

// EntrySaved is emitted after a draft was written. Updated is true when the
// draft edited an existing entry.
type EntrySaved struct {
	Updated bool
}

// Error is emitted when an intent could not be carried out.
type Error struct {
	Message string
}

// CustomTagCreated is emitted after a user tag was created and selected.
type CustomTagCreated struct {
	Label string
}

func (EntrySaved) isEvent()       {}
func (Error) isEvent()            {}
func (CustomTagCreated) isEvent() {}

// Describe returns a short summary of the event.
func (e EntrySaved) Describe() string {
	if e.Updated {
		return "entry updated"
	}
	return "entry saved"
}

// Describe returns a short summary of the event.
func (e Error) Describe() string {
	return fmt.Sprintf("error: %s", e.Message)
}

// Describe returns a short summary of the event.
func (e CustomTagCreated) Describe() string {
	return fmt.Sprintf("tag %q created", e.Label)
}
