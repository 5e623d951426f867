package domain

import "time"

// Review event types pushed to connected reviewers
const (
	EventPagePending       = "page.pending"
	EventPagePublished     = "page.published"
	EventPageRejected      = "page.rejected"
	EventEditSubmitted     = "edit.submitted"
	EventEditApproved      = "edit.approved"
	EventEditRejected      = "edit.rejected"
	EventInvitationCreated = "invitation.created"
)

// ReviewEvent is a workflow notification. Admins receive every event;
// RecipientID additionally routes it to one non-admin user.
type ReviewEvent struct {
	Type        string      `json:"type"`
	Slug        string      `json:"slug,omitempty"`
	EditID      uint64      `json:"edit_id,omitempty"`
	ActorID     uint64      `json:"actor_id,omitempty"`
	RecipientID uint64      `json:"recipient_id,omitempty"`
	Data        interface{} `json:"data,omitempty"`
	At          time.Time   `json:"at"`
}
