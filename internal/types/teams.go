package types

import "time"

// MemberRole is a member's role inside a team.
type MemberRole string

// Team roles. The manager is the team leader.
const (
	MemberManager MemberRole = "MANAGER"
	MemberRegular MemberRole = "MEMBER"
)

// TeamMember is one seat in a team.
type TeamMember struct {
	ID       int64      `json:"id"`
	Username string     `json:"username"`
	Role     MemberRole `json:"role"`
	Position string     `json:"position,omitempty"`
	JoinedAt time.Time  `json:"joinedAt"`
}

// Team is formed from approved applications.
type Team struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	ProjectID      int64        `json:"projectId"`
	MaxMembers     int          `json:"maxMembers"`
	Members        []TeamMember `json:"members"`
	ProjectStarted bool         `json:"projectStarted"`
}

// Leader returns the manager of the team, or nil when it has none.
func (t *Team) Leader() *TeamMember {
	for i := range t.Members {
		if t.Members[i].Role == MemberManager {
			return &t.Members[i]
		}
	}
	return nil
}

// IsFull reports whether the team reached its member cap.
func (t *Team) IsFull() bool {
	return t.MaxMembers > 0 && len(t.Members) >= t.MaxMembers
}

// Member returns the member with the given username, or nil.
func (t *Team) Member(username string) *TeamMember {
	for i := range t.Members {
		if t.Members[i].Username == username {
			return &t.Members[i]
		}
	}
	return nil
}

// TeamRequest creates or renames a team.
type TeamRequest struct {
	Name       string `json:"name" validate:"required,max=50"`
	ProjectID  int64  `json:"projectId,omitempty"`
	MaxMembers int    `json:"maxMembers,omitempty" validate:"omitempty,min=1,max=50"`
}

// StartReadiness is the server-computed check that gates starting a project.
type StartReadiness struct {
	Ready    bool       `json:"ready"`
	Filled   int        `json:"filled"`
	Required int        `json:"required"`
	Missing  []Position `json:"missing,omitempty"`
}

// InvitationStatus is the lifecycle state of a team invitation.
type InvitationStatus string

// Invitation states.
const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationDeclined InvitationStatus = "DECLINED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

// TeamInvitation is an invite sent to a candidate.
type TeamInvitation struct {
	ID              int64            `json:"id"`
	TeamID          int64            `json:"teamId"`
	TeamName        string           `json:"teamName,omitempty"`
	InviterUsername string           `json:"inviterUsername"`
	InviteeUsername string           `json:"inviteeUsername"`
	Position        string           `json:"position,omitempty"`
	Message         string           `json:"message,omitempty"`
	Status          InvitationStatus `json:"status"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// InviteRequest sends an invitation.
type InviteRequest struct {
	InviteeUsername string `json:"inviteeUsername" validate:"required"`
	Position        string `json:"position,omitempty"`
	Message         string `json:"message,omitempty" validate:"max=500"`
}

// RespondRequest accepts or declines an invitation or leave request.
type RespondRequest struct {
	Accept bool `json:"accept"`
}

// LeaveStatus is the lifecycle state of a leave request.
type LeaveStatus string

// Leave request states.
const (
	LeavePending  LeaveStatus = "PENDING"
	LeaveApproved LeaveStatus = "APPROVED"
	LeaveRejected LeaveStatus = "REJECTED"
)

// LeaveRequest is a member asking to leave a team.
type LeaveRequest struct {
	ID        int64       `json:"id"`
	TeamID    int64       `json:"teamId"`
	Username  string      `json:"username"`
	Reason    string      `json:"reason"`
	Status    LeaveStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

// LeaveRequestBody opens a leave request.
type LeaveRequestBody struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
