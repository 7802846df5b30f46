package types

import "time"

// ApplicationStatus is the lifecycle state of an application.
type ApplicationStatus string

// Application states.
const (
	ApplicationPending   ApplicationStatus = "PENDING"
	ApplicationApproved  ApplicationStatus = "APPROVED"
	ApplicationRejected  ApplicationStatus = "REJECTED"
	ApplicationWithdrawn ApplicationStatus = "WITHDRAWN"
)

// IsFinal reports whether no further transition is possible.
func (s ApplicationStatus) IsFinal() bool {
	return s == ApplicationRejected || s == ApplicationWithdrawn
}

// Application is a request to join a project at a specific position.
type Application struct {
	ID                int64             `json:"id"`
	ProjectID         int64             `json:"projectId"`
	ProjectTitle      string            `json:"projectTitle,omitempty"`
	ApplicantUsername string            `json:"applicantUsername"`
	AppliedPosition   string            `json:"appliedPosition"`
	Message           string            `json:"message"`
	Status            ApplicationStatus `json:"status"`
	AppliedAt         time.Time         `json:"appliedAt"`
}

// ApplicationRequest is the body of a new application.
type ApplicationRequest struct {
	ProjectID       int64  `json:"projectId" validate:"required,gt=0"`
	AppliedPosition string `json:"appliedPosition" validate:"required"`
	Message         string `json:"message" validate:"max=500"`
}

// ApplicationUpdate changes the status of an application.
type ApplicationUpdate struct {
	Status ApplicationStatus `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED WITHDRAWN"`
}
