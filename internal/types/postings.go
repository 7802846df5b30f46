package types

import "time"

// WorkStyle describes where a project team works.
type WorkStyle string

// Work styles.
const (
	WorkOnline  WorkStyle = "ONLINE"
	WorkOffline WorkStyle = "OFFLINE"
	WorkHybrid  WorkStyle = "HYBRID"
)

// Position is one recruited role and how many people it needs.
type Position struct {
	Role      string `json:"role" validate:"required,max=50"`
	Headcount int    `json:"headcount" validate:"min=1,max=20"`
}

// ProjectPosting is a recruitment listing.
type ProjectPosting struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Intro         string     `json:"intro"`
	Description   string     `json:"description"`
	Tags          []string   `json:"tags"`
	Deadline      Date       `json:"deadline"`
	Positions     []Position `json:"positions"`
	WorkStyle     WorkStyle  `json:"workStyle"`
	ContactMethod string     `json:"contactMethod,omitempty"`
	ContactValue  string     `json:"contactValue,omitempty"`
	Username      string     `json:"username"`
	CreatedAt     time.Time  `json:"createdAt,omitempty"`
}

// TotalHeadcount sums the headcount of all positions.
func (p *ProjectPosting) TotalHeadcount() int {
	total := 0
	for _, pos := range p.Positions {
		total += pos.Headcount
	}
	return total
}

// HasPosition reports whether role is one of the recruited positions.
func (p *ProjectPosting) HasPosition(role string) bool {
	for _, pos := range p.Positions {
		if pos.Role == role {
			return true
		}
	}
	return false
}

// PostingRequest is the body of a create or update call for a posting.
type PostingRequest struct {
	Title         string     `json:"title" validate:"required,max=100"`
	Intro         string     `json:"intro" validate:"required,max=200"`
	Description   string     `json:"description" validate:"required"`
	Tags          []string   `json:"tags" validate:"max=12,dive,required"`
	Deadline      Date       `json:"deadline"`
	Positions     []Position `json:"positions" validate:"required,min=1,dive"`
	WorkStyle     WorkStyle  `json:"workStyle" validate:"required,oneof=ONLINE OFFLINE HYBRID"`
	ContactMethod string     `json:"contactMethod,omitempty"`
	ContactValue  string     `json:"contactValue,omitempty"`
}

// PostingFilter narrows a posting listing.
type PostingFilter struct {
	Tag    string
	Search string
}
