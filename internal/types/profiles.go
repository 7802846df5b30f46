package types

import "time"

// UserProfile is a "looking for a team" listing, separate from the account.
type UserProfile struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Intro         string    `json:"intro"`
	Bio           string    `json:"bio"`
	Skills        []string  `json:"skills"`
	Experience    string    `json:"experience,omitempty"`
	Location      string    `json:"location,omitempty"`
	Availability  string    `json:"availability,omitempty"`
	ContactMethod string    `json:"contactMethod,omitempty"`
	ContactValue  string    `json:"contactValue,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// ProfileRequest is the body of a create or update call for a profile.
type ProfileRequest struct {
	Intro         string   `json:"intro" validate:"required,max=200"`
	Bio           string   `json:"bio" validate:"required"`
	Skills        []string `json:"skills" validate:"max=15,dive,required"`
	Experience    string   `json:"experience,omitempty"`
	Location      string   `json:"location,omitempty"`
	Availability  string   `json:"availability,omitempty"`
	ContactMethod string   `json:"contactMethod,omitempty"`
	ContactValue  string   `json:"contactValue,omitempty"`
}
