package forms

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/teammatch/internal/types"
)

// MaxApplicationMessage is the cap on an application message, in characters.
const MaxApplicationMessage = 500

// ValidateDeadline rejects a deadline before today's local date. Today itself
// is allowed.
func ValidateDeadline(deadline types.Date, now time.Time) error {
	if deadline.IsZero() {
		return nil
	}
	if deadline.Before(types.NewDate(now.Local())) {
		return ErrDeadlinePassed
	}
	return nil
}

// PostingForm is the raw project posting input.
type PostingForm struct {
	Title         string
	Intro         string
	Description   string
	Tags          string
	Deadline      string
	Positions     []types.Position
	WorkStyle     string
	ContactMethod string
	ContactValue  string
}

// FromPosting fills the form from an existing posting for editing.
func FromPosting(p *types.ProjectPosting) PostingForm {
	return PostingForm{
		Title:         p.Title,
		Intro:         p.Intro,
		Description:   p.Description,
		Tags:          JoinList(p.Tags),
		Deadline:      p.Deadline.String(),
		Positions:     append([]types.Position(nil), p.Positions...),
		WorkStyle:     string(p.WorkStyle),
		ContactMethod: p.ContactMethod,
		ContactValue:  p.ContactValue,
	}
}

// ToRequest converts the form without validating it.
func (f PostingForm) ToRequest() types.PostingRequest {
	req := types.PostingRequest{
		Title:         strings.TrimSpace(f.Title),
		Intro:         strings.TrimSpace(f.Intro),
		Description:   strings.TrimSpace(f.Description),
		Tags:          ParseTags(f.Tags),
		Positions:     f.Positions,
		WorkStyle:     types.WorkStyle(strings.ToUpper(strings.TrimSpace(f.WorkStyle))),
		ContactMethod: strings.TrimSpace(f.ContactMethod),
		ContactValue:  strings.TrimSpace(f.ContactValue),
	}
	if d, err := types.ParseDate(strings.TrimSpace(f.Deadline)); err == nil {
		req.Deadline = d
	}
	return req
}

// Validate checks the form against now and returns the request to submit.
// Nothing should be sent when the error is non-nil.
func (f PostingForm) Validate(now time.Time) (types.PostingRequest, error) {
	var errs Errors
	req := f.ToRequest()

	switch d := strings.TrimSpace(f.Deadline); {
	case d == "":
		errs.add("deadline", "is required")
	case req.Deadline.IsZero():
		errs.add("deadline", "must be a date in YYYY-MM-DD form")
	default:
		if err := ValidateDeadline(req.Deadline, now); err != nil {
			errs.add("deadline", err.Error())
		}
	}
	check(req, &errs)

	return req, errs.Err()
}

// ProfileForm is the raw user profile input.
type ProfileForm struct {
	Intro         string
	Bio           string
	Skills        string
	Experience    string
	Location      string
	Availability  string
	ContactMethod string
	ContactValue  string
}

// ToRequest converts the form without validating it.
func (f ProfileForm) ToRequest() types.ProfileRequest {
	return types.ProfileRequest{
		Intro:         strings.TrimSpace(f.Intro),
		Bio:           strings.TrimSpace(f.Bio),
		Skills:        ParseSkills(f.Skills),
		Experience:    strings.TrimSpace(f.Experience),
		Location:      strings.TrimSpace(f.Location),
		Availability:  strings.TrimSpace(f.Availability),
		ContactMethod: strings.TrimSpace(f.ContactMethod),
		ContactValue:  strings.TrimSpace(f.ContactValue),
	}
}

// Validate returns the request to submit, or the field problems.
func (f ProfileForm) Validate() (types.ProfileRequest, error) {
	var errs Errors
	req := f.ToRequest()
	check(req, &errs)
	return req, errs.Err()
}

// ApplicationForm is the raw application input.
type ApplicationForm struct {
	ProjectID int64
	Position  string
	Message   string
}

// Validate returns the request to submit, or the field problems. The
// message limit counts characters, not bytes.
func (f ApplicationForm) Validate() (types.ApplicationRequest, error) {
	var errs Errors
	req := types.ApplicationRequest{
		ProjectID:       f.ProjectID,
		AppliedPosition: strings.TrimSpace(f.Position),
		Message:         strings.TrimSpace(f.Message),
	}
	if utf8.RuneCountInString(req.Message) > MaxApplicationMessage {
		errs.add("message", "must be at most 500 characters")
	}
	if req.ProjectID <= 0 {
		errs.add("projectId", "is required")
	}
	if req.AppliedPosition == "" {
		errs.add("appliedPosition", "is required")
	}
	return req, errs.Err()
}

// CheckDuplicateApplication fails when apps already hold a live application
// for the same project and position. Rejected and withdrawn ones do not count.
func CheckDuplicateApplication(apps []types.Application, projectID int64, position string) error {
	for _, a := range apps {
		if a.ProjectID == projectID && a.AppliedPosition == position && !a.Status.IsFinal() {
			return ErrDuplicateApplication
		}
	}
	return nil
}

// CheckPosition fails when the posting does not recruit position.
func CheckPosition(p *types.ProjectPosting, position string) error {
	if p.HasPosition(position) {
		return nil
	}
	return Errors{{Field: "appliedPosition", Message: "is not recruited by this project"}}
}

// CheckProfileUnique fails when the user already has a profile.
func CheckProfileUnique(existing *types.UserProfile) error {
	if existing != nil {
		return ErrProfileExists
	}
	return nil
}
