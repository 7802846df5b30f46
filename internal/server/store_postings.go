package server

import (
	"slices"
	"strings"

	"github.com/jonathan/teammatch/internal/types"
)

// Postings lists postings. tag matches a tag exactly (case-insensitive);
// query matches title or intro.
func (s *Store) Postings(tag, query string) []types.ProjectPosting {
	s.mu.Lock()
	defer s.mu.Unlock()
	query = strings.ToLower(strings.TrimSpace(query))
	return values(s.postings, func(p *types.ProjectPosting) bool {
		if tag != "" && !slices.ContainsFunc(p.Tags, func(t string) bool { return strings.EqualFold(t, tag) }) {
			return false
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Title), query) &&
			!strings.Contains(strings.ToLower(p.Intro), query) {
			return false
		}
		return true
	})
}

// Posting returns one posting.
func (s *Store) Posting(id int64) (*types.ProjectPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.posting(id)
	if err != nil {
		return nil, err
	}
	return copyOf(p), nil
}

func (s *Store) posting(id int64) (*types.ProjectPosting, error) {
	p, ok := s.postings[id]
	if !ok {
		return nil, &ErrNotFound{Resource: "project posting", ID: id}
	}
	return p, nil
}

// CreatePosting publishes a posting owned by owner.
func (s *Store) CreatePosting(owner string, req types.PostingRequest) (*types.ProjectPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Deadline.Before(types.NewDate(s.now())) {
		return nil, &ErrValidation{Field: "deadline", Message: "must not be in the past"}
	}
	p := &types.ProjectPosting{ID: s.nextID("posting"), Username: owner, CreatedAt: s.now()}
	applyPosting(p, req)
	s.postings[p.ID] = p
	return copyOf(p), nil
}

func applyPosting(p *types.ProjectPosting, req types.PostingRequest) {
	p.Title = req.Title
	p.Intro = req.Intro
	p.Description = req.Description
	p.Tags = slices.Clone(req.Tags)
	p.Deadline = req.Deadline
	p.Positions = slices.Clone(req.Positions)
	p.WorkStyle = req.WorkStyle
	p.ContactMethod = req.ContactMethod
	p.ContactValue = req.ContactValue
}

// UpdatePosting replaces a posting. Only its owner may.
func (s *Store) UpdatePosting(actor string, id int64, req types.PostingRequest) (*types.ProjectPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.posting(id)
	if err != nil {
		return nil, err
	}
	if p.Username != actor {
		return nil, &ErrForbidden{Action: "edit this project"}
	}
	applyPosting(p, req)
	return copyOf(p), nil
}

// DeletePosting removes a posting and its applications. Only its owner may.
func (s *Store) DeletePosting(actor string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.posting(id)
	if err != nil {
		return err
	}
	if p.Username != actor {
		return &ErrForbidden{Action: "delete this project"}
	}
	delete(s.postings, id)
	for appID, a := range s.applications {
		if a.ProjectID == id {
			delete(s.applications, appID)
		}
	}
	return nil
}

// Profiles lists every profile.
func (s *Store) Profiles() []types.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return values(s.profiles, nil)
}

// Profile returns one profile.
func (s *Store) Profile(id int64) (*types.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, &ErrNotFound{Resource: "profile", ID: id}
	}
	return copyOf(p), nil
}

// CreateProfile publishes owner's profile. Each user has at most one.
func (s *Store) CreateProfile(owner string, req types.ProfileRequest) (*types.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.Username == owner {
			return nil, &ErrConflict{Message: "profile already exists"}
		}
	}
	p := &types.UserProfile{ID: s.nextID("profile"), Username: owner, CreatedAt: s.now()}
	applyProfile(p, req)
	s.profiles[p.ID] = p
	return copyOf(p), nil
}

func applyProfile(p *types.UserProfile, req types.ProfileRequest) {
	p.Intro = req.Intro
	p.Bio = req.Bio
	p.Skills = slices.Clone(req.Skills)
	p.Experience = req.Experience
	p.Location = req.Location
	p.Availability = req.Availability
	p.ContactMethod = req.ContactMethod
	p.ContactValue = req.ContactValue
}

// UpdateProfile replaces a profile. Only its owner may.
func (s *Store) UpdateProfile(actor string, id int64, req types.ProfileRequest) (*types.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, &ErrNotFound{Resource: "profile", ID: id}
	}
	if p.Username != actor {
		return nil, &ErrForbidden{Action: "edit this profile"}
	}
	applyProfile(p, req)
	return copyOf(p), nil
}

// DeleteProfile removes a profile. Only its owner may.
func (s *Store) DeleteProfile(actor string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return &ErrNotFound{Resource: "profile", ID: id}
	}
	if p.Username != actor {
		return &ErrForbidden{Action: "delete this profile"}
	}
	delete(s.profiles, id)
	return nil
}

// Applications lists the applications actor filed or received.
func (s *Store) Applications(actor string) []types.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	return values(s.applications, func(a *types.Application) bool {
		return a.ApplicantUsername == actor || s.postingOwner(a.ProjectID) == actor
	})
}

// Application returns one application. Only the applicant and the posting
// owner may see it.
func (s *Store) Application(actor string, id int64) (*types.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, &ErrNotFound{Resource: "application", ID: id}
	}
	if a.ApplicantUsername != actor && s.postingOwner(a.ProjectID) != actor {
		return nil, &ErrForbidden{Action: "view this application"}
	}
	return copyOf(a), nil
}

func (s *Store) postingOwner(id int64) string {
	if p, ok := s.postings[id]; ok {
		return p.Username
	}
	return ""
}

// ApplicationsFor lists a posting's applications for its owner.
func (s *Store) ApplicationsFor(actor string, postingID int64) ([]types.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.posting(postingID)
	if err != nil {
		return nil, err
	}
	if p.Username != actor {
		return nil, &ErrForbidden{Action: "review applicants of this project"}
	}
	return values(s.applications, func(a *types.Application) bool { return a.ProjectID == postingID }), nil
}

// ApplicationsOf lists username's applications.
func (s *Store) ApplicationsOf(username string) []types.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	return values(s.applications, func(a *types.Application) bool { return a.ApplicantUsername == username })
}

// Apply files an application. A user holds at most one live application per
// project and position.
func (s *Store) Apply(actor string, req types.ApplicationRequest) (*types.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.posting(req.ProjectID)
	if err != nil {
		return nil, err
	}
	if p.Username == actor {
		return nil, &ErrConflict{Message: "cannot apply to your own project"}
	}
	if !p.HasPosition(req.AppliedPosition) {
		return nil, &ErrValidation{Field: "appliedPosition", Message: "not a position of this project"}
	}
	for _, a := range s.applications {
		if a.ApplicantUsername == actor && a.ProjectID == req.ProjectID &&
			a.AppliedPosition == req.AppliedPosition && !a.Status.IsFinal() {
			return nil, &ErrConflict{Message: "already applied for this position"}
		}
	}
	a := &types.Application{
		ID:                s.nextID("application"),
		ProjectID:         p.ID,
		ProjectTitle:      p.Title,
		ApplicantUsername: actor,
		AppliedPosition:   req.AppliedPosition,
		Message:           req.Message,
		Status:            types.ApplicationPending,
		AppliedAt:         s.now(),
	}
	s.applications[a.ID] = a
	return copyOf(a), nil
}

// SetApplicationStatus moves an application. The posting owner approves or
// rejects a pending application; the applicant withdraws one that is not
// final. Approval seats the applicant in the posting's team.
func (s *Store) SetApplicationStatus(actor string, id int64, status types.ApplicationStatus) (*types.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, &ErrNotFound{Resource: "application", ID: id}
	}

	switch status {
	case types.ApplicationApproved, types.ApplicationRejected:
		if s.postingOwner(a.ProjectID) != actor {
			return nil, &ErrForbidden{Action: "decide on this application"}
		}
		if a.Status != types.ApplicationPending {
			return nil, &ErrConflict{Message: "application is no longer pending"}
		}
		if status == types.ApplicationApproved {
			if err := s.seatApplicant(a); err != nil {
				return nil, err
			}
		}
	case types.ApplicationWithdrawn:
		if a.ApplicantUsername != actor {
			return nil, &ErrForbidden{Action: "withdraw this application"}
		}
		if a.Status.IsFinal() {
			return nil, &ErrConflict{Message: "application is already closed"}
		}
		if a.Status == types.ApplicationApproved {
			s.unseat(a.ProjectID, actor)
		}
	default:
		return nil, &ErrValidation{Field: "status", Message: "unsupported transition"}
	}
	a.Status = status
	return copyOf(a), nil
}

// DeleteApplication removes a pending application. Only the applicant may.
func (s *Store) DeleteApplication(actor string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	if !ok {
		return &ErrNotFound{Resource: "application", ID: id}
	}
	if a.ApplicantUsername != actor {
		return &ErrForbidden{Action: "delete this application"}
	}
	if a.Status == types.ApplicationApproved {
		return &ErrConflict{Message: "approved applications must be withdrawn"}
	}
	delete(s.applications, id)
	return nil
}
