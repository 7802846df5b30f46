package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/teammatch/internal/forms"
	"github.com/jonathan/teammatch/internal/schemas"
	"github.com/jonathan/teammatch/internal/types"
)

// listField accepts either a comma-separated string or a list of strings.
type listField string

func (l *listField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = listField(s)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.New("expected a string or a list of strings")
	}
	*l = listField(forms.JoinList(items))
	return nil
}

type postingDocument struct {
	Title         string           `json:"title"`
	Intro         string           `json:"intro"`
	Description   string           `json:"description"`
	Tags          listField        `json:"tags"`
	Deadline      string           `json:"deadline"`
	Positions     []types.Position `json:"positions"`
	WorkStyle     string           `json:"workStyle"`
	ContactMethod string           `json:"contactMethod"`
	ContactValue  string           `json:"contactValue"`
}

type profileDocument struct {
	Intro         string    `json:"intro"`
	Bio           string    `json:"bio"`
	Skills        listField `json:"skills"`
	Experience    string    `json:"experience"`
	Location      string    `json:"location"`
	Availability  string    `json:"availability"`
	ContactMethod string    `json:"contactMethod"`
	ContactValue  string    `json:"contactValue"`
}

// readPostingForm loads a posting document and checks it against the
// project posting schema.
func readPostingForm(path string) (forms.PostingForm, error) {
	data, err := schemas.ReadFile(schemas.ProjectPosting, path)
	if err != nil {
		return forms.PostingForm{}, err
	}
	var doc postingDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return forms.PostingForm{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return forms.PostingForm{
		Title:         doc.Title,
		Intro:         doc.Intro,
		Description:   doc.Description,
		Tags:          string(doc.Tags),
		Deadline:      doc.Deadline,
		Positions:     doc.Positions,
		WorkStyle:     doc.WorkStyle,
		ContactMethod: doc.ContactMethod,
		ContactValue:  doc.ContactValue,
	}, nil
}

// readProfileForm loads a profile document and checks it against the user
// profile schema.
func readProfileForm(path string) (forms.ProfileForm, error) {
	data, err := schemas.ReadFile(schemas.UserProfile, path)
	if err != nil {
		return forms.ProfileForm{}, err
	}
	var doc profileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return forms.ProfileForm{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return forms.ProfileForm{
		Intro:         doc.Intro,
		Bio:           doc.Bio,
		Skills:        string(doc.Skills),
		Experience:    doc.Experience,
		Location:      doc.Location,
		Availability:  doc.Availability,
		ContactMethod: doc.ContactMethod,
		ContactValue:  doc.ContactValue,
	}, nil
}
