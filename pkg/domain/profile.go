package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// Profile is the child profile owned by one mother account.
type Profile struct {
	ID              string   `json:"_id"`
	ChildName       string   `json:"childName"`
	ChildAge        int      `json:"childAge"`
	Gender          string   `json:"gender,omitempty"`
	Location        string   `json:"location,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	Interests       []string `json:"interests,omitempty"`
	Photos          []string `json:"photos,omitempty"`
	PreferredGender string   `json:"preferredGender,omitempty"`
	PreferredAgeMin int      `json:"preferredAgeMin,omitempty"`
	PreferredAgeMax int      `json:"preferredAgeMax,omitempty"`
	LookingFor      string   `json:"lookingFor,omitempty"`
	HasLiked        bool     `json:"hasLiked,omitempty"` // set by the listing endpoint, per viewer
}

// FirstPhoto returns the first photo URL or "".
func (p Profile) FirstPhoto() string {
	if len(p.Photos) == 0 {
		return ""
	}
	return p.Photos[0]
}

// ProfileFields is the writable subset of a profile sent on create and update.
type ProfileFields struct {
	ChildName       string   `json:"childName"`
	ChildAge        int      `json:"childAge"`
	Gender          string   `json:"gender,omitempty"`
	Location        string   `json:"location,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	Interests       []string `json:"interests,omitempty"`
	Photos          []string `json:"photos,omitempty"`
	PreferredGender string   `json:"preferredGender,omitempty"`
	PreferredAgeMin int      `json:"preferredAgeMin,omitempty"`
	PreferredAgeMax int      `json:"preferredAgeMax,omitempty"`
	LookingFor      string   `json:"lookingFor,omitempty"`
}

// Fields returns the writable fields of p, e.g. to pre-fill an edit form.
func (p Profile) Fields() ProfileFields {
	return ProfileFields{
		ChildName:       p.ChildName,
		ChildAge:        p.ChildAge,
		Gender:          p.Gender,
		Location:        p.Location,
		Bio:             p.Bio,
		Interests:       append([]string(nil), p.Interests...),
		Photos:          append([]string(nil), p.Photos...),
		PreferredGender: p.PreferredGender,
		PreferredAgeMin: p.PreferredAgeMin,
		PreferredAgeMax: p.PreferredAgeMax,
		LookingFor:      p.LookingFor,
	}
}

// ProfileFilters narrows the browse listing. Zero values impose no constraint;
// the server does the actual filtering.
type ProfileFilters struct {
	Gender    string
	AgeMin    int
	AgeMax    int
	Location  string
	Interests []string
}

// Empty reports whether no filter key is set.
func (f ProfileFilters) Empty() bool {
	return f.Gender == "" && f.AgeMin == 0 && f.AgeMax == 0 && f.Location == "" && len(f.Interests) == 0
}

// Query encodes the set keys as URL query parameters.
func (f ProfileFilters) Query() url.Values {
	params := url.Values{}
	if f.Gender != "" {
		params.Set("gender", f.Gender)
	}
	if f.AgeMin > 0 {
		params.Set("ageMin", strconv.Itoa(f.AgeMin))
	}
	if f.AgeMax > 0 {
		params.Set("ageMax", strconv.Itoa(f.AgeMax))
	}
	if f.Location != "" {
		params.Set("location", f.Location)
	}
	if len(f.Interests) > 0 {
		params.Set("interests", strings.Join(f.Interests, ","))
	}
	return params
}
