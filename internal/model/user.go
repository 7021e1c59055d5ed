package model

import "encoding/json"

// User is the profile returned by /me and /login.
type User struct {
	ID                FlexID `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	PhoneNumber       string `json:"phone_number"`
	Role              string `json:"role"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	Token             string `json:"token,omitempty"`
}

// FlexID accepts both numeric and string identifiers.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }
