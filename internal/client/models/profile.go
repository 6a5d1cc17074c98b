package models

// UserProfile holds locally known participant details. It is persisted
// independently from the Session: the email is written at sign-up time and
// name/birthdate at consent-save time, so either may be filled in first.
type UserProfile struct {
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	BirthDate string `json:"birthdate,omitempty"`
}
