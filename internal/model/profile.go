package model

// Profile is the signed-in user's account record.
type Profile struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
}

// DisplayName picks the best human-readable name the profile carries.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	}
	return ""
}
