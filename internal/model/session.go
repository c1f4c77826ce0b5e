package model

// Session is what a visitor holds after logging in. Token and User are
// written together but read independently, so either may be missing.
type Session struct {
	Token string
	User  *User
}

func (s Session) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}
