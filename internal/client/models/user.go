package models

type User struct {
	ID      ID     `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// AuthResponse is returned by login, admin login and refresh.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type VerifyResponse struct {
	Valid bool  `json:"valid"`
	User  *User `json:"user"`
}

type ConsentStatus struct {
	Consented bool `json:"consented"`
}

type ConsentUpdate struct {
	Consented   bool   `json:"consented"`
	ConsentText string `json:"consent_text"`
}
