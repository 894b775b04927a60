package domain

// SignupRequest is the request body for POST /api/signup
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for POST /api/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse mirrors the shape the frontend expects: entity fields are
// empty strings until onboarding completes. Token is a locally signed JWT.
type LoginResponse struct {
	Status     string `json:"status"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	EntityLogo string `json:"entity_logo"`
	Token      string `json:"token,omitempty"`
}

// SessionTokenRequest is the request body for POST /api/token. It mints a
// remote ledger session token for the entity linked to the given email.
type SessionTokenRequest struct {
	Email string `json:"email"`
}

// SessionTokenResponse carries the remote-issued token.
type SessionTokenResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}
