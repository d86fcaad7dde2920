package types

// AuthenticatedUser is the session-resolved identity threaded through
// handlers and policy checks. Role is re-read from the store on every
// request, never cached across requests.
type AuthenticatedUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
