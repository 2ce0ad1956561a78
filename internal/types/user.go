package types

// UserResponse is the public shape of a user. The password hash and reset
// token fields never leave the server.
type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
