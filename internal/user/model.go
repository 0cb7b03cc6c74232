// File: internal/user/model.go
package user

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,min=2,max=255"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,max=255"`
	FirstName string `json:"firstName" binding:"omitempty,max=255"`
	LastName  string `json:"lastName" binding:"omitempty,max=255"`
}

// CreateUserResponse carries the id the identity provider assigned.
type CreateUserResponse struct {
	ID string `json:"id"`
}

// UserProfile is the enriched read model returned by GET /api/users/:id.
// Roles and Groups are never nil so they always serialize as arrays.
type UserProfile struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Roles     []string `json:"roles"`
	Groups    []string `json:"groups"`
}
