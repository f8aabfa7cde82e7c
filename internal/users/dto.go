package users

import (
	"time"

	"github.com/dexxrat/gamestore-backend/pkg/db/models"
	"github.com/google/uuid"
)

// UpdateInput carries the admin/self update payload. Password is only
// re-hashed when non-empty; Roles only reassigned when non-nil.
type UpdateInput struct {
	Username string
	Email    string
	Password string
	Roles    []string
	IsActive *bool
}

// Response is the user representation returned to clients. The password hash
// never leaves the service layer.
type Response struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// List wraps the paginated user listing plus the next page cursor.
type List struct {
	Users      []Response `json:"users"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ToResponse maps a model onto its API representation.
func ToResponse(user *models.User) *Response {
	resp := &Response{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		IsActive:  user.IsActive,
		Roles:     make([]string, 0, len(user.Roles)),
		CreatedAt: user.CreatedAt,
	}
	for _, role := range user.Roles {
		resp.Roles = append(resp.Roles, role.Name.String())
	}
	return resp
}
