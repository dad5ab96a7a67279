package model

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is the verified caller identity handed over by the auth layer.
type Principal struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
