package auth

// RegisterDTO is the request body for POST /auth/register.
type RegisterDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

// LoginDTO is the request body for POST /auth/login.
type LoginDTO struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// profileResponse is returned by GET /auth/me.
type profileResponse struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	IsAdmin            bool   `json:"is_admin"`
	SubscriptionStatus string `json:"subscription_status"`
}
