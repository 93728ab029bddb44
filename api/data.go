package main

import "time"

const (
	roleUser  = "USER"
	roleAdmin = "ADMIN"
)

type user struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Role         string    `json:"role"`
}

type task struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	OwnerID   int64     `json:"owner_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
}

// authResponse is the public view of a user. The password hash never
// leaves the server.
type authResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func publicView(u *user) authResponse {
	return authResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

type dashboardResponse struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	Total     int64  `json:"total"`
	Pending   int64  `json:"pending"`
	Completed int64  `json:"completed"`
}
