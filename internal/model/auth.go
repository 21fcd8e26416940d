package model

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are JWT claims for admin authentication
type AdminClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// RegisterRequest is the request body for admin registration
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned after register or login
type TokenResponse struct {
	Token string `json:"token"`
}
