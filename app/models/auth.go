package models

import (
	"time"
)

type RegisterRequest struct {
	Email       string `json:"email" yaml:"email"`
	Password    string `json:"password" yaml:"password"`
	UserName    string `json:"userName" yaml:"userName"`
	DisplayName string `json:"displayName" yaml:"displayName"`
}

type LoginRequest struct {
	EmailOrUserName string `json:"emailOrUserName"`
	Password        string `json:"password"`
}

type AuthenticatedUserDTO struct {
	ID          string   `json:"id"`
	UserName    string   `json:"userName"`
	Email       string   `json:"email"`
	DisplayName *string  `json:"displayName"`
	Roles       []string `json:"roles"`
}

type AuthResponse struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expiresAt"`
	User      AuthenticatedUserDTO `json:"user"`
}
