package service

import (
	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/todo-api/internal/server"
)

// AuthService configures the Clerk SDK. Every Clerk call in the process
// (token verification, user lookups from jobs) uses the key set here.
type AuthService struct {
	server *server.Server
}

func NewAuthService(s *server.Server) *AuthService {
	clerk.SetKey(s.Config.Auth.SecretKey)
	return &AuthService{
		server: s,
	}
}
