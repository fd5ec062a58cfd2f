package services

import (
	"collab-lab/auth"
	"collab-lab/errors"
	"collab-lab/repositories"
	"fmt"
	"sync"
)

type IAuthService interface {
	Register(email, password string) (Token, error)
	Login(email, password string) (Token, error)
	Logout(token Token)
	CurrentUser(token Token) (repositories.User, error)
}

type Token string

// AuthService backs the register/login/logout/current-user surface.
// The collaboration core never depends on it: accounts and live
// sessions are unrelated by design.
type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         *auth.TokenIssuer

	mu      sync.RWMutex
	revoked map[Token]struct{}
}

func NewAuthService(repo repositories.IUserRepository, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{
		userRepository: repo,
		tokens:         tokens,
		revoked:        make(map[Token]struct{}),
	}
}

func (s *AuthService) Register(email, password string) (Token, error) {
	valReq := auth.RegisterRequest{
		Email:    email,
		Password: password,
	}

	// Validate business rules before any expensive cryptographic work.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// Hashing happens here so the repository never sees plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	userID, err := s.userRepository.CreateUser(email, hashedPassword)
	if err != nil {
		return "", err // Propagates ErrUserAlreadyExists when the email is taken
	}

	token, err := s.tokens.Generate(userID, []string{"user"})
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

func (s *AuthService) Login(email, password string) (Token, error) {
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Roles)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

// Logout revokes the token for the rest of the process lifetime.
func (s *AuthService) Logout(token Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = struct{}{}
}

// CurrentUser resolves a live token back to its account record.
func (s *AuthService) CurrentUser(token Token) (repositories.User, error) {
	s.mu.RLock()
	_, isRevoked := s.revoked[token]
	s.mu.RUnlock()
	if isRevoked {
		return repositories.User{}, errors.ErrTokenRevoked
	}

	claims, err := s.tokens.Validate(string(token))
	if err != nil {
		return repositories.User{}, errors.ErrInvalidCredentials
	}

	return s.userRepository.GetUserByID(claims.UserID)
}
