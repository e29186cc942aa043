package identity

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/railtransit/reservation-engine/internal/models"
	"github.com/railtransit/reservation-engine/pkg/token"
)

var (
	// ErrInvalidCredentials indicates an unknown username or wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateUsername indicates the username is already registered
	ErrDuplicateUsername = errors.New("username already registered")
)

// Actor is an authenticated caller of engine operations. The engine's
// invariants never depend on identity; this service only gates who may call.
type Actor struct {
	Username string
	Role     models.ActorRole
}

// Service checks actor credentials against bcrypt hashes and issues session
// tokens for authenticated actors.
type Service struct {
	mu         sync.RWMutex
	accounts   map[string]account
	tokens     *token.Service
	bcryptCost int
}

type account struct {
	hash []byte
	role models.ActorRole
}

// NewService creates an identity service issuing tokens via tokens.
func NewService(tokens *token.Service, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		accounts:   make(map[string]account),
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Register adds an actor with the given role.
func (s *Service) Register(username, password string, role models.ActorRole) error {
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}
	if !role.IsValid() {
		return fmt.Errorf("unknown actor role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[username]; exists {
		return fmt.Errorf("register %s: %w", username, ErrDuplicateUsername)
	}
	s.accounts[username] = account{hash: hash, role: role}
	return nil
}

// Authenticate verifies the credentials and returns the actor with a signed
// session token.
func (s *Service) Authenticate(username, password string) (Actor, string, error) {
	s.mu.RLock()
	acct, ok := s.accounts[username]
	s.mu.RUnlock()
	if !ok {
		return Actor{}, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return Actor{}, "", ErrInvalidCredentials
	}

	actor := Actor{Username: username, Role: acct.role}
	signed, err := s.tokens.Generate(username, string(acct.role))
	if err != nil {
		return Actor{}, "", fmt.Errorf("issue session token: %w", err)
	}
	return actor, signed, nil
}

// Verify validates a session token and returns the actor it names.
func (s *Service) Verify(tokenString string) (Actor, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return Actor{}, err
	}
	role := models.ActorRole(claims.Role)
	if !role.IsValid() {
		return Actor{}, token.ErrInvalidToken
	}
	return Actor{Username: claims.Username, Role: role}, nil
}
