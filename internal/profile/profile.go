package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Profile holds the user's account details. Passwords are only ever
// persisted as bcrypt digests.
type Profile struct {
	Name             string   `json:"name"`
	PrimaryEmail     string   `json:"primary_email"`
	AdditionalEmails []string `json:"additional_emails,omitempty"`
	ProfileImage     []byte   `json:"profile_image,omitempty"`
	Username         string   `json:"username,omitempty"`
	// Password is the deprecated plaintext field kept so old profile
	// files still decode; Load migrates it into PasswordHash and clears it.
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// Store is a JSON-file-backed profile store. Loading migrates any legacy
// plaintext password into a bcrypt hash once, so dual-field handling never
// leaks past construction.
type Store struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	profile Profile
}

// NewStore loads the profile at path, creating an empty profile if the
// file does not exist yet
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logger,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.profile = Profile{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode profile: %w", err)
	}

	// One-time migration of the legacy plaintext password field.
	if p.Password != "" && p.PasswordHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash legacy password: %w", err)
		}
		p.PasswordHash = string(hash)
		p.Password = ""
		s.profile = p
		if err := s.save(); err != nil {
			return err
		}
		s.logger.Info("Migrated legacy plaintext password to hash")
		return nil
	}

	// Never keep plaintext around once a hash exists.
	if p.Password != "" {
		p.Password = ""
		s.profile = p
		if err := s.save(); err != nil {
			return err
		}
		return nil
	}

	s.profile = p
	return nil
}

// save must be called with s.mu held (or before the store is shared)
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	data, err := json.MarshalIndent(s.profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace profile: %w", err)
	}
	return nil
}

// Profile returns a copy of the current profile
func (s *Store) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Update persists new profile details. Any plaintext password on p is
// hashed before the profile is written; the existing hash is kept when p
// carries no password at all.
func (s *Store) Update(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		p.PasswordHash = string(hash)
		p.Password = ""
	} else if p.PasswordHash == "" {
		p.PasswordHash = s.profile.PasswordHash
	}

	s.profile = p
	return s.save()
}

// SetPassword replaces the stored password hash
func (s *Store) SetPassword(plaintext string) error {
	if plaintext == "" {
		return fmt.Errorf("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.PasswordHash = string(hash)
	s.profile.Password = ""
	return s.save()
}

// VerifyPassword reports whether plaintext matches the stored hash
func (s *Store) VerifyPassword(plaintext string) bool {
	s.mu.Lock()
	hash := s.profile.PasswordHash
	s.mu.Unlock()

	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
