// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartify/sim-backend/internal/config"
	"github.com/smartify/sim-backend/internal/models"
	"github.com/smartify/sim-backend/internal/utils"
)

// AuthService authenticates store agents. Customers are anonymous and
// never log in; the wizard identifies them by cart ID alone.
type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required"`
}

type CreateAgentRequest struct {
	Username string     `json:"username" validate:"required,username"`
	Email    string     `json:"email" validate:"required,email"`
	FullName string     `json:"full_name" validate:"required"`
	Password string     `json:"password" validate:"required,min=8"`
	Role     string     `json:"role" validate:"required,oneof=agent admin"`
	StoreID  *uuid.UUID `json:"store_id,omitempty"`
}

type AuthResponse struct {
	Agent       *models.Agent `json:"agent"`
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int           `json:"expires_in"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
	}
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var agent models.Agent
	err := s.db.Preload("Store").Where("username = ? AND is_active = ?", req.Username, true).
		First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrForbidden)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := agent.CheckPassword(req.Password); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrForbidden)
	}

	storeID := ""
	if agent.StoreID != nil {
		storeID = agent.StoreID.String()
	}

	accessToken, err := utils.GenerateJWT(
		agent.ID,
		agent.Username,
		string(agent.Role),
		storeID,
		s.cfg.JWT.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		Agent:       &agent,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}

// CreateAgent provisions a new agent account. Admin only; enforced at
// the route level.
func (s *AuthService) CreateAgent(req *CreateAgentRequest) (*models.Agent, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existing models.Agent
	if err := s.db.Where("username = ? OR email = ?", req.Username, req.Email).
		First(&existing).Error; err == nil {
		if existing.Username == req.Username {
			return nil, fmt.Errorf("%w: username already taken", ErrConflict)
		}
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	agent := &models.Agent{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     models.AgentRole(req.Role),
		StoreID:  req.StoreID,
		IsActive: true,
	}
	if err := agent.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(agent).Error; err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return agent, nil
}

func (s *AuthService) GetAgent(id uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	err := s.db.Preload("Store").First(&agent, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("agent: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &agent, nil
}
