package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/auth"
	"github.com/electroitzone/report-dashboard/backend-go/internal/config"
	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/electroitzone/report-dashboard/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

const defaultLoginProcedure = "proc_logindone"

// AuthService checks credentials with the login procedure and, when
// enabled, issues and verifies session tokens.
type AuthService struct {
	gateway   repository.ProcedureGateway
	procedure string
	cfg       config.AuthConfig
	now       func() time.Time
}

func NewAuthService(gateway repository.ProcedureGateway, procedure string, cfg config.AuthConfig) *AuthService {
	if strings.TrimSpace(procedure) == "" {
		procedure = defaultLoginProcedure
	}
	return &AuthService{gateway: gateway, procedure: procedure, cfg: cfg, now: time.Now}
}

// Enabled reports whether API calls require a token.
func (s *AuthService) Enabled() bool { return s.cfg.Enabled }

// Login runs the login procedure. Any row in the first recordset means the
// credentials are valid.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.NewValidationError("username", "username and password are required")
	}

	res, err := s.gateway.Execute(ctx, s.procedure, domain.Params{"usrname": username, "passw": password})
	if err != nil {
		return nil, err
	}
	if len(res.Recordsets) == 0 || res.Recordsets[0].Len() == 0 {
		log.Info().Str("username", username).Msg("login rejected")
		return nil, domain.ErrUnauthorized
	}

	user := res.Recordsets[0].Rows[0]
	if name, ok := user["username"].(string); ok && strings.TrimSpace(name) != "" {
		username = strings.TrimSpace(name)
	}

	result := &domain.LoginResult{Username: username, IsAuthenticated: true}
	if s.cfg.Enabled {
		token, err := auth.GenerateJWT(s.cfg.JWTSecret, username, s.tokenTTL(), s.now())
		if err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
		result.Token = token.Value
		result.ExpiresAt = token.ExpiresAt.Unix()
	}

	log.Info().Str("username", username).Msg("login accepted")
	return result, nil
}

// Authenticate validates a bearer token and returns its user.
func (s *AuthService) Authenticate(token string) (string, error) {
	return auth.ParseJWT(s.cfg.JWTSecret, token)
}

func (s *AuthService) tokenTTL() time.Duration {
	if s.cfg.TokenTTLMinutes <= 0 {
		return 8 * time.Hour
	}
	return time.Duration(s.cfg.TokenTTLMinutes) * time.Minute
}
