package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lavanderia/internal/config"
	"lavanderia/internal/dto"
	"lavanderia/internal/infra"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"
	"lavanderia/internal/sessao"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	TokenAcesso  = "access"
	TokenRefresh = "refresh"
)

// ListaRevogacao remembers logged-out token IDs.
type ListaRevogacao interface {
	Revogar(ctx context.Context, jti string, ate time.Time) error
	Revogado(ctx context.Context, jti string) (bool, error)
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, s sessao.Sessao, refreshToken string) error
	SolicitarRedefinicao(ctx context.Context, email string) error
	RedefinirSenha(ctx context.Context, req dto.RedefinirSenhaRequest) error
}

type authService struct {
	provedor     ProvedorIdentidade
	usuarios     repository.UsuarioRepository
	solicitacoes repository.SolicitacaoSenhaRepository
	revogacao    ListaRevogacao
	cfg          *config.Config
}

func NewAuthService(
	provedor ProvedorIdentidade,
	usuarios repository.UsuarioRepository,
	solicitacoes repository.SolicitacaoSenhaRepository,
	revogacao ListaRevogacao,
	cfg *config.Config,
) AuthService {
	return &authService{
		provedor:     provedor,
		usuarios:     usuarios,
		solicitacoes: solicitacoes,
		revogacao:    revogacao,
		cfg:          cfg,
	}
}

// Login authenticates against the identity provider and then resolves the
// profile. Any failure in either step issues no token.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	authUID, err := s.provedor.Autenticar(ctx, req.Email, req.Senha)
	if err != nil {
		if errors.Is(err, ErrCredenciaisInvalidas) {
			return nil, ErrCredenciaisInvalidas
		}
		log.Error().Err(err).Msg("login: provedor de identidade indisponível")
		return nil, fmt.Errorf("login: %w", err)
	}

	u, err := s.usuarios.ObterPorAuthUID(ctx, authUID)
	if errors.Is(err, repository.ErrNaoEncontrado) {
		return nil, ErrPerfilNaoEncontrado
	}
	if err != nil {
		return nil, fmt.Errorf("login: perfil: %w", err)
	}
	if !u.Ativo {
		return nil, ErrPerfilNaoEncontrado
	}

	return s.emitirTokens(u)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.lerToken(refreshToken)
	if err != nil || claims.tipo != TokenRefresh {
		return nil, ErrSessaoEncerrada
	}
	revogado, err := s.revogacao.Revogado(ctx, claims.jti)
	if err != nil {
		log.Error().Err(err).Msg("refresh: lista de revogação indisponível")
		return nil, ErrSessaoEncerrada
	}
	if revogado {
		return nil, ErrSessaoEncerrada
	}

	u, err := s.usuarios.ObterPorID(ctx, repository.Escopo{Global: true}, claims.usuarioID)
	if err != nil || !u.Ativo {
		return nil, ErrSessaoEncerrada
	}

	// rotation: the presented refresh token cannot be used again
	if err := s.revogacao.Revogar(ctx, claims.jti, claims.expira); err != nil {
		log.Warn().Err(err).Str("usuario_id", u.ID.String()).Msg("refresh: revogação remota falhou")
	}
	return s.emitirTokens(u)
}

// Logout revokes the access token of the session and, when given, the
// refresh token of the same user. Remote revocation failures are logged only:
// the local revocation already hides the session from this process.
func (s *authService) Logout(ctx context.Context, sess sessao.Sessao, refreshToken string) error {
	if err := s.revogacao.Revogar(ctx, sess.TokenID, sess.ExpiraEm); err != nil {
		log.Warn().Err(err).Str("usuario_id", sess.UsuarioID.String()).Msg("logout: revogação remota falhou")
	}
	if refreshToken == "" {
		return nil
	}
	claims, err := s.lerToken(refreshToken)
	if err != nil || claims.usuarioID != sess.UsuarioID {
		return nil
	}
	if err := s.revogacao.Revogar(ctx, claims.jti, claims.expira); err != nil {
		log.Warn().Err(err).Str("usuario_id", sess.UsuarioID.String()).Msg("logout: revogação remota do refresh falhou")
	}
	return nil
}

// SolicitarRedefinicao queues a reset email for active users. Unknown emails
// are accepted silently so the endpoint cannot be used to probe accounts.
func (s *authService) SolicitarRedefinicao(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.usuarios.ObterPorEmail(ctx, email)
	if errors.Is(err, repository.ErrNaoEncontrado) {
		return nil
	}
	if err != nil {
		return err
	}
	if !u.Ativo {
		return nil
	}
	return s.solicitacoes.Criar(ctx, &model.SolicitacaoSenha{Email: email})
}

func (s *authService) RedefinirSenha(ctx context.Context, req dto.RedefinirSenhaRequest) error {
	sol, err := s.solicitacoes.ObterPorTokenHash(ctx, infra.HashToken(req.Token))
	if errors.Is(err, repository.ErrNaoEncontrado) {
		return ErrTokenInvalido
	}
	if err != nil {
		return err
	}
	if sol.UsadoEm != nil || sol.ExpiraEm == nil || time.Now().After(*sol.ExpiraEm) {
		return ErrTokenInvalido
	}

	u, err := s.usuarios.ObterPorEmail(ctx, sol.Email)
	if err != nil || !u.Ativo {
		return ErrTokenInvalido
	}

	ok, err := s.solicitacoes.Consumir(ctx, sol.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenInvalido
	}
	return s.provedor.AlterarSenha(ctx, u.AuthUID, req.NovaSenha)
}

// ── tokens ───────────────────────────────────────────────────────────────────

type claimsLidas struct {
	usuarioID uuid.UUID
	jti       string
	tipo      string
	expira    time.Time
}

func (s *authService) emitirTokens(u *model.Usuario) (*dto.LoginResponse, error) {
	acesso, err := s.gerarToken(u, TokenAcesso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.gerarToken(u, TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  acesso,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		Redirect:     "/",
		Telas:        model.TelasPorPapel(u.Papel),
		Usuario:      mapUsuario(*u),
	}, nil
}

func (s *authService) gerarToken(u *model.Usuario, tipo string, dur time.Duration) (string, error) {
	agora := time.Now()
	claims := jwt.MapClaims{
		"usuario_id": u.ID.String(),
		"papel":      u.Papel,
		"tipo":       tipo,
		"jti":        uuid.NewString(),
		"iat":        agora.Unix(),
		"exp":        agora.Add(dur).Unix(),
	}
	if u.LavanderiaID != nil {
		claims["lavanderia_id"] = u.LavanderiaID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) lerToken(raw string) (*claimsLidas, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrSessaoEncerrada
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrSessaoEncerrada
	}

	idStr, _ := claims["usuario_id"].(string)
	uid, err := uuid.Parse(idStr)
	if err != nil {
		return nil, ErrSessaoEncerrada
	}
	jti, _ := claims["jti"].(string)
	tipo, _ := claims["tipo"].(string)
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || jti == "" {
		return nil, ErrSessaoEncerrada
	}
	return &claimsLidas{usuarioID: uid, jti: jti, tipo: tipo, expira: exp.Time}, nil
}
