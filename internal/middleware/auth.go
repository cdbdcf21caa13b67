package middleware

import (
	"context"
	"net/http"
	"strings"

	"lavanderia/internal/apierror"
	"lavanderia/internal/service"
	"lavanderia/internal/sessao"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	SessaoKey = "sessao"
)

// JWTClaims are the custom claims embedded in every token.
type JWTClaims struct {
	UsuarioID    string  `json:"usuario_id"`
	Papel        string  `json:"papel"`
	LavanderiaID *string `json:"lavanderia_id,omitempty"`
	Tipo         string  `json:"tipo"`
	jwt.RegisteredClaims
}

// VerificadorRevogacao answers whether a token ID was logged out.
type VerificadorRevogacao interface {
	Revogado(ctx context.Context, jti string) (bool, error)
}

// VerificadorUsuario answers whether a profile may still act. A deactivated
// user loses access at once, not when the token expires.
type VerificadorUsuario interface {
	EstaAtivo(ctx context.Context, id uuid.UUID) (bool, error)
}

// JWTAuth validates the Bearer access token on every protected route and
// stores the resulting session in the context. When the revocation list or
// the profile store cannot be consulted the request is refused.
func JWTAuth(secret string, revogacao VerificadorRevogacao, usuarios VerificadorUsuario) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticação requerida"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.Tipo != service.TokenAcesso || claims.ExpiresAt == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token inválido ou expirado"))
			return
		}

		s, err := sessaoDeClaims(claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token inválido ou expirado"))
			return
		}

		if revogacao != nil {
			revogado, err := revogacao.Revogado(c.Request.Context(), s.TokenID)
			if err != nil {
				log.Error().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("auth: lista de revogação indisponível")
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Sessão não pôde ser verificada"))
				return
			}
			if revogado {
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Sessão encerrada"))
				return
			}
		}

		if usuarios != nil {
			ativo, err := usuarios.EstaAtivo(c.Request.Context(), s.UsuarioID)
			if err != nil {
				log.Error().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("auth: falha ao consultar usuário")
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Sessão não pôde ser verificada"))
				return
			}
			if !ativo {
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Usuário inativo"))
				return
			}
		}

		c.Set(SessaoKey, s)
		c.Next()
	}
}

func sessaoDeClaims(claims *JWTClaims) (sessao.Sessao, error) {
	uid, err := uuid.Parse(claims.UsuarioID)
	if err != nil {
		return sessao.Sessao{}, err
	}
	s := sessao.Sessao{
		UsuarioID: uid,
		Papel:     claims.Papel,
		TokenID:   claims.ID,
		ExpiraEm:  claims.ExpiresAt.Time,
	}
	if claims.LavanderiaID != nil {
		lid, err := uuid.Parse(*claims.LavanderiaID)
		if err != nil {
			return sessao.Sessao{}, err
		}
		s.LavanderiaID = &lid
	}
	return s, nil
}

// RequireRole rejects sessions whose capability is not in the allowed list.
// Tenant-defined roles carry operator capabilities.
func RequireRole(papeis ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(papeis))
	for _, p := range papeis {
		allowed[p] = true
	}
	return func(c *gin.Context) {
		s, ok := c.Get(SessaoKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticação requerida"))
			return
		}
		if !allowed[s.(sessao.Sessao).Capacidade()] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permissões insuficientes"))
			return
		}
		c.Next()
	}
}

// GetSessao is a helper to retrieve the session from the Gin context.
func GetSessao(c *gin.Context) sessao.Sessao {
	s, _ := c.MustGet(SessaoKey).(sessao.Sessao)
	return s
}
