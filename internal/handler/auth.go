package handler

import (
	"net/http"

	"lavanderia/internal/apierror"
	"lavanderia/internal/dto"
	"lavanderia/internal/middleware"
	"lavanderia/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Login de usuário
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciais"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Renova o par de tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Encerra a sessão
// @Tags auth
// @Accept json
// @Param body body dto.LogoutRequest false "Refresh token a revogar"
// @Success 204
// @Security BearerAuth
// @Router /v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	// The body is optional.
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Logout(c.Request.Context(), middleware.GetSessao(c), req.RefreshToken); err != nil {
		responderErro(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EsqueciSenha godoc
// @Summary Solicita redefinição de senha
// @Description Sempre responde 202, exista ou não o e-mail.
// @Tags auth
// @Accept json
// @Param body body dto.EsqueciSenhaRequest true "E-mail"
// @Success 202
// @Router /v1/auth/esqueci-senha [post]
func (h *AuthHandler) EsqueciSenha(c *gin.Context) {
	var req dto.EsqueciSenhaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.SolicitarRedefinicao(c.Request.Context(), req.Email); err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"detail": "Se o e-mail estiver cadastrado, um link de redefinição será enviado"})
}

// RedefinirSenha godoc
// @Summary Define nova senha a partir do token recebido por e-mail
// @Tags auth
// @Accept json
// @Param body body dto.RedefinirSenhaRequest true "Token e nova senha"
// @Success 204
// @Failure 401 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/auth/redefinir-senha [post]
func (h *AuthHandler) RedefinirSenha(c *gin.Context) {
	var req dto.RedefinirSenhaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RedefinirSenha(c.Request.Context(), req); err != nil {
		responderErro(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Usuarios Handler ─────────────────────────────────────────────────────────

type UsuariosHandler struct{ svc service.UsuarioService }

func NewUsuariosHandler(svc service.UsuarioService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

// Criar godoc
// @Summary Cria usuário (identidade + perfil)
// @Tags usuarios
// @Accept json
// @Produce json
// @Param body body dto.CriarUsuarioRequest true "Usuário"
// @Success 201 {object} dto.UsuarioResponse
// @Failure 403 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Security BearerAuth
// @Router /v1/usuarios [post]
func (h *UsuariosHandler) Criar(c *gin.Context) {
	var req dto.CriarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), middleware.GetSessao(c), req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar GET /v1/usuarios?lavanderia_id=
func (h *UsuariosHandler) Listar(c *gin.Context) {
	var filtro *uuid.UUID
	if raw := c.Query("lavanderia_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("lavanderia_id inválido"))
			return
		}
		filtro = &id
	}
	resp, err := h.svc.Listar(c.Request.Context(), middleware.GetSessao(c), filtro)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Atualizar PUT /v1/usuarios/:id
func (h *UsuariosHandler) Atualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AtualizarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), middleware.GetSessao(c), id, req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Desativar DELETE /v1/usuarios/:id
func (h *UsuariosHandler) Desativar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Desativar(c.Request.Context(), middleware.GetSessao(c), id); err != nil {
		responderErro(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Perfil GET /v1/usuarios/me
func (h *UsuariosHandler) Perfil(c *gin.Context) {
	resp, err := h.svc.Perfil(c.Request.Context(), middleware.GetSessao(c))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
