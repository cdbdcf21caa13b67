package handler

import (
	"net/http"

	"lavanderia/internal/dto"
	"lavanderia/internal/middleware"
	"lavanderia/internal/service"

	"github.com/gin-gonic/gin"
)

type LavanderiasHandler struct{ svc service.LavanderiaService }

func NewLavanderiasHandler(svc service.LavanderiaService) *LavanderiasHandler {
	return &LavanderiasHandler{svc: svc}
}

// Listar godoc
// @Summary Lista lavanderias visíveis para a sessão
// @Tags lavanderias
// @Produce json
// @Success 200 {array} dto.LavanderiaResponse
// @Security BearerAuth
// @Router /v1/lavanderias [get]
func (h *LavanderiasHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), middleware.GetSessao(c))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obter GET /v1/lavanderias/:id
func (h *LavanderiasHandler) Obter(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), middleware.GetSessao(c), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Criar godoc
// @Summary Cadastra lavanderia
// @Tags lavanderias
// @Accept json
// @Produce json
// @Param body body dto.LavanderiaRequest true "Lavanderia"
// @Success 201 {object} dto.LavanderiaResponse
// @Failure 422 {object} apierror.ValidationError
// @Security BearerAuth
// @Router /v1/lavanderias [post]
func (h *LavanderiasHandler) Criar(c *gin.Context) {
	var req dto.LavanderiaRequest
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

// Atualizar PUT /v1/lavanderias/:id
func (h *LavanderiasHandler) Atualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.LavanderiaRequest
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

// Excluir godoc
// @Summary Remove lavanderia sem dependentes
// @Tags lavanderias
// @Success 204
// @Failure 409 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/lavanderias/{id} [delete]
func (h *LavanderiasHandler) Excluir(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), middleware.GetSessao(c), id); err != nil {
		responderErro(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
