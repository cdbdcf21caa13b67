package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lavanderia/internal/dto"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"
	"lavanderia/internal/sessao"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type UsuarioService interface {
	// Listar filters by lavanderiaID only for global sessions.
	Listar(ctx context.Context, s sessao.Sessao, lavanderiaID *uuid.UUID) ([]dto.UsuarioResponse, error)
	Criar(ctx context.Context, s sessao.Sessao, req dto.CriarUsuarioRequest) (*dto.UsuarioResponse, error)
	Atualizar(ctx context.Context, s sessao.Sessao, id uuid.UUID, req dto.AtualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	Desativar(ctx context.Context, s sessao.Sessao, id uuid.UUID) error
	Perfil(ctx context.Context, s sessao.Sessao) (*dto.UsuarioResponse, error)
}

type usuarioService struct {
	usuarios    repository.UsuarioRepository
	lavanderias repository.LavanderiaRepository
	provedor    ProvedorIdentidade
}

func NewUsuarioService(
	usuarios repository.UsuarioRepository,
	lavanderias repository.LavanderiaRepository,
	provedor ProvedorIdentidade,
) UsuarioService {
	return &usuarioService{usuarios: usuarios, lavanderias: lavanderias, provedor: provedor}
}

func mapUsuario(u model.Usuario) dto.UsuarioResponse {
	resp := dto.UsuarioResponse{
		ID:    u.ID.String(),
		Nome:  u.Nome,
		Email: u.Email,
		Papel: u.Papel,
		Ativo: u.Ativo,
	}
	if u.LavanderiaID != nil {
		id := u.LavanderiaID.String()
		resp.LavanderiaID = &id
	}
	return resp
}

func (s *usuarioService) Listar(ctx context.Context, sess sessao.Sessao, lavanderiaID *uuid.UUID) ([]dto.UsuarioResponse, error) {
	esc := repository.EscopoDe(sess)
	if sess.Global() && lavanderiaID != nil {
		esc = repository.EscopoLavanderia(*lavanderiaID)
	}
	list, err := s.usuarios.Listar(ctx, esc)
	if err != nil {
		return nil, err
	}
	result := make([]dto.UsuarioResponse, 0, len(list))
	for _, u := range list {
		result = append(result, mapUsuario(u))
	}
	return result, nil
}

// Criar registers the identity first and then the profile. When the profile
// insert fails the identity is removed again.
func (s *usuarioService) Criar(ctx context.Context, sess sessao.Sessao, req dto.CriarUsuarioRequest) (*dto.UsuarioResponse, error) {
	papel := strings.TrimSpace(req.Papel)
	lavID, err := s.lavanderiaDoNovoUsuario(ctx, sess, papel, req.LavanderiaID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.usuarios.ObterPorEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email já cadastrado: %w", ErrConflito)
	} else if !errors.Is(err, repository.ErrNaoEncontrado) {
		return nil, err
	}

	authUID, err := s.provedor.Registrar(ctx, email, req.Senha)
	if err != nil {
		return nil, err
	}

	u := &model.Usuario{
		AuthUID:      authUID,
		Nome:         strings.TrimSpace(req.Nome),
		Email:        email,
		Papel:        papel,
		LavanderiaID: lavID,
		Ativo:        true,
	}
	if err := s.usuarios.Criar(ctx, u); err != nil {
		if rmErr := s.provedor.Remover(ctx, authUID); rmErr != nil {
			log.Error().Err(rmErr).Str("auth_uid", authUID.String()).Msg("usuarios: identidade órfã após falha no perfil")
		}
		return nil, err
	}
	resp := mapUsuario(*u)
	return &resp, nil
}

// lavanderiaDoNovoUsuario resolves the tenant of a user being created and
// checks the role against the tenant's role set.
func (s *usuarioService) lavanderiaDoNovoUsuario(ctx context.Context, sess sessao.Sessao, papel string, pedido *string) (*uuid.UUID, error) {
	if papel == model.PapelSuperAdmin {
		if !sess.Global() {
			return nil, ErrProibido
		}
		if pedido != nil {
			return nil, erroCampo("lavanderia_id", "super_admin não pertence a uma lavanderia")
		}
		return nil, nil
	}

	var lavID uuid.UUID
	switch {
	case sess.Global():
		if pedido == nil {
			return nil, erroCampo("lavanderia_id", "obrigatório")
		}
		id, err := uuid.Parse(*pedido)
		if err != nil {
			return nil, erroCampo("lavanderia_id", "uuid inválido")
		}
		lavID = id
	default:
		own, err := lavanderiaDaSessao(sess)
		if err != nil {
			return nil, err
		}
		if pedido != nil && *pedido != own.String() {
			return nil, ErrProibido
		}
		lavID = own
	}

	lav, err := s.lavanderias.ObterPorID(ctx, repository.EscopoDe(sess), lavID)
	if err != nil {
		if errors.Is(err, repository.ErrNaoEncontrado) {
			return nil, erroCampo("lavanderia_id", "lavanderia não encontrada")
		}
		return nil, err
	}
	if !lav.AceitaPapel(papel) {
		return nil, erroCampo("papel", "papel não disponível nesta lavanderia")
	}
	return &lavID, nil
}

func (s *usuarioService) Atualizar(ctx context.Context, sess sessao.Sessao, id uuid.UUID, req dto.AtualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	u, err := s.usuarios.ObterPorID(ctx, repository.EscopoDe(sess), id)
	if err != nil {
		return nil, err
	}
	if u.Papel == model.PapelSuperAdmin && !sess.Global() {
		return nil, ErrProibido
	}

	if req.Nome != "" {
		u.Nome = strings.TrimSpace(req.Nome)
	}
	if papel := strings.TrimSpace(req.Papel); papel != "" && papel != u.Papel {
		if papel == model.PapelSuperAdmin || u.Papel == model.PapelSuperAdmin || u.LavanderiaID == nil {
			return nil, erroCampo("papel", "papel não pode ser alterado")
		}
		lav, err := s.lavanderias.ObterPorID(ctx, repository.EscopoLavanderia(*u.LavanderiaID), *u.LavanderiaID)
		if err != nil {
			return nil, err
		}
		if !lav.AceitaPapel(papel) {
			return nil, erroCampo("papel", "papel não disponível nesta lavanderia")
		}
		u.Papel = papel
	}
	if req.Senha != "" {
		if err := s.provedor.AlterarSenha(ctx, u.AuthUID, req.Senha); err != nil {
			return nil, err
		}
	}

	if err := s.usuarios.Atualizar(ctx, u); err != nil {
		return nil, err
	}
	resp := mapUsuario(*u)
	return &resp, nil
}

// Desativar blocks future logins. The profile row stays so demands keep
// their responsible user.
func (s *usuarioService) Desativar(ctx context.Context, sess sessao.Sessao, id uuid.UUID) error {
	if id == sess.UsuarioID {
		return fmt.Errorf("não é possível desativar o próprio usuário: %w", ErrConflito)
	}
	u, err := s.usuarios.ObterPorID(ctx, repository.EscopoDe(sess), id)
	if err != nil {
		return err
	}
	if u.Papel == model.PapelSuperAdmin && !sess.Global() {
		return ErrProibido
	}
	return s.usuarios.Desativar(ctx, repository.EscopoDe(sess), id)
}

func (s *usuarioService) Perfil(ctx context.Context, sess sessao.Sessao) (*dto.UsuarioResponse, error) {
	u, err := s.usuarios.ObterPorID(ctx, repository.Escopo{Global: true}, sess.UsuarioID)
	if err != nil {
		return nil, err
	}
	resp := mapUsuario(*u)
	return &resp, nil
}
