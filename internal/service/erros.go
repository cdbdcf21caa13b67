package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"lavanderia/internal/repository"
)

var (
	ErrNaoEncontrado        = repository.ErrNaoEncontrado
	ErrProibido             = errors.New("operação não permitida para este usuário")
	ErrConflito             = errors.New("conflito com o estado atual do registro")
	ErrCredenciaisInvalidas = errors.New("credenciais inválidas")
	ErrPerfilNaoEncontrado  = errors.New("perfil de usuário não encontrado ou inativo")
	ErrSessaoEncerrada      = errors.New("sessão encerrada ou inválida")
	ErrTokenInvalido        = errors.New("token de redefinição inválido ou expirado")
	ErrSemProximoStatus     = errors.New("não há próximo status")
	ErrTransicaoInvalida    = errors.New("transição de status inválida")

	ErrLavanderiaComDependentes = fmt.Errorf("lavanderia possui usuários, catálogo ou demandas vinculados: %w", ErrConflito)
	ErrStatusAlterado           = fmt.Errorf("status da demanda foi alterado por outro usuário: %w", ErrConflito)
)

// ErroValidacao reports field-level input errors detected before any write.
type ErroValidacao struct {
	Campos map[string]string
}

func (e *ErroValidacao) Error() string {
	partes := make([]string, 0, len(e.Campos))
	for campo, msg := range e.Campos {
		partes = append(partes, campo+": "+msg)
	}
	sort.Strings(partes)
	return "dados inválidos (" + strings.Join(partes, "; ") + ")"
}

func erroCampo(campo, msg string) *ErroValidacao {
	return &ErroValidacao{Campos: map[string]string{campo: msg}}
}
