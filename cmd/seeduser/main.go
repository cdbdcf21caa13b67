// cmd/seeduser/main.go creates (or re-activates) the platform super_admin.
// Uso: SEED_EMAIL=root@exemplo.com SEED_SENHA='S3nha@forte' go run ./cmd/seeduser
package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"lavanderia/internal/config"
	"lavanderia/internal/infra"
	"lavanderia/internal/model"
	"lavanderia/internal/repository"
	"lavanderia/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	email := strings.ToLower(strings.TrimSpace(os.Getenv("SEED_EMAIL")))
	senha := os.Getenv("SEED_SENHA")
	nome := os.Getenv("SEED_NOME")
	if nome == "" {
		nome = "Super Admin"
	}
	if email == "" || senha == "" {
		log.Fatal().Msg("SEED_EMAIL e SEED_SENHA são obrigatórios")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	ctx := context.Background()
	dsn, err := infra.ResolverDSN(ctx, cfg.DatabaseURL, cfg.DBSecretID, cfg.AWSRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve database credentials")
	}
	db, err := infra.NewDatabase(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	provedor := service.NewProvedorLocal(repository.NewIdentidadeRepository(db), service.BcryptCusto)
	usuarios := repository.NewUsuarioRepository(db)

	existente, err := usuarios.ObterPorEmail(ctx, email)
	switch {
	case err == nil:
		if err := provedor.AlterarSenha(ctx, existente.AuthUID, senha); err != nil {
			log.Fatal().Err(err).Msg("failed to reset password")
		}
		existente.Ativo = true
		existente.Papel = model.PapelSuperAdmin
		existente.LavanderiaID = nil
		if err := usuarios.Atualizar(ctx, existente); err != nil {
			log.Fatal().Err(err).Msg("failed to update profile")
		}
		log.Info().Str("email", email).Msg("super_admin atualizado")
		return
	case !errors.Is(err, repository.ErrNaoEncontrado):
		log.Fatal().Err(err).Msg("failed to look up profile")
	}

	uid, err := provedor.Registrar(ctx, email, senha)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register identity")
	}
	u := &model.Usuario{AuthUID: uid, Nome: nome, Email: email, Papel: model.PapelSuperAdmin, Ativo: true}
	if err := usuarios.Criar(ctx, u); err != nil {
		_ = provedor.Remover(ctx, uid)
		log.Fatal().Err(err).Msg("failed to create profile")
	}
	log.Info().Str("email", email).Str("usuario_id", u.ID.String()).Msg("super_admin criado")
}
