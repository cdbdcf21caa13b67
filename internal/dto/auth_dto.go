package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required,min=1"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type EsqueciSenhaRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RedefinirSenhaRequest struct {
	Token     string `json:"token"      validate:"required"`
	NovaSenha string `json:"nova_senha" validate:"required,senhaforte"`
}

type CriarUsuarioRequest struct {
	Nome         string  `json:"nome"          validate:"required,min=2,max=100"`
	Email        string  `json:"email"         validate:"required,email"`
	Senha        string  `json:"senha"         validate:"required,senhaforte"`
	Papel        string  `json:"papel"         validate:"required,min=2,max=40"`
	LavanderiaID *string `json:"lavanderia_id" validate:"omitempty,uuid"`
}

// AtualizarUsuarioRequest has no email: it is immutable after creation.
type AtualizarUsuarioRequest struct {
	Nome  string `json:"nome"  validate:"omitempty,min=2,max=100"`
	Papel string `json:"papel" validate:"omitempty,min=2,max=40"`
	Senha string `json:"senha" validate:"omitempty,senhaforte"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID           string  `json:"id"`
	Nome         string  `json:"nome"`
	Email        string  `json:"email"`
	Papel        string  `json:"papel"`
	LavanderiaID *string `json:"lavanderia_id"`
	Ativo        bool    `json:"ativo"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	Redirect     string          `json:"redirect"`
	Telas        []string        `json:"telas"`
	Usuario      UsuarioResponse `json:"usuario"`
}
