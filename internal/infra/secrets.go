package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// CredenciaisBanco is the JSON document stored in the database secret.
type CredenciaisBanco struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ResolverDSN returns dsn with the user and password taken from the AWS
// Secrets Manager secret secretID. An empty secretID returns dsn unchanged.
func ResolverDSN(ctx context.Context, dsn, secretID, region string) (string, error) {
	if secretID == "" {
		return dsn, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return "", fmt.Errorf("secrets: load aws config: %w", err)
	}
	client := secretsmanager.NewFromConfig(cfg)

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return "", fmt.Errorf("secrets: get %s: %w", secretID, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secrets: %s has no string value", secretID)
	}

	var cred CredenciaisBanco
	if err := json.Unmarshal([]byte(*out.SecretString), &cred); err != nil {
		return "", fmt.Errorf("secrets: decode %s: %w", secretID, err)
	}
	return aplicarCredenciais(dsn, cred)
}

// aplicarCredenciais swaps the userinfo of a postgres:// URL.
func aplicarCredenciais(dsn string, cred CredenciaisBanco) (string, error) {
	if cred.Username == "" {
		return "", fmt.Errorf("secrets: username vazio")
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("secrets: DATABASE_URL precisa estar no formato postgres://host/db")
	}
	u.User = url.UserPassword(cred.Username, cred.Password)
	return u.String(), nil
}
