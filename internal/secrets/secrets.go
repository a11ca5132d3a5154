// Package secrets retrieves credentials, such as the generation API key,
// from a secret store.
package secrets

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptySecret is returned when a secret exists but has no value.
var ErrEmptySecret = errors.New("secret has no value")

// Provider looks up a secret value by name.
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

type Config struct {
	// Backend is one of "keyvault", "aws" or "env".
	Backend string

	KeyVaultName string // keyvault: vault name, https://<name>.vault.azure.net
	AWSRegion    string // aws: optional region override
}

// New builds the provider selected by cfg.Backend.
func New(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Backend {
	case "keyvault", "":
		p, err := NewKeyVaultProvider(cfg.KeyVaultName)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "aws":
		p, err := NewAWSProvider(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "env":
		return NewEnvProvider(), nil
	default:
		return nil, fmt.Errorf("unknown secret backend %q", cfg.Backend)
	}
}
