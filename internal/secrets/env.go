package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider resolves a secret from the environment. The secret name is
// upper-cased and dashes become underscores: "openai-api-key" reads
// OPENAI_API_KEY. Intended for local development.
type EnvProvider struct {
	lookup func(string) (string, bool)
}

func NewEnvProvider() *EnvProvider {
	return &EnvProvider{lookup: os.LookupEnv}
}

// EnvName maps a secret name to its environment variable.
func EnvName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func (p *EnvProvider) GetSecret(_ context.Context, name string) (string, error) {
	key := EnvName(name)
	value, ok := p.lookup(key)
	if !ok {
		return "", fmt.Errorf("env: secret %q: %s is not set", name, key)
	}
	if value == "" {
		return "", fmt.Errorf("env: secret %q: %w", name, ErrEmptySecret)
	}
	return value, nil
}
