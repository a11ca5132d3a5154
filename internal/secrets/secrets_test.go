package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecretsManager struct {
	values map[string]string
	err    error
	calls  []string
}

func (f *fakeSecretsManager) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	id := aws.ToString(in.SecretId)
	f.calls = append(f.calls, id)
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[id]
	if !ok {
		return &secretsmanager.GetSecretValueOutput{}, nil
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(v)}, nil
}

func TestAWSProviderGetSecret(t *testing.T) {
	fake := &fakeSecretsManager{values: map[string]string{"openai-api-key": "sk-test"}}
	p := &AWSProvider{api: fake}

	got, err := p.GetSecret(context.Background(), "openai-api-key")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", got)
	assert.Equal(t, []string{"openai-api-key"}, fake.calls)

	_, err = p.GetSecret(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestAWSProviderPropagatesError(t *testing.T) {
	boom := errors.New("access denied")
	p := &AWSProvider{api: &fakeSecretsManager{err: boom}}

	_, err := p.GetSecret(context.Background(), "openai-api-key")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"openai-api-key"`)
}

func TestEnvProvider(t *testing.T) {
	env := map[string]string{"OPENAI_API_KEY": "sk-env", "EMPTY_ONE": ""}
	p := &EnvProvider{lookup: func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}}

	got, err := p.GetSecret(context.Background(), "openai-api-key")
	require.NoError(t, err)
	assert.Equal(t, "sk-env", got)

	_, err = p.GetSecret(context.Background(), "empty-one")
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = p.GetSecret(context.Background(), "nope")
	assert.Error(t, err)
}

func TestVaultURL(t *testing.T) {
	assert.Equal(t, "https://wine-kv.vault.azure.net", VaultURL("wine-kv"))
}

func TestNewValidation(t *testing.T) {
	_, err := New(context.Background(), Config{Backend: "keyvault"})
	assert.Error(t, err, "vault name is required")

	_, err = New(context.Background(), Config{Backend: "gcp"})
	assert.Error(t, err)

	p, err := New(context.Background(), Config{Backend: "env"})
	require.NoError(t, err)
	assert.IsType(t, &EnvProvider{}, p)
}
