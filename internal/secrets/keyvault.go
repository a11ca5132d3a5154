package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// KeyVaultProvider reads secrets from Azure Key Vault using the default
// Azure credential chain (environment, workload identity, managed identity,
// Azure CLI).
type KeyVaultProvider struct {
	client *azsecrets.Client
}

// VaultURL returns the data-plane URL of the named vault.
func VaultURL(name string) string {
	return fmt.Sprintf("https://%s.vault.azure.net", name)
}

func NewKeyVaultProvider(vaultName string) (*KeyVaultProvider, error) {
	if vaultName == "" {
		return nil, errors.New("keyvault: vault name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("keyvault: credential: %w", err)
	}

	client, err := azsecrets.NewClient(VaultURL(vaultName), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("keyvault: client: %w", err)
	}

	return &KeyVaultProvider{client: client}, nil
}

// GetSecret returns the latest version of the named secret.
func (p *KeyVaultProvider) GetSecret(ctx context.Context, name string) (string, error) {
	resp, err := p.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		return "", fmt.Errorf("keyvault: get secret %q: %w", name, err)
	}
	if resp.Value == nil || *resp.Value == "" {
		return "", fmt.Errorf("keyvault: secret %q: %w", name, ErrEmptySecret)
	}
	return *resp.Value, nil
}
