package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// secretsManagerAPI is the subset of the Secrets Manager client we use.
type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSProvider reads secrets from AWS Secrets Manager.
type AWSProvider struct {
	api secretsManagerAPI
}

// NewAWSProvider loads the shared AWS config chain (env, profile, IMDS).
// region overrides the chain's region when set.
func NewAWSProvider(ctx context.Context, region string) (*AWSProvider, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("aws: load config: %w", err)
	}

	return &AWSProvider{api: secretsmanager.NewFromConfig(cfg)}, nil
}

// GetSecret returns the current string value of the named secret.
func (p *AWSProvider) GetSecret(ctx context.Context, name string) (string, error) {
	out, err := p.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("aws: get secret %q: %w", name, err)
	}

	value := aws.ToString(out.SecretString)
	if value == "" {
		return "", fmt.Errorf("aws: secret %q: %w", name, ErrEmptySecret)
	}
	return value, nil
}
