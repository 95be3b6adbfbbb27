package session

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/yairfalse/harava/awsapi"
)

const webIdentityExpiryWindow = 5 * time.Minute

// WebIdentityProvider exchanges an OIDC token file for role credentials.
// It implements aws.CredentialsProvider; wrap it in aws.NewCredentialsCache
// so the token is re-read and re-exchanged only when the credentials
// approach expiry.
type WebIdentityProvider struct {
	client      awsapi.STSAPI
	roleARN     string
	tokenFile   string
	sessionName string
}

// NewWebIdentityProvider creates a provider reading tokens from tokenFile.
func NewWebIdentityProvider(client awsapi.STSAPI, roleARN, tokenFile, sessionName string) *WebIdentityProvider {
	if sessionName == "" {
		sessionName = "harava"
	}
	return &WebIdentityProvider{
		client:      client,
		roleARN:     roleARN,
		tokenFile:   tokenFile,
		sessionName: sessionName,
	}
}

// Retrieve reads the current token and exchanges it with STS. The two
// failure modes stay distinguishable: TokenReadError when the file is
// unreadable, FederationError when STS rejects the exchange.
func (p *WebIdentityProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	token, err := os.ReadFile(p.tokenFile)
	if err != nil {
		return aws.Credentials{}, &TokenReadError{Path: p.tokenFile, Err: err}
	}

	out, err := p.client.AssumeRoleWithWebIdentity(ctx, &sts.AssumeRoleWithWebIdentityInput{
		RoleArn:          aws.String(p.roleARN),
		RoleSessionName:  aws.String(p.sessionName),
		WebIdentityToken: aws.String(strings.TrimSpace(string(token))),
	})
	if err != nil {
		return aws.Credentials{}, &FederationError{RoleARN: p.roleARN, Err: err}
	}

	creds := out.Credentials
	return aws.Credentials{
		AccessKeyID:     aws.ToString(creds.AccessKeyId),
		SecretAccessKey: aws.ToString(creds.SecretAccessKey),
		SessionToken:    aws.ToString(creds.SessionToken),
		Source:          "WebIdentityFederation",
		CanExpire:       true,
		Expires:         aws.ToTime(creds.Expiration),
	}, nil
}

// NewWebIdentityConfig builds an aws.Config whose credentials come from
// a token file, refreshed lazily inside the expiry window.
func NewWebIdentityConfig(ctx context.Context, roleARN, tokenFile, sessionName, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}

	provider := NewWebIdentityProvider(sts.NewFromConfig(cfg), roleARN, tokenFile, sessionName)
	cfg.Credentials = aws.NewCredentialsCache(provider, func(o *aws.CredentialsCacheOptions) {
		o.ExpiryWindow = webIdentityExpiryWindow
	})
	return cfg, nil
}
