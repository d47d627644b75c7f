package mssql

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// azureSQLScope is the resource scope Azure AD tokens must be minted for to
// authenticate against Azure SQL Database / Managed Instance.
const azureSQLScope = "https://database.windows.net/.default"

// acquireManagedIdentityToken fetches an Azure AD access token for the
// configured source using azidentity's credential chain. When ClientID is
// set, a user-assigned managed identity is requested; otherwise the
// system-assigned identity (or local developer credential, outside Azure) is
// used via azidentity.NewDefaultAzureCredential.
func acquireManagedIdentityToken(ctx context.Context, cfg *Config) (string, error) {
	var cred azcore.TokenCredential
	var err error

	if cfg.ClientID != "" {
		cred, err = azidentity.NewManagedIdentityCredential(&azidentity.ManagedIdentityCredentialOptions{
			ID: azidentity.ClientID(cfg.ClientID),
		})
	} else {
		cred, err = azidentity.NewDefaultAzureCredential(nil)
	}
	if err != nil {
		return "", fmt.Errorf("create azure credential: %w", err)
	}

	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{azureSQLScope},
	})
	if err != nil {
		return "", fmt.Errorf("get azure token: %w", err)
	}

	return token.Token, nil
}
