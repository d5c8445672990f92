package aks

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/caarlos0/env/v11"
	providerdrv "github.com/kompox/webstack/adapters/drivers/provider"
)

// Settings keys read per handle by the cluster operations.
const (
	settingKubernetesVer    = "AZURE_AKS_KUBERNETES_VERSION"
	settingAdminCredentials = "AZURE_AKS_ADMIN_CREDENTIALS"
)

// settings are the driver-level AZURE_* values.
type settings struct {
	SubscriptionID     string `env:"AZURE_SUBSCRIPTION_ID,required"`
	Location           string `env:"AZURE_LOCATION,required"`
	AuthMethod         string `env:"AZURE_AUTH_METHOD" envDefault:"default"`
	TenantID           string `env:"AZURE_TENANT_ID"`
	ClientID           string `env:"AZURE_CLIENT_ID"`
	ClientSecret       string `env:"AZURE_CLIENT_SECRET"`
	FederatedTokenFile string `env:"AZURE_FEDERATED_TOKEN_FILE"`
}

// parseSettings reads settings from the handle's string map. Blank values
// count as unset.
func parseSettings(m map[string]string) (*settings, error) {
	trimmed := make(map[string]string, len(m))
	for k, v := range m {
		if v = strings.TrimSpace(v); v != "" {
			trimmed[k] = v
		}
	}
	var s settings
	if err := env.ParseWithOptions(&s, env.Options{Environment: trimmed}); err != nil {
		return nil, fmt.Errorf("aks settings: %w", err)
	}
	return &s, nil
}

type driver struct {
	TokenCredential     azcore.TokenCredential
	AzureSubscriptionId string
	AzureLocation       string
}

func (d *driver) ID() string { return "aks" }

// require reports the settings an auth method needs that are empty.
func require(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// credentialFactories map AZURE_AUTH_METHOD values to azidentity constructors.
var credentialFactories = map[string]func(*settings) (azcore.TokenCredential, error){
	"default": func(*settings) (azcore.TokenCredential, error) {
		return azidentity.NewDefaultAzureCredential(nil)
	},
	"azure_cli": func(*settings) (azcore.TokenCredential, error) {
		return azidentity.NewAzureCLICredential(nil)
	},
	"azure_developer_cli": func(*settings) (azcore.TokenCredential, error) {
		return azidentity.NewAzureDeveloperCLICredential(nil)
	},
	"client_secret": func(s *settings) (azcore.TokenCredential, error) {
		if err := require("AZURE_TENANT_ID", s.TenantID, "AZURE_CLIENT_ID", s.ClientID, "AZURE_CLIENT_SECRET", s.ClientSecret); err != nil {
			return nil, err
		}
		return azidentity.NewClientSecretCredential(s.TenantID, s.ClientID, s.ClientSecret, nil)
	},
	"managed_identity": func(s *settings) (azcore.TokenCredential, error) {
		opts := &azidentity.ManagedIdentityCredentialOptions{}
		if s.ClientID != "" {
			opts.ID = azidentity.ClientID(s.ClientID)
		}
		return azidentity.NewManagedIdentityCredential(opts)
	},
	"workload_identity": func(s *settings) (azcore.TokenCredential, error) {
		if err := require("AZURE_TENANT_ID", s.TenantID, "AZURE_CLIENT_ID", s.ClientID, "AZURE_FEDERATED_TOKEN_FILE", s.FederatedTokenFile); err != nil {
			return nil, err
		}
		return azidentity.NewWorkloadIdentityCredential(&azidentity.WorkloadIdentityCredentialOptions{
			TenantID:      s.TenantID,
			ClientID:      s.ClientID,
			TokenFilePath: s.FederatedTokenFile,
		})
	},
}

func newCredential(s *settings) (azcore.TokenCredential, error) {
	factory, ok := credentialFactories[s.AuthMethod]
	if !ok {
		return nil, fmt.Errorf("unsupported AZURE_AUTH_METHOD: %s", s.AuthMethod)
	}
	cred, err := factory(s)
	if err != nil {
		return nil, fmt.Errorf("%s credential: %w", s.AuthMethod, err)
	}
	return cred, nil
}

// azureShorterErrorString renders Azure response errors as "<code> <text> (<error code>)".
func azureShorterErrorString(err error) string {
	var responseErr *azcore.ResponseError
	if errors.As(err, &responseErr) {
		return fmt.Sprintf("%d %s (%s)", responseErr.StatusCode, http.StatusText(responseErr.StatusCode), responseErr.ErrorCode)
	}
	return err.Error()
}

func isNotFound(err error) bool {
	var responseErr *azcore.ResponseError
	return errors.As(err, &responseErr) && responseErr.StatusCode == http.StatusNotFound
}

func newDriver(m map[string]string) (providerdrv.Driver, error) {
	s, err := parseSettings(m)
	if err != nil {
		return nil, err
	}
	cred, err := newCredential(s)
	if err != nil {
		return nil, err
	}
	return &driver{TokenCredential: cred, AzureSubscriptionId: s.SubscriptionID, AzureLocation: s.Location}, nil
}

func init() {
	providerdrv.Register("aks", newDriver)
}
