package model

import (
	"fmt"
	"strings"
)

// Platform identifies the target environment kind.
type Platform string

const (
	PlatformLocal Platform = "local"
	PlatformCloud Platform = "cloud"
)

// Default values applied by the configuration resolver.
const (
	DefaultStack             = "webstack"
	DefaultDomain            = "localhost"
	DefaultReplicas    int32 = 1
	DefaultRegistry          = "ghcr.io"
	DefaultDNSProvider       = "cloudflare"
)

// ParsePlatform converts a configuration value into a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformLocal, PlatformCloud:
		return p, nil
	case "":
		return "", MissingConfig("platform")
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
	}
}

// RegistryCredential holds container registry login material.
type RegistryCredential struct {
	Server   string `json:"server"`
	Username string `json:"username,omitempty"`
	Password Secret `json:"password,omitempty"`
}

// Complete reports whether both username and password are present.
func (r RegistryCredential) Complete() bool {
	return r.Username != "" && !r.Password.IsZero()
}

// Credentials groups all secret material resolved for a run.
type Credentials struct {
	DatabasePassword Secret             `json:"databasePassword"`
	CachePassword    Secret             `json:"cachePassword"`
	AppSecretKey     Secret             `json:"appSecretKey"`
	DNSToken         Secret             `json:"dnsToken,omitempty"`
	Registry         RegistryCredential `json:"registry"`
}

// Environment is the immutable, fully resolved input of a run.
// It is built once by the configuration resolver and passed explicitly to every composer.
type Environment struct {
	Stack            string            `json:"stack"`
	Platform         Platform          `json:"platform"`
	Domain           string            `json:"domain"`
	Subdomain        string            `json:"subdomain,omitempty"`
	Image            string            `json:"image"`
	Replicas         int32             `json:"replicas"`
	DatabaseName     string            `json:"databaseName"`
	Credentials      Credentials       `json:"credentials"`
	ACMEEmail        string            `json:"acmeEmail,omitempty"`
	DNSProvider      string            `json:"dnsProvider"`
	DNSSettings      map[string]string `json:"dnsSettings,omitempty"`
	PlatformSettings map[string]string `json:"platformSettings,omitempty"`
}

// Hostname returns the public hostname: "<subdomain>.<domain>", or the domain alone
// when no subdomain is configured.
func (e *Environment) Hostname() string {
	if e.Subdomain == "" {
		return e.Domain
	}
	return e.Subdomain + "." + e.Domain
}

// IssuerEmail returns the ACME account email, defaulting to admin@<domain>.
func (e *Environment) IssuerEmail() string {
	if e.ACMEEmail != "" {
		return e.ACMEEmail
	}
	return "admin@" + e.Domain
}

// DNSAccess returns the DNS provider access description for this environment.
func (e *Environment) DNSAccess() DNSAccess {
	return DNSAccess{
		Provider: e.DNSProvider,
		Zone:     e.Domain,
		Settings: e.DNSSettings,
		Token:    e.Credentials.DNSToken,
	}
}
