package stackcfg

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Overrides holds values taken from the process environment. An empty
// variable counts as absent.
type Overrides struct {
	Stack         string `env:"WEBSTACK_STACK"`
	Platform      string `env:"WEBSTACK_PLATFORM"`
	Replicas      string `env:"WEBSTACK_APP_REPLICA_COUNT"`
	Domain        string `env:"DOMAIN"`
	Subdomain     string `env:"SUBDOMAIN"`
	Image         string `env:"DOCKER_IMAGE_NAME"`
	DatabaseName  string `env:"WEBSTACK_POSTGRES_DATABASE"`
	DatabasePass  string `env:"WEBSTACK_POSTGRES_PASSWORD"`
	CachePass     string `env:"WEBSTACK_REDIS_PASSWORD"`
	SecretKeyBase string `env:"WEBSTACK_APP_SECRET_KEY_BASE"`
	RegistryUser  string `env:"DOCKER_USERNAME"`
	RegistryPass  string `env:"DOCKER_PASSWORD"`
	RegistryHost  string `env:"DOCKER_AUTH_DOMAIN"`
	DNSProvider   string `env:"WEBSTACK_DNS_PROVIDER"`
	DNSToken      string `env:"WEBSTACK_DNS_TOKEN"`
	CloudflareKey string `env:"CLOUDFLARE_API_TOKEN"`
	ACMEEmail     string `env:"WEBSTACK_ACME_EMAIL"`

	// Settings collects driver settings (AZURE_*, KUBECONFIG, KUBE_CONTEXT, CLOUDFLARE_*)
	// found in the environment.
	Settings map[string]string `env:"-"`
}

// settingPrefixes select environment variables forwarded to drivers as settings.
var settingPrefixes = []string{"AZURE_", "KUBECONFIG", "KUBE_CONTEXT", "CLOUDFLARE_"}

// LoadOverrides parses overrides from environ, a list of KEY=VALUE pairs.
// A nil environ reads the process environment.
func LoadOverrides(environ []string) (*Overrides, error) {
	if environ == nil {
		environ = os.Environ()
	}
	vars := env.ToMap(environ)
	var o Overrides
	if err := env.ParseWithOptions(&o, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	o.Settings = map[string]string{}
	for k, v := range vars {
		if v == "" || k == "CLOUDFLARE_API_TOKEN" {
			continue
		}
		for _, p := range settingPrefixes {
			if strings.HasPrefix(k, p) {
				o.Settings[k] = v
				break
			}
		}
	}
	return &o, nil
}
