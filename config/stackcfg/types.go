// Package stackcfg loads the stored stack configuration and environment
// overrides and resolves them into a model.Environment.
package stackcfg

// DefaultPath is the stored configuration file looked up when none is given.
const DefaultPath = "webstack.yml"

// Root is the stored configuration document (webstack.yml).
type Root struct {
	Version   string   `yaml:"version,omitempty"`
	Stack     string   `yaml:"stack,omitempty"`
	Platform  string   `yaml:"platform"`
	Domain    string   `yaml:"domain,omitempty"`
	Subdomain string   `yaml:"subdomain,omitempty"`
	App       App      `yaml:"app"`
	Database  Database `yaml:"database"`
	Cache     Cache    `yaml:"cache"`
	Registry  Registry `yaml:"registry,omitempty"`
	DNS       DNS      `yaml:"dns,omitempty"`
	ACME      ACME     `yaml:"acme,omitempty"`
	Local     Platform `yaml:"local,omitempty"`
	Cloud     Platform `yaml:"cloud,omitempty"`
}

// App describes the application workload.
type App struct {
	Image string `yaml:"image"`
	// Replicas is kept as text so malformed values surface as InvalidConfig.
	Replicas      string `yaml:"replicas,omitempty"`
	SecretKeyBase string `yaml:"secretKeyBase"`
}

// Database describes the relational database release.
type Database struct {
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

// Cache describes the key-value cache release.
type Cache struct {
	Password string `yaml:"password"`
}

// Registry holds private registry credentials for image pulls.
type Registry struct {
	Server   string `yaml:"server,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// DNS selects the DNS provider used for record binding and DNS-01 challenges.
type DNS struct {
	Provider string            `yaml:"provider,omitempty"`
	APIToken string            `yaml:"apiToken,omitempty"`
	Settings map[string]string `yaml:"settings,omitempty"`
}

// ACME configures the certificate issuer account.
type ACME struct {
	Email string `yaml:"email,omitempty"`
}

// Platform holds driver settings for one platform.
type Platform struct {
	Settings map[string]string `yaml:"settings,omitempty"`
}
