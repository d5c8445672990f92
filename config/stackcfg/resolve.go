package stackcfg

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/kompox/webstack/domain/model"
	"k8s.io/apimachinery/pkg/util/validation"
)

// Resolve merges stored configuration with environment overrides into an
// Environment. For every key the override wins when non-empty, then the stored
// value, then the default; required keys without a value fail with
// model.ErrMissingRequiredConfig.
func Resolve(root *Root, ov *Overrides) (*model.Environment, error) {
	if root == nil {
		root = &Root{}
	}
	if ov == nil {
		ov = &Overrides{}
	}

	platform, err := model.ParsePlatform(first(ov.Platform, root.Platform))
	if err != nil {
		return nil, err
	}

	image := first(ov.Image, root.App.Image)
	if image == "" {
		return nil, model.MissingConfig("image")
	}
	if _, err := name.ParseReference(image); err != nil {
		return nil, model.InvalidConfig("image", err.Error())
	}

	dbName := first(ov.DatabaseName, root.Database.Name)
	if dbName == "" {
		return nil, model.MissingConfig("database.name")
	}
	dbPass := first(ov.DatabasePass, root.Database.Password)
	if dbPass == "" {
		return nil, model.MissingConfig("database.password")
	}
	cachePass := first(ov.CachePass, root.Cache.Password)
	if cachePass == "" {
		return nil, model.MissingConfig("cache.password")
	}
	secretKey := first(ov.SecretKeyBase, root.App.SecretKeyBase)
	if secretKey == "" {
		return nil, model.MissingConfig("app.secretKeyBase")
	}

	replicas := model.DefaultReplicas
	if s := first(ov.Replicas, root.App.Replicas); s != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err != nil || n < 1 {
			return nil, model.InvalidConfig("app.replicas", fmt.Sprintf("want a positive integer, got %q", s))
		}
		replicas = int32(n)
	}

	domain := strings.ToLower(first(ov.Domain, root.Domain, model.DefaultDomain))
	if errs := validation.IsDNS1123Subdomain(domain); len(errs) > 0 {
		return nil, model.InvalidConfig("domain", strings.Join(errs, "; "))
	}
	subdomain := strings.ToLower(first(ov.Subdomain, root.Subdomain))
	if subdomain != "" {
		if errs := validation.IsDNS1123Label(subdomain); len(errs) > 0 {
			return nil, model.InvalidConfig("subdomain", strings.Join(errs, "; "))
		}
	}

	stack := first(ov.Stack, root.Stack, model.DefaultStack)
	if errs := validation.IsDNS1123Label(stack); len(errs) > 0 {
		return nil, model.InvalidConfig("stack", strings.Join(errs, "; "))
	}

	dnsProvider := first(ov.DNSProvider, root.DNS.Provider, model.DefaultDNSProvider)
	dnsToken := ov.DNSToken
	if dnsToken == "" && dnsProvider == "cloudflare" {
		dnsToken = ov.CloudflareKey
	}
	dnsToken = first(dnsToken, root.DNS.APIToken)

	platformSettings := map[string]string{}
	switch platform {
	case model.PlatformLocal:
		maps.Copy(platformSettings, root.Local.Settings)
	case model.PlatformCloud:
		maps.Copy(platformSettings, root.Cloud.Settings)
	}
	maps.Copy(platformSettings, ov.Settings)

	dnsSettings := map[string]string{}
	maps.Copy(dnsSettings, root.DNS.Settings)
	maps.Copy(dnsSettings, ov.Settings)

	return &model.Environment{
		Stack:        stack,
		Platform:     platform,
		Domain:       domain,
		Subdomain:    subdomain,
		Image:        image,
		Replicas:     replicas,
		DatabaseName: dbName,
		Credentials: model.Credentials{
			DatabasePassword: model.Secret(dbPass),
			CachePassword:    model.Secret(cachePass),
			AppSecretKey:     model.Secret(secretKey),
			DNSToken:         model.Secret(dnsToken),
			Registry: model.RegistryCredential{
				Server:   first(ov.RegistryHost, root.Registry.Server, model.DefaultRegistry),
				Username: first(ov.RegistryUser, root.Registry.Username),
				Password: model.Secret(first(ov.RegistryPass, root.Registry.Password)),
			},
		},
		ACMEEmail:        first(ov.ACMEEmail, root.ACME.Email),
		DNSProvider:      dnsProvider,
		DNSSettings:      dnsSettings,
		PlatformSettings: platformSettings,
	}, nil
}

// first returns the first non-blank value.
func first(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
