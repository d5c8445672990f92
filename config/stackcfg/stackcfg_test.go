package stackcfg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kompox/webstack/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
version: v1
stack: demo
platform: cloud
domain: Example.com
subdomain: app
app:
  image: ghcr.io/acme/app:1.2.3
  replicas: 2
  secretKeyBase: skb
database:
  name: appdb
  password: dbpw
cache:
  password: cachepw
registry:
  username: bot
  password: regpw
dns:
  provider: cloudflare
  apiToken: cf-token
acme:
  email: ops@example.com
cloud:
  settings:
    AZURE_LOCATION: japaneast
local:
  settings:
    KUBE_CONTEXT: minikube
`

func completeRoot() *Root {
	return &Root{
		Platform: "local",
		App:      App{Image: "app:dev", SecretKeyBase: "skb"},
		Database: Database{Name: "appdb", Password: "dbpw"},
		Cache:    Cache{Password: "cachepw"},
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	root, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cloud", root.Platform)
	assert.Equal(t, "2", root.App.Replicas)
	assert.Equal(t, "japaneast", root.Cloud.Settings["AZURE_LOCATION"])

	env, err := Resolve(root, nil)
	require.NoError(t, err)
	assert.Equal(t, model.PlatformCloud, env.Platform)
	assert.Equal(t, "demo", env.Stack)
	assert.Equal(t, "example.com", env.Domain)
	assert.Equal(t, "app.example.com", env.Hostname())
	assert.Equal(t, int32(2), env.Replicas)
	assert.Equal(t, "ghcr.io", env.Credentials.Registry.Server)
	assert.True(t, env.Credentials.Registry.Complete())
	assert.Equal(t, "cf-token", env.Credentials.DNSToken.Reveal())
	assert.Equal(t, "japaneast", env.PlatformSettings["AZURE_LOCATION"])
	assert.NotContains(t, env.PlatformSettings, "KUBE_CONTEXT")
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)

	root, err := LoadOptional(filepath.Join(dir, "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, &Root{}, root)

	_, err = Parse([]byte("platform: local\nunknownKey: 1\n"))
	assert.Error(t, err)

	root, err = Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, &Root{}, root)
}

func TestResolveDefaults(t *testing.T) {
	env, err := Resolve(completeRoot(), nil)
	require.NoError(t, err)
	assert.Equal(t, model.PlatformLocal, env.Platform)
	assert.Equal(t, "localhost", env.Domain)
	assert.Equal(t, "localhost", env.Hostname())
	assert.Equal(t, int32(1), env.Replicas)
	assert.Equal(t, model.DefaultStack, env.Stack)
	assert.Equal(t, "cloudflare", env.DNSProvider)
	assert.Equal(t, "ghcr.io", env.Credentials.Registry.Server)
	assert.False(t, env.Credentials.Registry.Complete())
}

func TestResolveMissing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Root)
		key    string
		want   error
	}{
		{name: "platform", mutate: func(r *Root) { r.Platform = "" }, key: "platform", want: model.ErrMissingRequiredConfig},
		{name: "image", mutate: func(r *Root) { r.App.Image = "" }, key: "image", want: model.ErrMissingRequiredConfig},
		{name: "database name", mutate: func(r *Root) { r.Database.Name = "" }, key: "database.name", want: model.ErrMissingRequiredConfig},
		{name: "database password", mutate: func(r *Root) { r.Database.Password = "" }, key: "database.password", want: model.ErrMissingRequiredConfig},
		{name: "cache password", mutate: func(r *Root) { r.Cache.Password = " " }, key: "cache.password", want: model.ErrMissingRequiredConfig},
		{name: "secret key", mutate: func(r *Root) { r.App.SecretKeyBase = "" }, key: "app.secretKeyBase", want: model.ErrMissingRequiredConfig},
		{name: "replicas text", mutate: func(r *Root) { r.App.Replicas = "two" }, key: "app.replicas", want: model.ErrInvalidConfig},
		{name: "replicas zero", mutate: func(r *Root) { r.App.Replicas = "0" }, key: "app.replicas", want: model.ErrInvalidConfig},
		{name: "image format", mutate: func(r *Root) { r.App.Image = "UPPER/Case::x" }, key: "image", want: model.ErrInvalidConfig},
		{name: "domain format", mutate: func(r *Root) { r.Domain = "bad_domain" }, key: "domain", want: model.ErrInvalidConfig},
		{name: "subdomain format", mutate: func(r *Root) { r.Subdomain = "a.b" }, key: "subdomain", want: model.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := completeRoot()
			tt.mutate(r)
			_, err := Resolve(r, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var ce *model.ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.key, ce.Key)
		})
	}
}

func TestResolveUnknownPlatform(t *testing.T) {
	r := completeRoot()
	r.Platform = "aws"
	_, err := Resolve(r, nil)
	assert.ErrorIs(t, err, model.ErrUnknownPlatform)
}

// The platform check precedes every other required key.
func TestResolvePlatformCheckedFirst(t *testing.T) {
	_, err := Resolve(&Root{}, nil)
	var ce *model.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "platform", ce.Key)
}

func TestOverrides(t *testing.T) {
	ov, err := LoadOverrides([]string{
		"WEBSTACK_PLATFORM=cloud",
		"DOMAIN=example.org",
		"SUBDOMAIN=",
		"WEBSTACK_APP_REPLICA_COUNT=3",
		"DOCKER_IMAGE_NAME=ghcr.io/acme/app:2",
		"DOCKER_USERNAME=bot",
		"DOCKER_PASSWORD=pw",
		"DOCKER_AUTH_DOMAIN=registry.example.org",
		"CLOUDFLARE_API_TOKEN=cf",
		"AZURE_SUBSCRIPTION_ID=sub",
		"KUBE_CONTEXT=",
		"UNRELATED=x",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"AZURE_SUBSCRIPTION_ID": "sub"}, ov.Settings)

	root := completeRoot()
	root.Subdomain = "www"
	env, err := Resolve(root, ov)
	require.NoError(t, err)
	assert.Equal(t, model.PlatformCloud, env.Platform)
	assert.Equal(t, "example.org", env.Domain)
	// An empty override counts as absent, so the stored subdomain wins.
	assert.Equal(t, "www.example.org", env.Hostname())
	assert.Equal(t, int32(3), env.Replicas)
	assert.Equal(t, "ghcr.io/acme/app:2", env.Image)
	assert.Equal(t, "registry.example.org", env.Credentials.Registry.Server)
	assert.Equal(t, "cf", env.Credentials.DNSToken.Reveal())
	assert.Equal(t, "sub", env.PlatformSettings["AZURE_SUBSCRIPTION_ID"])
	assert.Equal(t, "sub", env.DNSSettings["AZURE_SUBSCRIPTION_ID"])
}

func TestOverridesDNSToken(t *testing.T) {
	ov, err := LoadOverrides([]string{"WEBSTACK_DNS_PROVIDER=azuredns", "CLOUDFLARE_API_TOKEN=cf", "WEBSTACK_DNS_TOKEN=sp-secret"})
	require.NoError(t, err)
	env, err := Resolve(completeRoot(), ov)
	require.NoError(t, err)
	assert.Equal(t, "azuredns", env.DNSProvider)
	assert.Equal(t, "sp-secret", env.Credentials.DNSToken.Reveal())

	ov, err = LoadOverrides([]string{"WEBSTACK_DNS_PROVIDER=azuredns", "CLOUDFLARE_API_TOKEN=cf"})
	require.NoError(t, err)
	env, err = Resolve(completeRoot(), ov)
	require.NoError(t, err)
	assert.True(t, env.Credentials.DNSToken.IsZero())
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("WEBSTACK_TEST_DOTENV=from-file\nWEBSTACK_TEST_PRESET=from-file\n"), 0o644))
	t.Setenv("WEBSTACK_TEST_PRESET", "from-env")
	t.Setenv("WEBSTACK_TEST_DOTENV", "")
	os.Unsetenv("WEBSTACK_TEST_DOTENV")

	require.NoError(t, LoadDotenv(path, true))
	assert.Equal(t, "from-file", os.Getenv("WEBSTACK_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("WEBSTACK_TEST_PRESET"))

	assert.NoError(t, LoadDotenv(filepath.Join(dir, "absent.env"), false))
	assert.Error(t, LoadDotenv(filepath.Join(dir, "absent.env"), true))
}
