package kube

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kompox/webstack/internal/logging"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	helmdriver "helm.sh/helm/v3/pkg/storage/driver"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// DefaultReleaseTimeout bounds a single Helm install, upgrade or uninstall.
const DefaultReleaseTimeout = 5 * time.Minute

// Installer performs Helm release operations against one cluster.
type Installer struct {
	Client *Client
	// Kubeconfig is handed to Helm in memory. Helm operations fail when empty.
	Kubeconfig []byte
}

// NewInstaller returns an Installer for the cluster c was built from.
func NewInstaller(c *Client, kubeconfig []byte) *Installer {
	return &Installer{Client: c, Kubeconfig: kubeconfig}
}

// memoryGetter serves Helm's REST client needs from kubeconfig bytes, pinned
// to one namespace.
type memoryGetter struct {
	config clientcmd.ClientConfig
}

func newMemoryGetter(kubeconfig []byte, namespace string) (*memoryGetter, error) {
	raw, err := clientcmd.Load(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("parse kubeconfig: %w", err)
	}
	overrides := &clientcmd.ConfigOverrides{}
	overrides.Context.Namespace = namespace
	return &memoryGetter{config: clientcmd.NewDefaultClientConfig(*raw, overrides)}, nil
}

func (g *memoryGetter) ToRESTConfig() (*rest.Config, error) { return g.config.ClientConfig() }

func (g *memoryGetter) ToDiscoveryClient() (discovery.CachedDiscoveryInterface, error) {
	cfg, err := g.ToRESTConfig()
	if err != nil {
		return nil, err
	}
	dc, err := discovery.NewDiscoveryClientForConfig(cfg)
	if err != nil {
		return nil, err
	}
	return memory.NewMemCacheClient(dc), nil
}

func (g *memoryGetter) ToRESTMapper() (meta.RESTMapper, error) {
	dc, err := g.ToDiscoveryClient()
	if err != nil {
		return nil, err
	}
	return restmapper.NewDeferredDiscoveryRESTMapper(dc), nil
}

func (g *memoryGetter) ToRawKubeConfigLoader() clientcmd.ClientConfig { return g.config }

// actionConfig prepares a Helm action configuration for namespace ns.
// Release records are stored as Secrets.
func (i *Installer) actionConfig(ctx context.Context, ns string) (*action.Configuration, error) {
	if i == nil || i.Client == nil {
		return nil, fmt.Errorf("kube installer is not initialized")
	}
	if len(i.Kubeconfig) == 0 {
		return nil, fmt.Errorf("kubeconfig is required for Helm operations")
	}
	getter, err := newMemoryGetter(i.Kubeconfig, ns)
	if err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx)
	cfg := new(action.Configuration)
	if err := cfg.Init(getter, ns, "secret", func(format string, v ...any) {
		logger.Debugf(ctx, "helm: "+format, v...)
	}); err != nil {
		return nil, fmt.Errorf("init helm configuration: %w", err)
	}
	return cfg, nil
}

func (rel *Release) validate() error {
	if rel == nil || rel.Name == "" || rel.Namespace == "" {
		return fmt.Errorf("release name and namespace are required")
	}
	if rel.Chart == "" || rel.Version == "" {
		return fmt.Errorf("release %s: chart and pinned version are required", rel.Name)
	}
	return nil
}

func (rel *Release) timeout() time.Duration {
	if rel.Timeout > 0 {
		return rel.Timeout
	}
	return DefaultReleaseTimeout
}

// loadChart downloads the pinned chart into Helm's repository cache.
func loadChart(rel *Release) (*chart.Chart, error) {
	cpo := action.ChartPathOptions{RepoURL: rel.RepoURL, Version: rel.Version}
	path, err := cpo.LocateChart(rel.Chart, cli.New())
	if err != nil {
		return nil, fmt.Errorf("locate %s chart %s: %w", rel.Chart, rel.Version, err)
	}
	ch, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s chart: %w", rel.Chart, err)
	}
	return ch, nil
}

// UpgradeOrInstall converges rel. It installs when the release has no
// history and upgrades otherwise. The release namespace is created when missing.
// Unless rel.NoWait is set, a failed install or upgrade is rolled back.
func (i *Installer) UpgradeOrInstall(ctx context.Context, rel *Release) (err error) {
	if err := rel.validate(); err != nil {
		return err
	}
	logger := logging.FromContext(ctx).With("release", rel.Name, "ns", rel.Namespace, "chart", rel.Chart, "version", rel.Version)
	msgSym := "KubeInstaller:UpgradeOrInstall"
	logger.Info(ctx, msgSym+"/s")
	defer func() {
		if err == nil {
			logger.Info(ctx, msgSym+"/eok")
		} else {
			logger.Info(ctx, msgSym+"/efail", "err", err)
		}
	}()

	cfg, err := i.actionConfig(ctx, rel.Namespace)
	if err != nil {
		return err
	}
	if err := i.Client.EnsureNamespace(ctx, rel.Namespace); err != nil {
		return err
	}
	ch, err := loadChart(rel)
	if err != nil {
		return err
	}
	values := map[string]any(rel.Values)
	if values == nil {
		values = map[string]any{}
	}

	hist := action.NewHistory(cfg)
	hist.Max = 1
	switch _, herr := hist.Run(rel.Name); {
	case errors.Is(herr, helmdriver.ErrReleaseNotFound):
		in := action.NewInstall(cfg)
		in.Namespace = rel.Namespace
		in.ReleaseName = rel.Name
		in.Version = rel.Version
		in.Wait = !rel.NoWait
		in.Atomic = !rel.NoWait
		in.Timeout = rel.timeout()
		if _, err := in.RunWithContext(ctx, ch, values); err != nil {
			return fmt.Errorf("helm install %s: %w", rel.Name, err)
		}
		logger.Debug(ctx, "release installed")
	case herr != nil:
		return fmt.Errorf("helm history %s: %w", rel.Name, herr)
	default:
		up := action.NewUpgrade(cfg)
		up.Namespace = rel.Namespace
		up.Version = rel.Version
		up.Wait = !rel.NoWait
		up.Atomic = !rel.NoWait
		up.Timeout = rel.timeout()
		if _, err := up.RunWithContext(ctx, rel.Name, ch, values); err != nil {
			return fmt.Errorf("helm upgrade %s: %w", rel.Name, err)
		}
		logger.Debug(ctx, "release upgraded")
	}
	return nil
}

// Uninstall removes rel and waits for its resources to go. A release that
// does not exist is not an error.
func (i *Installer) Uninstall(ctx context.Context, rel *Release) (err error) {
	if rel == nil || rel.Name == "" || rel.Namespace == "" {
		return fmt.Errorf("release name and namespace are required")
	}
	logger := logging.FromContext(ctx).With("release", rel.Name, "ns", rel.Namespace)
	msgSym := "KubeInstaller:Uninstall"
	logger.Info(ctx, msgSym+"/s")
	defer func() {
		if err == nil {
			logger.Info(ctx, msgSym+"/eok")
		} else {
			logger.Info(ctx, msgSym+"/efail", "err", err)
		}
	}()

	cfg, err := i.actionConfig(ctx, rel.Namespace)
	if err != nil {
		return err
	}
	un := action.NewUninstall(cfg)
	un.Wait = true
	un.Timeout = rel.timeout()
	if _, err := un.Run(rel.Name); err != nil && !errors.Is(err, helmdriver.ErrReleaseNotFound) {
		return fmt.Errorf("helm uninstall %s: %w", rel.Name, err)
	}
	return nil
}
