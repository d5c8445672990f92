// Package local implements the provider driver for a developer workstation
// cluster (k3s, kind, minikube, Docker Desktop) reached through an existing kubeconfig.
package local

import (
	"context"
	"fmt"
	"path/filepath"

	providerdrv "github.com/kompox/webstack/adapters/drivers/provider"
	"github.com/kompox/webstack/adapters/kube"
	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/internal/kubeconfig"
	"github.com/kompox/webstack/internal/logging"
	"k8s.io/client-go/tools/clientcmd"
)

// Settings keys.
const (
	settingKubeconfig  = "KUBECONFIG"
	settingKubeContext = "KUBE_CONTEXT"
)

// driver implements the local provider driver. The cluster is owned by the
// developer; provisioning only proves it is reachable.
type driver struct {
	kubeconfigPath string
	kubeContext    string
}

// ID returns the provider identifier.
func (d *driver) ID() string { return "local" }

// rawKubeconfig loads the developer kubeconfig honoring KUBECONFIG path lists.
func (d *driver) rawKubeconfig() ([]byte, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if d.kubeconfigPath != "" {
		rules.Precedence = filepath.SplitList(d.kubeconfigPath)
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: d.kubeContext}
	raw, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).RawConfig()
	if err != nil {
		return nil, fmt.Errorf("load kubeconfig: %w", err)
	}
	if d.kubeContext != "" {
		if _, ok := raw.Contexts[d.kubeContext]; !ok {
			return nil, fmt.Errorf("context %q not found in kubeconfig", d.kubeContext)
		}
		raw.CurrentContext = d.kubeContext
	}
	data, err := clientcmd.Write(raw)
	if err != nil {
		return nil, fmt.Errorf("serialize kubeconfig: %w", err)
	}
	return data, nil
}

// ClusterKubeconfig returns a single-context kubeconfig for the local cluster.
func (d *driver) ClusterKubeconfig(ctx context.Context, h *model.ComputeHandle) ([]byte, error) {
	data, err := d.rawKubeconfig()
	if err != nil {
		return nil, err
	}
	cfg, err := kubeconfig.Normalize(data, "", "")
	if err != nil {
		return nil, err
	}
	return clientcmd.Write(*cfg)
}

// ClusterProvision verifies the local cluster answers. It never creates one.
func (d *driver) ClusterProvision(ctx context.Context, h *model.ComputeHandle, _ ...model.ClusterProvisionOption) error {
	st, err := d.ClusterStatus(ctx, h)
	if err != nil {
		return err
	}
	if !st.Ready {
		return fmt.Errorf("%w: %s", model.ErrClusterNotReady, st.Detail)
	}
	logging.FromContext(ctx).Info(ctx, "local cluster reachable", "version", st.Version)
	return nil
}

// ClusterDeprovision leaves the developer cluster in place.
func (d *driver) ClusterDeprovision(ctx context.Context, h *model.ComputeHandle, _ ...model.ClusterDeprovisionOption) error {
	logging.FromContext(ctx).Info(ctx, "local cluster is not managed, skipping deprovision")
	return nil
}

// ClusterStatus reports the local cluster as provisioned when a kubeconfig
// resolves, and ready when the API server answers.
func (d *driver) ClusterStatus(ctx context.Context, h *model.ComputeHandle) (*model.ClusterStatus, error) {
	st := &model.ClusterStatus{Driver: d.ID()}
	data, err := d.ClusterKubeconfig(ctx, h)
	if err != nil {
		st.Detail = err.Error()
		return st, nil
	}
	st.Provisioned = true
	c, err := kube.NewClient(data)
	if err != nil {
		st.Detail = err.Error()
		return st, nil
	}
	v, err := c.ServerVersion(ctx)
	if err != nil {
		st.Detail = err.Error()
		return st, nil
	}
	st.Ready = true
	st.Version = v
	return st, nil
}

// init registers the local driver.
func init() {
	providerdrv.Register("local", func(settings map[string]string) (providerdrv.Driver, error) {
		return &driver{
			kubeconfigPath: settings[settingKubeconfig],
			kubeContext:    settings[settingKubeContext],
		}, nil
	})
}
