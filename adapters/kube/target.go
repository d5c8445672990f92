package kube

import (
	"context"

	"github.com/kompox/webstack/domain/model"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// Target bundles the clients needed to converge one cluster.
type Target struct {
	Client    *Client
	Installer *Installer
}

// NewTarget builds a Target from kubeconfig bytes.
func NewTarget(_ context.Context, kubeconfig []byte) (*Target, error) {
	c, err := NewClient(kubeconfig)
	if err != nil {
		return nil, err
	}
	return &Target{Client: c, Installer: NewInstaller(c, kubeconfig)}, nil
}

// Apply server-side applies objs after making sure their namespaces exist.
func (t *Target) Apply(ctx context.Context, objs []runtime.Object) error {
	var metas []metav1.Object
	for _, o := range objs {
		if m, err := meta.Accessor(o); err == nil {
			metas = append(metas, m)
		}
	}
	for _, ns := range namespacesOf(metas) {
		if err := t.Client.EnsureNamespace(ctx, ns); err != nil {
			return err
		}
	}
	return t.Client.Apply(ctx, objs, AppNamespace)
}

// Delete removes objs, ignoring objects that are already gone.
func (t *Target) Delete(ctx context.Context, objs []runtime.Object) error {
	_, err := t.Client.Delete(ctx, objs, AppNamespace)
	return err
}

// InstallRelease upgrades or installs rel.
func (t *Target) InstallRelease(ctx context.Context, rel *Release) error {
	return t.Installer.UpgradeOrInstall(ctx, rel)
}

// UninstallRelease removes rel.
func (t *Target) UninstallRelease(ctx context.Context, rel *Release) error {
	return t.Installer.Uninstall(ctx, rel)
}

// EdgeAddress reads the external address of the edge Service.
func (t *Target) EdgeAddress(ctx context.Context, namespace, name string) (model.EdgeAddress, error) {
	return t.Client.LoadBalancerAddress(ctx, namespace, name)
}
