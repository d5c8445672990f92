package cluster

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kompox/webstack/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/tools/clientcmd"
)

const rawKubeconfig = `apiVersion: v1
kind: Config
current-context: aks-admin
contexts:
- name: aks-admin
  context:
    cluster: aks
    user: admin
clusters:
- name: aks
  cluster:
    server: https://aks.example.net:443
users:
- name: admin
  user:
    token: t0k3n
`

type fakeClusterPort struct {
	handle      *model.ComputeHandle
	forced      bool
	provisioned bool
}

func (f *fakeClusterPort) Status(_ context.Context, h *model.ComputeHandle) (*model.ClusterStatus, error) {
	f.handle = h
	return &model.ClusterStatus{Driver: h.Driver, Provisioned: f.provisioned, Ready: f.provisioned}, nil
}

func (f *fakeClusterPort) Provision(_ context.Context, h *model.ComputeHandle, opts ...model.ClusterProvisionOption) error {
	o := &model.ClusterProvisionOptions{}
	for _, opt := range opts {
		opt(o)
	}
	f.handle, f.forced, f.provisioned = h, o.Force, true
	return nil
}

func (f *fakeClusterPort) Deprovision(_ context.Context, h *model.ComputeHandle, _ ...model.ClusterDeprovisionOption) error {
	f.handle, f.provisioned = h, false
	return nil
}

func (f *fakeClusterPort) Kubeconfig(_ context.Context, h *model.ComputeHandle) ([]byte, error) {
	f.handle = h
	return []byte(rawKubeconfig), nil
}

func env() *model.Environment {
	return &model.Environment{Stack: "shop", Platform: model.PlatformCloud, Domain: "example.com", Replicas: 1}
}

func TestStatusProvision(t *testing.T) {
	ctx := context.Background()
	port := &fakeClusterPort{}
	u := &UseCase{ClusterPort: port}

	st, err := u.Status(ctx, &StatusInput{Env: env()})
	require.NoError(t, err)
	assert.False(t, st.Provisioned)
	assert.Equal(t, "shop", st.ClusterName)
	assert.Equal(t, model.PlatformCloud, st.Platform)

	require.NoError(t, u.Provision(ctx, &ProvisionInput{Env: env(), Force: true}))
	assert.True(t, port.forced)
	st, err = u.Status(ctx, &StatusInput{Env: env()})
	require.NoError(t, err)
	assert.True(t, st.Ready)

	require.NoError(t, u.Deprovision(ctx, &DeprovisionInput{Env: env()}))
	assert.False(t, port.provisioned)

	bad := env()
	bad.Platform = "moon"
	_, err = u.Status(ctx, &StatusInput{Env: bad})
	assert.ErrorIs(t, err, model.ErrUnknownPlatform)
}

func TestKubeconfig(t *testing.T) {
	ctx := context.Background()
	u := &UseCase{ClusterPort: &fakeClusterPort{}}

	out, err := u.Kubeconfig(ctx, &KubeconfigInput{Env: env(), Namespace: "default"})
	require.NoError(t, err)
	cfg, err := clientcmd.Load(out.Data)
	require.NoError(t, err)
	assert.Equal(t, "shop", cfg.CurrentContext)
	assert.Equal(t, "default", cfg.Contexts["shop"].Namespace)

	path := filepath.Join(t.TempDir(), "config")
	out, err = u.Kubeconfig(ctx, &KubeconfigInput{Env: env(), Merge: true, Path: path})
	require.NoError(t, err)
	require.NotNil(t, out.Merged)
	assert.Equal(t, "shop", out.Merged.Context)
	assert.True(t, out.Merged.Current)

	written, err := clientcmd.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://aks.example.net:443", written.Clusters["shop"].Server)
}
