package stack

import (
	"context"
	"sync"

	"github.com/kompox/webstack/adapters/kube"
	"github.com/kompox/webstack/domain/model"
	"k8s.io/apimachinery/pkg/runtime"
)

type fakeClusterPort struct {
	mu            sync.Mutex
	provisioned   bool
	forced        bool
	deprovisioned bool
}

func (f *fakeClusterPort) Status(_ context.Context, h *model.ComputeHandle) (*model.ClusterStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &model.ClusterStatus{Driver: h.Driver, Provisioned: f.provisioned, Ready: f.provisioned}, nil
}

func (f *fakeClusterPort) Provision(_ context.Context, _ *model.ComputeHandle, opts ...model.ClusterProvisionOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := &model.ClusterProvisionOptions{}
	for _, opt := range opts {
		opt(o)
	}
	f.forced = o.Force
	f.provisioned = true
	return nil
}

func (f *fakeClusterPort) Deprovision(_ context.Context, _ *model.ComputeHandle, _ ...model.ClusterDeprovisionOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.provisioned = false
	f.deprovisioned = true
	return nil
}

func (f *fakeClusterPort) Kubeconfig(context.Context, *model.ComputeHandle) ([]byte, error) {
	return []byte("apiVersion: v1\nkind: Config\n"), nil
}

// fakeTarget records submissions in order and reports the edge address after
// addressAfter reads.
type fakeTarget struct {
	mu           sync.Mutex
	events       []string
	address      model.EdgeAddress
	addressAfter int
	reads        int
}

func (f *fakeTarget) record(ev string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeTarget) Apply(_ context.Context, objs []runtime.Object) error {
	for _, o := range objs {
		f.record("apply:" + objectRef(o))
	}
	return nil
}

func (f *fakeTarget) Delete(_ context.Context, objs []runtime.Object) error {
	for _, o := range objs {
		f.record("delete:" + objectRef(o))
	}
	return nil
}

func (f *fakeTarget) InstallRelease(_ context.Context, rel *kube.Release) error {
	f.record("install:" + rel.Name)
	return nil
}

func (f *fakeTarget) UninstallRelease(_ context.Context, rel *kube.Release) error {
	f.record("uninstall:" + rel.Name)
	return nil
}

func (f *fakeTarget) EdgeAddress(context.Context, string, string) (model.EdgeAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.reads <= f.addressAfter {
		return model.EdgeAddress{}, nil
	}
	return f.address, nil
}

// index returns the position of ev, or -1.
func (f *fakeTarget) index(ev string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.events {
		if e == ev {
			return i
		}
	}
	return -1
}

type fakeDNSPort struct {
	mu      sync.Mutex
	upserts []model.DNSRecordSet
	deletes []model.DNSRecordSet
}

func (f *fakeDNSPort) Upsert(_ context.Context, _ model.DNSAccess, rset model.DNSRecordSet) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, rset)
	return model.DNSActionCreated, nil
}

func (f *fakeDNSPort) Delete(_ context.Context, _ model.DNSAccess, rset model.DNSRecordSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, rset)
	return nil
}

func (f *fakeDNSPort) Solver(model.DNSAccess) (*model.DNSSolver, error) {
	return &model.DNSSolver{
		SecretName: "cloudflare-api-token-secret",
		SecretKey:  "api-token",
		Config: map[string]any{"cloudflare": map[string]any{
			"apiTokenSecretRef": map[string]any{"name": "cloudflare-api-token-secret", "key": "api-token"},
		}},
	}, nil
}

func cloudEnv() *model.Environment {
	return &model.Environment{
		Stack:        "webstack",
		Platform:     model.PlatformCloud,
		Domain:       "example.com",
		Subdomain:    "app",
		Image:        "registry/app:v1",
		Replicas:     3,
		DatabaseName: "appdb",
		Credentials: model.Credentials{
			DatabasePassword: "db-pass-123",
			CachePassword:    "cache-pass-456",
			AppSecretKey:     "app-secret-789",
			DNSToken:         "dns-token-abc",
			Registry:         model.RegistryCredential{Server: "ghcr.io", Username: "bot", Password: "registry-pass-def"},
		},
		DNSProvider: "cloudflare",
	}
}

func localEnv() *model.Environment {
	env := cloudEnv()
	env.Platform = model.PlatformLocal
	env.Credentials.DNSToken = ""
	env.Credentials.Registry = model.RegistryCredential{}
	return env
}
