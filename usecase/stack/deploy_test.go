package stack

import (
	"context"
	"testing"
	"time"

	"github.com/kompox/webstack/adapters/store/inmem"
	"github.com/kompox/webstack/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUseCase(target *fakeTarget, cluster *fakeClusterPort, dns *fakeDNSPort) *UseCase {
	return &UseCase{
		Repos:       &Repos{Output: inmem.NewOutputRepository()},
		ClusterPort: cluster,
		DNSPort:     dns,
		NewTarget: func(context.Context, []byte) (Target, error) {
			return target, nil
		},
		EdgePollInterval: time.Millisecond,
	}
}

func TestUpCloud(t *testing.T) {
	ctx := context.Background()
	target := &fakeTarget{address: model.EdgeAddress{Hostname: "lb.cloudapp.example.net"}, addressAfter: 3}
	cluster := &fakeClusterPort{}
	dns := &fakeDNSPort{}
	u := newUseCase(target, cluster, dns)

	out, err := u.Up(ctx, &UpInput{Env: cloudEnv(), EdgeTimeout: 5 * time.Second, ForceProvision: true})
	require.NoError(t, err)
	assert.True(t, cluster.provisioned)
	assert.True(t, cluster.forced)

	assert.Equal(t, "app.example.com", out.Hostname)
	assert.Equal(t, "lb.cloudapp.example.net", out.EdgeAddress.Hostname)
	assert.Equal(t, model.DNSActionCreated, out.DNSAction)

	require.Len(t, dns.upserts, 1)
	assert.Equal(t, "app.example.com", dns.upserts[0].FQDN)
	assert.Equal(t, model.DNSRecordTypeCNAME, dns.upserts[0].Type)
	assert.Equal(t, []string{"lb.cloudapp.example.net"}, dns.upserts[0].RData)

	// Dependency order of submissions.
	before := func(a, b string) {
		t.Helper()
		ia, ib := target.index(a), target.index(b)
		require.NotEqual(t, -1, ia, a)
		require.NotEqual(t, -1, ib, b)
		assert.Less(t, ia, ib, "%s before %s", a, b)
	}
	before("install:cert-manager", "apply:ClusterIssuer/letsencrypt-prod")
	before("apply:Secret/default/app-secrets", "apply:Deployment/default/main-app")
	before("apply:Secret/default/docker-secret", "apply:Deployment/default/main-app")
	before("apply:Deployment/default/main-app", "apply:Service/default/service-app")
	before("apply:Service/default/service-app", "apply:Ingress/default/app-ingress")
	before("install:ingress-nginx", "apply:Ingress/default/app-ingress")

	got, err := u.Repos.Output.Get(ctx, "webstack", model.OutputEdgeAddress)
	require.NoError(t, err)
	assert.Equal(t, "lb.cloudapp.example.net", got.Value)
	got, err = u.Repos.Output.Get(ctx, "webstack", model.OutputHostname)
	require.NoError(t, err)
	assert.Equal(t, "app.example.com", got.Value)
}

func TestUpEdgeTimeout(t *testing.T) {
	target := &fakeTarget{addressAfter: 1 << 30}
	u := newUseCase(target, &fakeClusterPort{}, &fakeDNSPort{})

	_, err := u.Up(context.Background(), &UpInput{Env: cloudEnv(), EdgeTimeout: 50 * time.Millisecond})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrEdgeAddressTimeout)

	_, err = u.Repos.Output.Get(context.Background(), "webstack", model.OutputHostname)
	assert.ErrorIs(t, err, model.ErrOutputNotFound, "failed runs export nothing")
}

func TestUpLocal(t *testing.T) {
	ctx := context.Background()
	target := &fakeTarget{address: model.EdgeAddress{IP: "192.168.49.2"}}
	dns := &fakeDNSPort{}
	u := newUseCase(target, &fakeClusterPort{}, dns)

	out, err := u.Up(ctx, &UpInput{Env: localEnv()})
	require.NoError(t, err)
	assert.Empty(t, dns.upserts)
	assert.Empty(t, out.DNSAction)
	assert.Equal(t, -1, target.index("install:cert-manager"))
	assert.Equal(t, -1, target.index("apply:Secret/default/docker-secret"))

	got, err := u.Repos.Output.Get(ctx, "webstack", model.OutputPlatform)
	require.NoError(t, err)
	assert.Equal(t, "local", got.Value)
}

func TestUpInvalidInput(t *testing.T) {
	u := newUseCase(&fakeTarget{}, &fakeClusterPort{}, &fakeDNSPort{})
	_, err := u.Up(context.Background(), nil)
	assert.Error(t, err)

	env := cloudEnv()
	env.Credentials.DNSToken = ""
	cluster := &fakeClusterPort{}
	u = newUseCase(&fakeTarget{}, cluster, &fakeDNSPort{})
	_, err = u.Up(context.Background(), &UpInput{Env: env})
	assert.ErrorIs(t, err, model.ErrMissingCredential)
	assert.False(t, cluster.provisioned, "nothing is submitted when composition fails")
}

func TestDestroy(t *testing.T) {
	ctx := context.Background()
	target := &fakeTarget{address: model.EdgeAddress{Hostname: "lb.cloudapp.example.net"}}
	cluster := &fakeClusterPort{}
	dns := &fakeDNSPort{}
	u := newUseCase(target, cluster, dns)

	_, err := u.Up(ctx, &UpInput{Env: cloudEnv(), EdgeTimeout: 5 * time.Second})
	require.NoError(t, err)

	out, err := u.Destroy(ctx, &DestroyInput{Env: cloudEnv(), Deprovision: true})
	require.NoError(t, err)
	assert.True(t, out.Deprovisioned)
	assert.True(t, cluster.deprovisioned)
	assert.Contains(t, out.Removed, StepDNSRecord)
	assert.NotContains(t, out.Removed, StepCluster)

	require.Len(t, dns.deletes, 1)
	assert.Equal(t, model.DNSRecordTypeCNAME, dns.deletes[0].Type)

	before := func(a, b string) {
		t.Helper()
		ia, ib := target.index(a), target.index(b)
		require.NotEqual(t, -1, ia, a)
		require.NotEqual(t, -1, ib, b)
		assert.Less(t, ia, ib, "%s before %s", a, b)
	}
	before("delete:Ingress/default/app-ingress", "uninstall:ingress-nginx")
	before("delete:ClusterIssuer/letsencrypt-prod", "uninstall:cert-manager")
	before("delete:Service/default/service-app", "delete:Deployment/default/main-app")

	_, err = u.Repos.Output.Get(ctx, "webstack", model.OutputEdgeAddress)
	assert.ErrorIs(t, err, model.ErrOutputNotFound)
}

func TestDestroyUnprovisioned(t *testing.T) {
	target := &fakeTarget{}
	dns := &fakeDNSPort{}
	u := newUseCase(target, &fakeClusterPort{}, dns)

	out, err := u.Destroy(context.Background(), &DestroyInput{Env: cloudEnv()})
	require.NoError(t, err)
	assert.False(t, out.Deprovisioned)
	assert.Empty(t, target.events)
	// Without a known address every edge record type is removed.
	var types []model.DNSRecordType
	for _, d := range dns.deletes {
		types = append(types, d.Type)
	}
	assert.ElementsMatch(t, []model.DNSRecordType{model.DNSRecordTypeCNAME, model.DNSRecordTypeA, model.DNSRecordTypeAAAA}, types)
}
