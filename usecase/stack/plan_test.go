package stack

import (
	"fmt"
	"testing"

	"github.com/kompox/webstack/adapters/kube"
	"github.com/kompox/webstack/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func deployment(t *testing.T, p *Plan) *appsv1.Deployment {
	t.Helper()
	s := p.Step(StepAppDeployment)
	require.NotNil(t, s)
	d, ok := s.Objects[0].(*appsv1.Deployment)
	require.True(t, ok)
	return d
}

func ingress(t *testing.T, p *Plan) *networkingv1.Ingress {
	t.Helper()
	s := p.Step(StepRoute)
	require.NotNil(t, s)
	ing, ok := s.Objects[0].(*networkingv1.Ingress)
	require.True(t, ok)
	return ing
}

func TestSelectPlatform(t *testing.T) {
	h, err := SelectPlatform(cloudEnv())
	require.NoError(t, err)
	assert.Equal(t, DriverAKS, h.Driver)
	require.NotNil(t, h.Sizing)
	assert.Equal(t, int32(2), h.Sizing.Desired)
	assert.Equal(t, int32(1), h.Sizing.Min)
	assert.Equal(t, int32(2), h.Sizing.Max)
	assert.True(t, h.Sizing.PrivateNodes)
	assert.Len(t, h.Sizing.Zones, 2)
	require.NotNil(t, h.Network)

	h, err = SelectPlatform(localEnv())
	require.NoError(t, err)
	assert.Equal(t, DriverLocal, h.Driver)
	assert.Nil(t, h.Sizing)

	env := cloudEnv()
	env.Platform = "edge"
	_, err = SelectPlatform(env)
	assert.ErrorIs(t, err, model.ErrUnknownPlatform)
}

func TestComposeCloud(t *testing.T) {
	p, err := Compose(cloudEnv(), &fakeDNSPort{})
	require.NoError(t, err)

	for _, id := range []string{StepCertManager, StepDNSCredential, StepClusterIssuer, StepRegistrySecret, StepDNSRecord, StepDatabase, StepCache} {
		assert.True(t, p.Graph.Has(id), id)
	}

	// Ordering edges.
	assert.Contains(t, p.Graph.DependsOn(StepClusterIssuer), StepCertManager)
	assert.Contains(t, p.Graph.DependsOn(StepRoute), StepAppService)
	assert.Contains(t, p.Graph.DependsOn(StepDNSRecord), StepEdge)
	levels, err := p.Graph.Levels()
	require.NoError(t, err)
	assert.Equal(t, []string{StepCluster}, levels[0])
	assert.Equal(t, []string{StepDNSRecord}, levels[len(levels)-1])

	d := deployment(t, p)
	assert.Equal(t, int32(3), *d.Spec.Replicas)
	c := d.Spec.Template.Spec.Containers[0]
	assert.Equal(t, "registry/app:v1", c.Image)
	assert.Equal(t, corev1.PullAlways, c.ImagePullPolicy)
	assert.Equal(t, int32(4000), c.Ports[0].ContainerPort)
	assert.Equal(t, int32(10), c.LivenessProbe.PeriodSeconds)
	assert.Equal(t, int32(10), c.LivenessProbe.FailureThreshold)
	assert.Equal(t, int32(3), c.ReadinessProbe.FailureThreshold)
	assert.Equal(t, int32(15), c.StartupProbe.FailureThreshold)
	require.Len(t, d.Spec.Template.Spec.ImagePullSecrets, 1)
	assert.Equal(t, kube.RegistrySecretName, d.Spec.Template.Spec.ImagePullSecrets[0].Name)
	assert.Contains(t, p.Graph.DependsOn(StepAppDeployment), StepRegistrySecret)

	svc := p.Step(StepAppService).Objects[0].(*corev1.Service)
	assert.Equal(t, int32(4000), svc.Spec.Ports[0].Port)

	ing := ingress(t, p)
	assert.Equal(t, "app.example.com", ing.Spec.Rules[0].Host)
	assert.Equal(t, "/", ing.Spec.Rules[0].HTTP.Paths[0].Path)
	require.Len(t, ing.Spec.TLS, 1)
	assert.Equal(t, "tls-cert", ing.Spec.TLS[0].SecretName)
	assert.Equal(t, kube.ClusterIssuerName, ing.Annotations[kube.AnnotationClusterIssuer])

	assert.Equal(t, "app.example.com", p.Step(StepDNSRecord).FQDN)

	db := p.Step(StepDatabase).Release
	assert.Equal(t, kube.PostgresqlChartVersion, db.Version)
	assert.NotContains(t, fmt.Sprint(db.Values), "db-pass-123")

	issuer := p.Step(StepClusterIssuer).Objects[0].(*unstructured.Unstructured)
	email, _, _ := unstructured.NestedString(issuer.Object, "spec", "acme", "email")
	assert.Equal(t, "admin@example.com", email)

	cred := p.Step(StepDNSCredential).Objects[0].(*corev1.Secret)
	assert.Equal(t, kube.CertManagerNamespace, cred.Namespace)
	assert.Equal(t, "dns-token-abc", cred.StringData["api-token"])

	edge := p.Step(StepEdge)
	assert.True(t, edge.ProducesEdge)
	assert.True(t, edge.Release.NoWait)
}

func TestComposeLocal(t *testing.T) {
	p, err := Compose(localEnv(), nil)
	require.NoError(t, err)

	for _, id := range []string{StepCertManager, StepDNSCredential, StepClusterIssuer, StepRegistrySecret, StepDNSRecord} {
		assert.False(t, p.Graph.Has(id), id)
	}

	d := deployment(t, p)
	c := d.Spec.Template.Spec.Containers[0]
	assert.Equal(t, corev1.PullNever, c.ImagePullPolicy)
	assert.Nil(t, d.Spec.Template.Spec.ImagePullSecrets)
	assert.Equal(t, int32(10), c.LivenessProbe.FailureThreshold)
	assert.Equal(t, int32(3), c.ReadinessProbe.FailureThreshold)
	assert.Equal(t, int32(15), c.StartupProbe.FailureThreshold)

	ing := ingress(t, p)
	assert.Empty(t, ing.Spec.TLS)
	assert.NotContains(t, ing.Annotations, kube.AnnotationClusterIssuer)
	assert.Equal(t, "app.example.com", ing.Spec.Rules[0].Host)

	edge := p.Step(StepEdge).Release
	controller := edge.Values["controller"].(map[string]any)
	webhooks := controller["admissionWebhooks"].(map[string]any)
	assert.Equal(t, false, webhooks["enabled"])
}

func TestComposeErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Environment)
		want   error
	}{
		{"missing dns token", func(e *model.Environment) { e.Credentials.DNSToken = "" }, model.ErrMissingCredential},
		{"missing registry credential", func(e *model.Environment) { e.Credentials.Registry.Password = "" }, model.ErrMissingCredential},
		{"localhost domain", func(e *model.Environment) { e.Domain = model.DefaultDomain }, model.ErrInvalidDomain},
		{"unknown platform", func(e *model.Environment) { e.Platform = "mainframe" }, model.ErrUnknownPlatform},
		{"zero replicas", func(e *model.Environment) { e.Replicas = 0 }, model.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := cloudEnv()
			tt.mutate(env)
			_, err := Compose(env, &fakeDNSPort{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRenderRedactsSecrets(t *testing.T) {
	p, err := Compose(cloudEnv(), &fakeDNSPort{})
	require.NoError(t, err)
	out, err := p.Render()
	require.NoError(t, err)
	s := string(out)
	for _, secret := range []string{"db-pass-123", "cache-pass-456", "app-secret-789", "dns-token-abc", "registry-pass-def"} {
		assert.NotContains(t, s, secret)
	}
	assert.Contains(t, s, "kind: Deployment")
	assert.Contains(t, s, "id: dns-record")
	assert.Contains(t, s, redacted)

	// Rendering does not alter the submitted objects.
	cred := p.Step(StepDNSCredential).Objects[0].(*corev1.Secret)
	assert.Equal(t, "dns-token-abc", cred.StringData["api-token"])
}
