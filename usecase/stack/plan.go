package stack

import (
	"fmt"

	"github.com/kompox/webstack/adapters/kube"
	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/internal/dag"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// StepKind selects the external system a step is submitted to.
type StepKind string

const (
	KindCluster  StepKind = "cluster"
	KindManifest StepKind = "manifest"
	KindRelease  StepKind = "release"
	KindDNS      StepKind = "dns"
)

// Step IDs.
const (
	StepCluster        = "cluster"
	StepCertManager    = "cert-manager"
	StepDNSCredential  = "dns-credential"
	StepClusterIssuer  = "cluster-issuer"
	StepDatabaseAuth   = "postgresql-auth"
	StepDatabase       = "postgresql"
	StepCacheAuth      = "redis-auth"
	StepCache          = "redis"
	StepAppSecrets     = "app-secrets"
	StepRegistrySecret = "registry-secret"
	StepAppDeployment  = "app-deployment"
	StepAppService     = "app-service"
	StepEdge           = "ingress-nginx"
	StepRoute          = "app-ingress"
	StepDNSRecord      = "dns-record"
)

// edgeHealthProbePath is the load balancer probe path of the edge controller on the cloud.
const edgeHealthProbePath = "/healthz"

// Step is one desired-state submission of the plan.
type Step struct {
	ID      string           `json:"id"`
	Kind    StepKind         `json:"kind"`
	Objects []runtime.Object `json:"-"`
	Release *kube.Release    `json:"release,omitempty"`
	// FQDN is the hostname bound by a dns step.
	FQDN string `json:"fqdn,omitempty"`
	// ProducesEdge marks the release whose controller Service publishes the edge address.
	ProducesEdge bool `json:"producesEdge,omitempty"`
}

// Plan is the composed desired state of one run.
type Plan struct {
	Env    *model.Environment
	Handle *model.ComputeHandle
	Policy model.PlatformPolicy
	Graph  *dag.Graph[*Step]
	// Edge is resolved by the edge step once the load balancer has an address.
	Edge *model.Deferred[model.EdgeAddress]
}

func (p *Plan) add(s *Step, deps ...string) error {
	return p.Graph.Add(s.ID, s, deps...)
}

// Step returns the step with id, or nil.
func (p *Plan) Step(id string) *Step {
	s, _ := p.Graph.Get(id)
	return s
}

// Compose builds the plan for env. It performs no I/O: every failure is raised
// before anything is submitted. solvers supplies the DNS-01 solver of the
// configured DNS provider on platforms that issue certificates.
func Compose(env *model.Environment, solvers model.DNSPort) (*Plan, error) {
	handle, err := SelectPlatform(env)
	if err != nil {
		return nil, err
	}
	p := &Plan{
		Env:    env,
		Handle: handle,
		Policy: model.PolicyFor(handle.Platform),
		Graph:  dag.New[*Step](),
		Edge:   model.NewDeferred[model.EdgeAddress](),
	}
	if err := p.add(&Step{ID: StepCluster, Kind: KindCluster}); err != nil {
		return nil, err
	}

	if p.Policy.IssueCertificates {
		if err := composeCertIssuance(env, solvers, p); err != nil {
			return nil, err
		}
	}
	if err := composeDatabase(env, p); err != nil {
		return nil, err
	}
	if err := composeCache(env, p); err != nil {
		return nil, err
	}

	args := WorkloadArgs{
		Stack:      env.Stack,
		Image:      env.Image,
		PullPolicy: p.Policy.PullPolicy,
		Replicas:   env.Replicas,
		SecretRefs: []*corev1.Secret{kube.AppSecrets(env)},
	}
	if p.Policy.ImagePullSecret {
		sec, err := kube.RegistrySecret(env.Stack, env.Credentials.Registry)
		if err != nil {
			return nil, err
		}
		args.ImagePullSecret = sec
	}
	if err := composeWorkload(args, p); err != nil {
		return nil, err
	}

	if err := composeEdge(p, p.Policy.DisableAdmissionWebhooks); err != nil {
		return nil, err
	}
	route := RouteArgs{Stack: env.Stack, Hostname: env.Hostname(), TLSMode: p.Policy.TLSMode}
	if err := composeRoute(route, p); err != nil {
		return nil, err
	}

	if p.Policy.BindDNS {
		if err := bindDNS(env, p); err != nil {
			return nil, err
		}
	}

	if _, err := p.Graph.Levels(); err != nil {
		return nil, fmt.Errorf("plan graph: %w", err)
	}
	return p, nil
}

// composeCertIssuance declares the certificate controller, the DNS provider
// credential it reads and the cluster issuer answering DNS-01 challenges.
func composeCertIssuance(env *model.Environment, solvers model.DNSPort, p *Plan) error {
	token := env.Credentials.DNSToken
	if token.IsZero() {
		return model.MissingCredential("dns api token")
	}
	if solvers == nil {
		return fmt.Errorf("dns port is not configured")
	}
	solver, err := solvers.Solver(env.DNSAccess())
	if err != nil {
		return fmt.Errorf("dns solver: %w", err)
	}

	rel := kube.CertManagerRelease()
	if err := p.add(&Step{ID: StepCertManager, Kind: KindRelease, Release: rel}, StepCluster); err != nil {
		return err
	}
	cred := kube.OpaqueSecret(env.Stack, kube.CertManagerNamespace, solver.SecretName, "cert", map[string]string{
		solver.SecretKey: token.Reveal(),
	})
	// The namespace is created with the release.
	if err := p.add(&Step{ID: StepDNSCredential, Kind: KindManifest, Objects: []runtime.Object{cred}}, StepCluster, StepCertManager); err != nil {
		return err
	}
	issuer := kube.ClusterIssuer(env.Stack, env.IssuerEmail(), solver.Config)
	return p.add(&Step{ID: StepClusterIssuer, Kind: KindManifest, Objects: []runtime.Object{issuer}}, StepCluster, StepCertManager, StepDNSCredential)
}

// composeDatabase declares the database credential secret and the pinned
// database release that reads it by name.
func composeDatabase(env *model.Environment, p *Plan) error {
	auth := kube.OpaqueSecret(env.Stack, kube.AppNamespace, kube.DatabaseSecretName, "database", map[string]string{
		kube.DatabaseSecretKey: env.Credentials.DatabasePassword.Reveal(),
	})
	if err := p.add(&Step{ID: StepDatabaseAuth, Kind: KindManifest, Objects: []runtime.Object{auth}}, StepCluster); err != nil {
		return err
	}
	return p.add(&Step{ID: StepDatabase, Kind: KindRelease, Release: kube.PostgresqlRelease(env.DatabaseName)}, StepCluster, StepDatabaseAuth)
}

// composeCache declares the cache credential secret and the pinned cache release.
func composeCache(env *model.Environment, p *Plan) error {
	auth := kube.OpaqueSecret(env.Stack, kube.AppNamespace, kube.CacheSecretName, "cache", map[string]string{
		kube.CacheSecretKey: env.Credentials.CachePassword.Reveal(),
	})
	if err := p.add(&Step{ID: StepCacheAuth, Kind: KindManifest, Objects: []runtime.Object{auth}}, StepCluster); err != nil {
		return err
	}
	return p.add(&Step{ID: StepCache, Kind: KindRelease, Release: kube.RedisRelease()}, StepCluster, StepCacheAuth)
}

// WorkloadArgs parameterizes composeWorkload.
type WorkloadArgs struct {
	Stack      string
	Image      string
	PullPolicy model.PullPolicy
	Replicas   int32
	SecretRefs []*corev1.Secret
	// ImagePullSecret is nil when the platform pulls no private images.
	ImagePullSecret *corev1.Secret
}

// composeWorkload declares the application secrets, the Deployment and the
// Service in front of it.
func composeWorkload(args WorkloadArgs, p *Plan) error {
	if args.Replicas < 1 {
		return model.InvalidConfig("replicas", fmt.Sprintf("must be positive, got %d", args.Replicas))
	}
	var secretObjs []runtime.Object
	for _, s := range args.SecretRefs {
		secretObjs = append(secretObjs, s)
	}
	if err := p.add(&Step{ID: StepAppSecrets, Kind: KindManifest, Objects: secretObjs}, StepCluster); err != nil {
		return err
	}
	deps := []string{StepCluster, StepAppSecrets}
	if args.ImagePullSecret != nil {
		if err := p.add(&Step{ID: StepRegistrySecret, Kind: KindManifest, Objects: []runtime.Object{args.ImagePullSecret}}, StepCluster); err != nil {
			return err
		}
		deps = append(deps, StepRegistrySecret)
	}

	spec := kube.WorkloadSpec{
		Stack:           args.Stack,
		Image:           args.Image,
		PullPolicy:      args.PullPolicy,
		Replicas:        args.Replicas,
		SecretRefs:      args.SecretRefs,
		ImagePullSecret: args.ImagePullSecret,
	}
	if err := p.add(&Step{ID: StepAppDeployment, Kind: KindManifest, Objects: []runtime.Object{spec.Deployment()}}, deps...); err != nil {
		return err
	}
	return p.add(&Step{ID: StepAppService, Kind: KindManifest, Objects: []runtime.Object{spec.Service()}}, StepCluster, StepAppDeployment)
}

// composeEdge declares the edge controller release. Its Service address is
// resolved into p.Edge during execution.
func composeEdge(p *Plan, disableAdmissionWebhooks bool) error {
	probe := ""
	if p.Handle.Platform == model.PlatformCloud {
		probe = edgeHealthProbePath
	}
	rel := kube.IngressNginxRelease(disableAdmissionWebhooks, probe)
	return p.add(&Step{ID: StepEdge, Kind: KindRelease, Release: rel, ProducesEdge: true}, StepCluster)
}

// RouteArgs parameterizes composeRoute.
type RouteArgs struct {
	Stack    string
	Hostname string
	TLSMode  model.TLSMode
}

// composeRoute declares the Ingress from the edge to the application Service.
func composeRoute(args RouteArgs, p *Plan) error {
	spec := kube.RouteSpec{Stack: args.Stack, Hostname: args.Hostname, TLSMode: args.TLSMode}
	deps := []string{StepCluster, StepAppService, StepEdge}
	if args.TLSMode == model.TLSModeDelegated {
		if !p.Graph.Has(StepClusterIssuer) {
			return fmt.Errorf("delegated TLS requires the %s step", StepClusterIssuer)
		}
		spec.Issuer = kube.ClusterIssuerName
		deps = append(deps, StepClusterIssuer)
	}
	return p.add(&Step{ID: StepRoute, Kind: KindManifest, Objects: []runtime.Object{spec.Ingress()}}, deps...)
}

// bindDNS declares the record binding the public hostname to the edge
// address. The address itself is awaited at execution.
func bindDNS(env *model.Environment, p *Plan) error {
	if env.Domain == "" || env.Domain == model.DefaultDomain {
		return fmt.Errorf("%w: %q cannot be bound in public DNS", model.ErrInvalidDomain, env.Domain)
	}
	return p.add(&Step{ID: StepDNSRecord, Kind: KindDNS, FQDN: env.Hostname()}, StepEdge, StepRoute)
}
