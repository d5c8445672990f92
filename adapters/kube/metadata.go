package kube

// Centralized label and annotation keys used by the kube adapter.
// Keep these constants stable; changes are API-visible in clusters.
const (
	// WebstackDomain is the namespace domain for all webstack custom labels and annotations.
	WebstackDomain = "webstack.kompox.dev"

	LabelAppK8sName      = "app.kubernetes.io/name"
	LabelAppK8sInstance  = "app.kubernetes.io/instance"
	LabelAppK8sManagedBy = "app.kubernetes.io/managed-by"
	LabelAppK8sComponent = "app.kubernetes.io/component"

	LabelAppSelector = "app"
	LabelStack       = WebstackDomain + "/stack"

	AnnotationContentHash   = WebstackDomain + "/content-hash"
	AnnotationPodSecretHash = WebstackDomain + "/pod-secret-hash"

	AnnotationIngressClass     = "kubernetes.io/ingress.class"
	AnnotationProxyBodySize    = "nginx.ingress.kubernetes.io/proxy-body-size"
	AnnotationClusterIssuer    = "cert-manager.io/cluster-issuer"
	AnnotationAzureHealthProbe = "service.beta.kubernetes.io/azure-load-balancer-health-probe-request-path"
	ManagedByValue             = "webstack"
	FieldManager               = "webstack"
)

// Well-known object names.
const (
	AppNamespace       = "default"
	AppName            = "main-app"
	AppServiceName     = "service-app"
	AppIngressName     = "app-ingress"
	AppSecretsName     = "app-secrets"
	RegistrySecretName = "docker-secret"
	TLSSecretName      = "tls-cert"
	AppPort            = 4000
	AppPortName        = "http"

	DatabaseSecretName  = "postgresql-auth"
	DatabaseSecretKey   = "postgres-password"
	DatabaseServiceHost = "postgresql-hl"
	CacheSecretName     = "redis-auth"
	CacheSecretKey      = "redis-password"
	CacheServiceHost    = "redis-master"

	CertManagerNamespace = "cert-manager"
	ClusterIssuerName    = "letsencrypt-prod"
	IngressClassName     = "nginx"
	EdgeNamespace        = "ingress-nginx"
	EdgeReleaseName      = "ingress-nginx"
)

// EdgeServiceName returns the LoadBalancer Service created by the edge release.
func EdgeServiceName(release string) string { return release + "-controller" }

// commonLabels returns labels shared by every object the stack owns.
func commonLabels(stack, component string) map[string]string {
	l := map[string]string{
		LabelAppK8sManagedBy: ManagedByValue,
		LabelStack:           stack,
	}
	if component != "" {
		l[LabelAppK8sComponent] = component
	}
	return l
}
