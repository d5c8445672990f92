package kube

import (
	"time"
)

// HelmValues represents Helm chart values as a generic map.
// Keep it simple to interop with Helm SDK (yaml.Values).
type HelmValues map[string]any

// Release declares a pinned Helm release. Secret material never appears in
// Values; charts reference pre-created secrets by name instead.
type Release struct {
	Name      string        `json:"name"`
	Namespace string        `json:"namespace"`
	RepoURL   string        `json:"repoURL"`
	Chart     string        `json:"chart"`
	Version   string        `json:"version"`
	Values    HelmValues    `json:"values,omitempty"`
	Timeout   time.Duration `json:"timeout,omitempty"`
	// NoWait skips waiting for readiness. Set on releases whose readiness
	// depends on external provisioning, such as a LoadBalancer address.
	NoWait bool `json:"noWait,omitempty"`
}

// Chart repositories.
const (
	JetstackRepoURL     = "https://charts.jetstack.io"
	BitnamiRepoURL      = "https://charts.bitnami.com/bitnami"
	IngressNginxRepoURL = "https://kubernetes.github.io/ingress-nginx"
)

// Pinned chart versions.
const (
	CertManagerChartVersion  = "v1.14.5"
	PostgresqlChartVersion   = "11.1.9"
	PostgresqlImageTag       = "14.2.0"
	RedisChartVersion        = "16.8.5"
	IngressNginxChartVersion = "4.10.1"
)

// CertManagerRelease declares the certificate manager installation including its CRDs.
func CertManagerRelease() *Release {
	return &Release{
		Name:      "cert-manager",
		Namespace: CertManagerNamespace,
		RepoURL:   JetstackRepoURL,
		Chart:     "cert-manager",
		Version:   CertManagerChartVersion,
		Values:    HelmValues{"installCRDs": true},
	}
}

// PostgresqlRelease declares the database release. The admin password is read
// from the pre-created DatabaseSecretName secret.
func PostgresqlRelease(database string) *Release {
	return &Release{
		Name:      "postgresql",
		Namespace: AppNamespace,
		RepoURL:   BitnamiRepoURL,
		Chart:     "postgresql",
		Version:   PostgresqlChartVersion,
		Values: HelmValues{
			"image": map[string]any{"tag": PostgresqlImageTag},
			"global": map[string]any{
				"postgresql": map[string]any{
					"auth": map[string]any{
						"database":       database,
						"existingSecret": DatabaseSecretName,
						"secretKeys": map[string]any{
							"adminPasswordKey": DatabaseSecretKey,
						},
					},
				},
			},
		},
	}
}

// RedisRelease declares the cache release in standalone mode. The password is
// read from the pre-created CacheSecretName secret.
func RedisRelease() *Release {
	return &Release{
		Name:      "redis",
		Namespace: AppNamespace,
		RepoURL:   BitnamiRepoURL,
		Chart:     "redis",
		Version:   RedisChartVersion,
		Values: HelmValues{
			"architecture": "standalone",
			"auth": map[string]any{
				"enabled":                   true,
				"existingSecret":            CacheSecretName,
				"existingSecretPasswordKey": CacheSecretKey,
			},
		},
	}
}

// IngressNginxRelease declares the edge controller. Admission webhooks are
// disabled on single-node development clusters.
func IngressNginxRelease(disableAdmissionWebhooks bool, healthProbePath string) *Release {
	controller := map[string]any{
		"admissionWebhooks": map[string]any{"enabled": !disableAdmissionWebhooks},
		"config":            map[string]any{"use-forwarded-headers": "true"},
		"publishService":    map[string]any{"enabled": true},
	}
	if healthProbePath != "" {
		controller["service"] = map[string]any{
			"annotations": map[string]any{AnnotationAzureHealthProbe: healthProbePath},
		}
	}
	return &Release{
		Name:      EdgeReleaseName,
		Namespace: EdgeNamespace,
		RepoURL:   IngressNginxRepoURL,
		Chart:     "ingress-nginx",
		Version:   IngressNginxChartVersion,
		Values:    HelmValues{"controller": controller},
		NoWait:    true,
	}
}
