package kube

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/internal/naming"
)

// Keys of the application secret consumed through envFrom.
const (
	EnvDatabaseURL   = "DATABASE_URL"
	EnvRedisURL      = "REDIS_URL"
	EnvSecretKeyBase = "SECRET_KEY_BASE"
)

// OpaqueSecret builds an Opaque Secret from string data. The content hash
// annotation lets dependents detect credential changes.
func OpaqueSecret(stack, namespace, name, component string, data map[string]string) *corev1.Secret {
	return &corev1.Secret{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   namespace,
			Labels:      commonLabels(stack, component),
			Annotations: map[string]string{AnnotationContentHash: ComputeContentHash(data)},
		},
		Type:       corev1.SecretTypeOpaque,
		StringData: data,
	}
}

// DatabaseURL returns the connection URL of the application database.
// Userinfo is percent-encoded.
func DatabaseURL(password model.Secret, database string) string {
	u := url.URL{
		Scheme: "ecto",
		User:   url.UserPassword("postgres", password.Reveal()),
		Host:   DatabaseServiceHost,
		Path:   "/" + database,
	}
	return u.String()
}

// CacheURL returns the connection URL of the cache.
func CacheURL(password model.Secret) string {
	u := url.URL{
		Scheme: "redis",
		User:   url.UserPassword("", password.Reveal()),
		Host:   CacheServiceHost,
	}
	return u.String()
}

// AppSecrets builds the secret carrying the application's runtime environment.
func AppSecrets(env *model.Environment) *corev1.Secret {
	return OpaqueSecret(env.Stack, AppNamespace, AppSecretsName, "app", map[string]string{
		EnvDatabaseURL:   DatabaseURL(env.Credentials.DatabasePassword, env.DatabaseName),
		EnvRedisURL:      CacheURL(env.Credentials.CachePassword),
		EnvSecretKeyBase: env.Credentials.AppSecretKey.Reveal(),
	})
}

// dockerConfigJSON renders the kubernetes.io/dockerconfigjson payload.
func dockerConfigJSON(cred model.RegistryCredential) ([]byte, error) {
	auth := base64.StdEncoding.EncodeToString([]byte(cred.Username + ":" + cred.Password.Reveal()))
	doc := map[string]any{
		"auths": map[string]any{
			cred.Server: map[string]string{
				"username": cred.Username,
				"password": cred.Password.Reveal(),
				"auth":     auth,
			},
		},
	}
	return json.Marshal(doc)
}

// RegistrySecret builds the image pull secret for cred. Both username and
// password are required.
func RegistrySecret(stack string, cred model.RegistryCredential) (*corev1.Secret, error) {
	if !cred.Complete() {
		return nil, model.MissingCredential("registry")
	}
	if cred.Server == "" {
		cred.Server = model.DefaultRegistry
	}
	payload, err := dockerConfigJSON(cred)
	if err != nil {
		return nil, fmt.Errorf("encode docker config: %w", err)
	}
	return &corev1.Secret{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: metav1.ObjectMeta{
			Name:        RegistrySecretName,
			Namespace:   AppNamespace,
			Labels:      commonLabels(stack, "app"),
			Annotations: map[string]string{AnnotationContentHash: naming.Hash(string(payload))},
		},
		Type: corev1.SecretTypeDockerConfigJson,
		Data: map[string][]byte{corev1.DockerConfigJsonKey: payload},
	}, nil
}

// ComputeContentHash returns a short hash over the sorted key/value pairs.
func ComputeContentHash(kv map[string]string) string {
	pairs := make([]string, 0, len(kv))
	for k, v := range kv {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return naming.Hash(pairs...)
}

// computePodSecretHash aggregates the content hashes of the secrets referenced by podSpec.
//
// Ordering: imagePullSecrets order, then envFrom secrets (containers sorted by name;
// envFrom order preserved). Missing referenced secrets contribute an empty string at
// their position. Returns empty string if no secret references are found.
func computePodSecretHash(podSpec *corev1.PodSpec, secrets []*corev1.Secret) string {
	if podSpec == nil {
		return ""
	}
	m := map[string]string{}
	for _, s := range secrets {
		if s == nil || s.Name == "" || s.Annotations == nil {
			continue
		}
		if h, ok := s.Annotations[AnnotationContentHash]; ok {
			m[s.Name] = h
		}
	}
	var segments []string
	for _, ips := range podSpec.ImagePullSecrets {
		if ips.Name == "" {
			continue
		}
		segments = append(segments, m[ips.Name])
	}
	ctns := append([]corev1.Container{}, podSpec.Containers...)
	sort.Slice(ctns, func(i, j int) bool { return ctns[i].Name < ctns[j].Name })
	for _, ctn := range ctns {
		for _, ef := range ctn.EnvFrom {
			if ef.SecretRef != nil && ef.SecretRef.Name != "" {
				segments = append(segments, m[ef.SecretRef.Name])
			}
		}
	}
	if len(segments) == 0 {
		return ""
	}
	return naming.Hash(segments...)
}
