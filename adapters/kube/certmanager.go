package kube

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// ACMEProductionServer is the Let's Encrypt production directory.
const ACMEProductionServer = "https://acme-v02.api.letsencrypt.org/directory"

// ClusterIssuer builds the cert-manager ClusterIssuer that answers ACME DNS-01
// challenges with solver. The solver is the provider-specific dns01 block,
// e.g. {"cloudflare": {"apiTokenSecretRef": {...}}}.
func ClusterIssuer(stack, email string, solver map[string]any) *unstructured.Unstructured {
	u := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "cert-manager.io/v1",
		"kind":       "ClusterIssuer",
		"metadata": map[string]any{
			"name":   ClusterIssuerName,
			"labels": toAnyMap(commonLabels(stack, "cert")),
		},
		"spec": map[string]any{
			"acme": map[string]any{
				"server": ACMEProductionServer,
				"email":  email,
				"privateKeySecretRef": map[string]any{
					"name": ClusterIssuerName + "-account-key",
				},
				"solvers": []any{
					map[string]any{"dns01": solver},
				},
			},
		},
	}}
	return u
}

func toAnyMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
