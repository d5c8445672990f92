package kube

import (
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/kompox/webstack/domain/model"
)

// RouteSpec describes the external route from the edge to the application Service.
type RouteSpec struct {
	Stack    string
	Hostname string
	TLSMode  model.TLSMode
	// Issuer names the cluster issuer used when TLSMode is delegated.
	Issuer string
}

// Ingress builds the application Ingress. Delegated TLS adds the issuer
// annotation and a TLS block naming the certificate secret; TLS none adds neither.
func (r RouteSpec) Ingress() *networkingv1.Ingress {
	annotations := map[string]string{
		AnnotationIngressClass:  IngressClassName,
		AnnotationProxyBodySize: "50m",
	}
	var tls []networkingv1.IngressTLS
	if r.TLSMode == model.TLSModeDelegated {
		issuer := r.Issuer
		if issuer == "" {
			issuer = ClusterIssuerName
		}
		annotations[AnnotationClusterIssuer] = issuer
		tls = []networkingv1.IngressTLS{{Hosts: []string{r.Hostname}, SecretName: TLSSecretName}}
	}

	return &networkingv1.Ingress{
		TypeMeta: metav1.TypeMeta{APIVersion: "networking.k8s.io/v1", Kind: "Ingress"},
		ObjectMeta: metav1.ObjectMeta{
			Name:        AppIngressName,
			Namespace:   AppNamespace,
			Labels:      commonLabels(r.Stack, "app"),
			Annotations: annotations,
		},
		Spec: networkingv1.IngressSpec{
			IngressClassName: ptr.To(IngressClassName),
			TLS:              tls,
			Rules: []networkingv1.IngressRule{{
				Host: r.Hostname,
				IngressRuleValue: networkingv1.IngressRuleValue{
					HTTP: &networkingv1.HTTPIngressRuleValue{
						Paths: []networkingv1.HTTPIngressPath{{
							Path:     "/",
							PathType: ptr.To(networkingv1.PathTypePrefix),
							Backend: networkingv1.IngressBackend{
								Service: &networkingv1.IngressServiceBackend{
									Name: AppServiceName,
									Port: networkingv1.ServiceBackendPort{Number: AppPort},
								},
							},
						}},
					},
				},
			}},
		},
	}
}
