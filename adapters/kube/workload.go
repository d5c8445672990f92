package kube

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	"github.com/kompox/webstack/domain/model"
)

// Probe is an HTTP health check on the application port.
type Probe struct {
	Path             string
	PeriodSeconds    int32
	FailureThreshold int32
}

// Health probes of the application container.
var (
	LivenessProbe  = Probe{Path: "/_k8s/liveness", PeriodSeconds: 10, FailureThreshold: 10}
	ReadinessProbe = Probe{Path: "/_k8s/readiness", PeriodSeconds: 10, FailureThreshold: 3}
	StartupProbe   = Probe{Path: "/_k8s/startup", PeriodSeconds: 10, FailureThreshold: 15}
)

func (p Probe) build() *corev1.Probe {
	return &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			HTTPGet: &corev1.HTTPGetAction{
				Path: p.Path,
				Port: intstr.FromString(AppPortName),
			},
		},
		PeriodSeconds:    p.PeriodSeconds,
		FailureThreshold: p.FailureThreshold,
	}
}

// WorkloadSpec describes the application deployment.
type WorkloadSpec struct {
	Stack      string
	Image      string
	PullPolicy model.PullPolicy
	Replicas   int32
	// SecretRefs are injected with envFrom. All of them must exist before pods start.
	SecretRefs []*corev1.Secret
	// ImagePullSecret is omitted from the pod spec when nil.
	ImagePullSecret *corev1.Secret
}

// Deployment builds the application Deployment.
func (w WorkloadSpec) Deployment() *appsv1.Deployment {
	selector := map[string]string{LabelAppSelector: AppName}
	podLabels := commonLabels(w.Stack, "app")
	podLabels[LabelAppSelector] = AppName
	podLabels[LabelAppK8sName] = AppName

	var envFrom []corev1.EnvFromSource
	for _, s := range w.SecretRefs {
		envFrom = append(envFrom, corev1.EnvFromSource{
			SecretRef: &corev1.SecretEnvSource{
				LocalObjectReference: corev1.LocalObjectReference{Name: s.Name},
				Optional:             ptr.To(false),
			},
		})
	}

	podSpec := corev1.PodSpec{
		Containers: []corev1.Container{{
			Name:            AppName,
			Image:           w.Image,
			ImagePullPolicy: corev1.PullPolicy(w.PullPolicy),
			Ports: []corev1.ContainerPort{{
				Name:          AppPortName,
				ContainerPort: AppPort,
				Protocol:      corev1.ProtocolTCP,
			}},
			EnvFrom:        envFrom,
			LivenessProbe:  LivenessProbe.build(),
			ReadinessProbe: ReadinessProbe.build(),
			StartupProbe:   StartupProbe.build(),
		}},
	}
	secrets := append([]*corev1.Secret{}, w.SecretRefs...)
	if w.ImagePullSecret != nil {
		podSpec.ImagePullSecrets = []corev1.LocalObjectReference{{Name: w.ImagePullSecret.Name}}
		secrets = append(secrets, w.ImagePullSecret)
	}

	annotations := map[string]string{}
	if h := computePodSecretHash(&podSpec, secrets); h != "" {
		annotations[AnnotationPodSecretHash] = h
	}

	return &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      AppName,
			Namespace: AppNamespace,
			Labels:    podLabels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(w.Replicas),
			Selector: &metav1.LabelSelector{MatchLabels: selector},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: podLabels, Annotations: annotations},
				Spec:       podSpec,
			},
		},
	}
}

// Service builds the cluster-internal Service in front of the Deployment.
func (w WorkloadSpec) Service() *corev1.Service {
	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      AppServiceName,
			Namespace: AppNamespace,
			Labels:    commonLabels(w.Stack, "app"),
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeClusterIP,
			Selector: map[string]string{LabelAppSelector: AppName},
			Ports: []corev1.ServicePort{{
				Name:       AppPortName,
				Port:       AppPort,
				TargetPort: intstr.FromInt32(AppPort),
				Protocol:   corev1.ProtocolTCP,
			}},
		},
	}
}
