package kube

import (
	"context"
	"fmt"

	"github.com/kompox/webstack/domain/model"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// LoadBalancerAddress returns the external address of a LoadBalancer Service.
// While the cloud has not assigned one yet, it returns an empty address without error.
func (c *Client) LoadBalancerAddress(ctx context.Context, namespace, name string) (model.EdgeAddress, error) {
	if c == nil || c.Clientset == nil {
		return model.EdgeAddress{}, fmt.Errorf("kube client is not initialized")
	}

	svc, err := c.Clientset.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return model.EdgeAddress{}, fmt.Errorf("get service %s/%s: %w", namespace, name, err)
	}

	for _, ing := range svc.Status.LoadBalancer.Ingress {
		if ing.IP != "" || ing.Hostname != "" {
			return model.EdgeAddress{IP: ing.IP, Hostname: ing.Hostname}, nil
		}
	}
	return model.EdgeAddress{}, nil
}
