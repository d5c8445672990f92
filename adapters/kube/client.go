package kube

import (
	"context"
	"fmt"

	meta "k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// Client rate limits. Plans submit a few dozen objects; releases use their own clients.
const (
	clientQPS   = 20
	clientBurst = 50
)

// Client bundles the typed, dynamic and discovery-backed clients used to
// converge one cluster. Credentials come from the platform driver as kubeconfig bytes.
type Client struct {
	RESTConfig *rest.Config
	Clientset  kubernetes.Interface
	Dynamic    dynamic.Interface
	// Mapper caches discovery. It is reset when a kind is not found, since
	// CRDs appear while a plan runs.
	Mapper meta.ResettableRESTMapper
}

// NewClient builds a Client from kubeconfig bytes.
func NewClient(kubeconfig []byte) (*Client, error) {
	if len(kubeconfig) == 0 {
		return nil, fmt.Errorf("kubeconfig is empty")
	}
	cfg, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("build REST config from kubeconfig: %w", err)
	}
	cfg.QPS = clientQPS
	cfg.Burst = clientBurst
	_ = rest.AddUserAgent(cfg, ManagedByValue)

	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build clientset: %w", err)
	}
	dc, err := discovery.NewDiscoveryClientForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create discovery client: %w", err)
	}
	dy, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}
	return &Client{
		RESTConfig: cfg,
		Clientset:  cs,
		Dynamic:    dy,
		Mapper:     restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(dc)),
	}, nil
}

// ServerVersion returns the API server version, proving the cluster answers.
func (c *Client) ServerVersion(_ context.Context) (string, error) {
	if c == nil || c.Clientset == nil {
		return "", fmt.Errorf("kube client is not initialized")
	}
	v, err := c.Clientset.Discovery().ServerVersion()
	if err != nil {
		return "", fmt.Errorf("get server version: %w", err)
	}
	return v.GitVersion, nil
}
