package dns

import (
	"context"
	"time"

	"github.com/kompox/webstack/domain"
	"github.com/kompox/webstack/domain/model"
)

// Repos bundles repository dependencies used by DNS use cases.
type Repos struct {
	Output domain.OutputRepository
}

// EdgeReader reads the external address of the edge controller Service.
type EdgeReader interface {
	EdgeAddress(ctx context.Context, namespace, name string) (model.EdgeAddress, error)
}

// ReaderFactory connects an EdgeReader to the cluster described by kubeconfig.
type ReaderFactory func(ctx context.Context, kubeconfig []byte) (EdgeReader, error)

// UseCase provides application logic for DNS operations.
type UseCase struct {
	Repos       *Repos
	ClusterPort model.ClusterPort
	DNSPort     model.DNSPort
	NewReader   ReaderFactory
	// PollInterval is the interval between edge address reads.
	PollInterval time.Duration
}
