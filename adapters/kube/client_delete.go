package kube

import (
	"context"
	"errors"
	"fmt"

	"github.com/kompox/webstack/internal/logging"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// Delete removes objs by kind and name with background propagation. It
// continues past failures and returns them joined. Objects that are already
// gone, or whose kind is no longer served (CRDs removed with their chart),
// count as deleted.
func (c *Client) Delete(ctx context.Context, objs []runtime.Object, defaultNamespace string) (int, error) {
	if c == nil || c.Dynamic == nil || c.Mapper == nil {
		return 0, fmt.Errorf("kube client is not initialized")
	}
	propagation := metav1.DeletePropagationBackground

	var (
		deleted int
		errs    []error
	)
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		u, err := toUnstructured(obj)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		logger := logging.FromContext(ctx).With("kind", u.GetKind(), "name", u.GetName())
		msgSym := "KubeClient:Delete"

		ri, err := c.resourceFor(u, defaultNamespace)
		if err != nil {
			if isNoMatch(err) {
				logger.Info(ctx, msgSym+"/eok", "reason", "kind not served")
				deleted++
				continue
			}
			errs = append(errs, err)
			continue
		}
		logger = logger.With("ns", u.GetNamespace())
		if err := ri.Delete(ctx, u.GetName(), metav1.DeleteOptions{PropagationPolicy: &propagation}); err != nil && !apierrors.IsNotFound(err) {
			logger.Info(ctx, msgSym+"/efail", "err", err)
			errs = append(errs, fmt.Errorf("delete %s %s/%s: %w", u.GetKind(), u.GetNamespace(), u.GetName(), err))
			continue
		}
		logger.Info(ctx, msgSym+"/eok")
		deleted++
	}
	return deleted, errors.Join(errs...)
}
