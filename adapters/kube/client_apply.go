package kube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kompox/webstack/internal/logging"
	meta "k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"
)

// Apply server-side applies objs in order under FieldManager, taking
// ownership of conflicting fields. Namespaced objects without a namespace are
// placed in defaultNamespace.
func (c *Client) Apply(ctx context.Context, objs []runtime.Object, defaultNamespace string) (err error) {
	if c == nil || c.Dynamic == nil || c.Mapper == nil {
		return fmt.Errorf("kube client is not initialized")
	}
	logger := logging.FromContext(ctx)
	msgSym := "KubeClient:Apply"
	logger.Info(ctx, msgSym+"/s", "objects", len(objs))
	applied := 0
	defer func() {
		if err == nil {
			logger.Info(ctx, msgSym+"/eok", "applied", applied)
		} else {
			logger.Info(ctx, msgSym+"/efail", "applied", applied, "err", err)
		}
	}()

	force := true
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		u, err := toUnstructured(obj)
		if err != nil {
			return err
		}
		ri, err := c.resourceFor(u, defaultNamespace)
		if err != nil {
			return err
		}
		body, err := json.Marshal(u.Object)
		if err != nil {
			return fmt.Errorf("marshal %s/%s: %w", u.GetKind(), u.GetName(), err)
		}
		if _, err := ri.Patch(ctx, u.GetName(), types.ApplyPatchType, body, metav1.PatchOptions{FieldManager: FieldManager, Force: &force}); err != nil {
			return fmt.Errorf("apply %s %s: %w", u.GetKind(), u.GetName(), err)
		}
		logger.Debug(ctx, "applied", "kind", u.GetKind(), "ns", u.GetNamespace(), "name", u.GetName())
		applied++
	}
	return nil
}

func toUnstructured(obj runtime.Object) (*unstructured.Unstructured, error) {
	m, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("to unstructured: %w", err)
	}
	u := &unstructured.Unstructured{Object: m}
	if u.GetKind() == "" || u.GetAPIVersion() == "" {
		return nil, fmt.Errorf("object %T has no apiVersion/kind", obj)
	}
	if u.GetName() == "" {
		return nil, fmt.Errorf("object %s missing metadata.name", u.GetKind())
	}
	return u, nil
}

// mapping resolves the REST mapping of gvk, refreshing discovery once when
// the kind is not served yet.
func (c *Client) mapping(gvk schema.GroupVersionKind) (*meta.RESTMapping, error) {
	m, err := c.Mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if isNoMatch(err) {
		c.Mapper.Reset()
		m, err = c.Mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("rest mapping %s: %w", gvk.String(), err)
	}
	return m, nil
}

// isNoMatch reports whether err, possibly wrapped, says the kind is not served.
func isNoMatch(err error) bool {
	var kindErr *meta.NoKindMatchError
	var resourceErr *meta.NoResourceMatchError
	return errors.As(err, &kindErr) || errors.As(err, &resourceErr)
}

// resourceFor returns the dynamic interface serving u. For namespaced kinds
// an empty namespace is set to defaultNamespace on u.
func (c *Client) resourceFor(u *unstructured.Unstructured, defaultNamespace string) (dynamic.ResourceInterface, error) {
	m, err := c.mapping(u.GroupVersionKind())
	if err != nil {
		return nil, err
	}
	if m.Scope.Name() != meta.RESTScopeNameNamespace {
		return c.Dynamic.Resource(m.Resource), nil
	}
	if u.GetNamespace() == "" {
		if defaultNamespace == "" {
			defaultNamespace = metav1.NamespaceDefault
		}
		u.SetNamespace(defaultNamespace)
	}
	return c.Dynamic.Resource(m.Resource).Namespace(u.GetNamespace()), nil
}
