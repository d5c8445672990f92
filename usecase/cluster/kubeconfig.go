package cluster

import (
	"context"
	"fmt"

	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/internal/kubeconfig"
	"github.com/kompox/webstack/usecase/stack"
)

// KubeconfigInput selects how the cluster kubeconfig is returned.
type KubeconfigInput struct {
	Env *model.Environment `json:"env"`
	// Context names the context, cluster and user. Defaults to the stack name.
	Context   string `json:"context,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	// Merge writes into Path instead of returning the document.
	Merge      bool   `json:"merge,omitempty"`
	Path       string `json:"path,omitempty"`
	Overwrite  bool   `json:"overwrite,omitempty"`
	SetCurrent bool   `json:"setCurrent,omitempty"`
	// Format is yaml or json.
	Format string `json:"format,omitempty"`
}

// KubeconfigOutput holds either the encoded document or the merge result.
type KubeconfigOutput struct {
	Data   []byte                  `json:"-"`
	Merged *kubeconfig.MergeResult `json:"merged,omitempty"`
}

// Kubeconfig fetches credentials for the environment's cluster.
func (u *UseCase) Kubeconfig(ctx context.Context, in *KubeconfigInput) (*KubeconfigOutput, error) {
	if in == nil || in.Env == nil {
		return nil, fmt.Errorf("KubeconfigInput.Env is required")
	}
	h, err := stack.SelectPlatform(in.Env)
	if err != nil {
		return nil, err
	}
	raw, err := u.ClusterPort.Kubeconfig(ctx, h)
	if err != nil {
		return nil, err
	}
	name := in.Context
	if name == "" {
		name = in.Env.Stack
	}
	cfg, err := kubeconfig.Normalize(raw, name, in.Namespace)
	if err != nil {
		return nil, err
	}
	if in.Merge {
		path := in.Path
		if path == "" {
			path = kubeconfig.DefaultPath()
		}
		res, err := kubeconfig.MergeFile(path, cfg, kubeconfig.MergeOptions{Overwrite: in.Overwrite, SetCurrent: in.SetCurrent})
		if err != nil {
			return nil, err
		}
		return &KubeconfigOutput{Merged: res}, nil
	}
	data, err := kubeconfig.Encode(cfg, in.Format)
	if err != nil {
		return nil, err
	}
	return &KubeconfigOutput{Data: data}, nil
}
