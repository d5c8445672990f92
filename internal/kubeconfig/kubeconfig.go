// Package kubeconfig reduces driver kubeconfigs to a single named context and
// merges them into a user's kubeconfig file.
package kubeconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
	"sigs.k8s.io/yaml"
)

// Normalize parses data and keeps only its current context together with the
// cluster and user it references, with files inlined. When name is set the
// context, cluster and user are all renamed to it. namespace, when set,
// becomes the context default.
func Normalize(data []byte, name, namespace string) (*clientcmdapi.Config, error) {
	cfg, err := clientcmd.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parse kubeconfig: %w", err)
	}
	if cfg.CurrentContext == "" {
		if len(cfg.Contexts) != 1 {
			return nil, fmt.Errorf("kubeconfig has no current context")
		}
		for k := range cfg.Contexts {
			cfg.CurrentContext = k
		}
	}
	if cfg.Contexts[cfg.CurrentContext] == nil {
		return nil, fmt.Errorf("context %q not found in kubeconfig", cfg.CurrentContext)
	}
	if err := clientcmdapi.MinifyConfig(cfg); err != nil {
		return nil, fmt.Errorf("minify kubeconfig: %w", err)
	}
	if err := clientcmdapi.FlattenConfig(cfg); err != nil {
		return nil, fmt.Errorf("flatten kubeconfig: %w", err)
	}

	ctxName := cfg.CurrentContext
	kctx := cfg.Contexts[ctxName]
	cluster, ok := cfg.Clusters[kctx.Cluster]
	if !ok {
		return nil, fmt.Errorf("referenced cluster %q not found", kctx.Cluster)
	}
	user, ok := cfg.AuthInfos[kctx.AuthInfo]
	if !ok {
		return nil, fmt.Errorf("referenced user %q not found", kctx.AuthInfo)
	}
	if namespace != "" {
		kctx.Namespace = namespace
	}
	if name == "" {
		return cfg, nil
	}

	out := clientcmdapi.NewConfig()
	kctx.Cluster = name
	kctx.AuthInfo = name
	out.Clusters[name] = cluster
	out.AuthInfos[name] = user
	out.Contexts[name] = kctx
	out.CurrentContext = name
	return out, nil
}

// DefaultPath returns the first entry of $KUBECONFIG, or ~/.kube/config.
func DefaultPath() string {
	for _, p := range filepath.SplitList(os.Getenv(clientcmd.RecommendedConfigPathEnvVar)) {
		if p != "" {
			return p
		}
	}
	return clientcmd.RecommendedHomeFile
}

// MergeOptions controls MergeFile.
type MergeOptions struct {
	// Overwrite replaces entries with the same names instead of suffixing -1, -2...
	Overwrite bool
	// SetCurrent selects the merged context.
	SetCurrent bool
}

// MergeResult describes what MergeFile wrote.
type MergeResult struct {
	Path    string `json:"path"`
	Context string `json:"context"`
	Current bool   `json:"current"`
}

// MergeFile merges the current context of cfg into the kubeconfig at path and
// writes the file back. A missing or unreadable file is treated as empty.
func MergeFile(path string, cfg *clientcmdapi.Config, opts MergeOptions) (*MergeResult, error) {
	if cfg == nil || cfg.Contexts[cfg.CurrentContext] == nil {
		return nil, fmt.Errorf("input kubeconfig has no current context")
	}
	src := cfg.Contexts[cfg.CurrentContext]
	cluster, ok := cfg.Clusters[src.Cluster]
	if !ok {
		return nil, fmt.Errorf("referenced cluster %q not found", src.Cluster)
	}
	user, ok := cfg.AuthInfos[src.AuthInfo]
	if !ok {
		return nil, fmt.Errorf("referenced user %q not found", src.AuthInfo)
	}

	dst, err := clientcmd.LoadFromFile(path)
	if err != nil {
		dst = clientcmdapi.NewConfig()
	}

	ctxName, clusterName, userName := cfg.CurrentContext, src.Cluster, src.AuthInfo
	if !opts.Overwrite {
		ctxName = uniqueName(ctxName, dst.Contexts)
		clusterName = uniqueName(clusterName, dst.Clusters)
		userName = uniqueName(userName, dst.AuthInfos)
	}
	kctx := src.DeepCopy()
	kctx.Cluster = clusterName
	kctx.AuthInfo = userName
	dst.Clusters[clusterName] = cluster.DeepCopy()
	dst.AuthInfos[userName] = user.DeepCopy()
	dst.Contexts[ctxName] = kctx

	res := &MergeResult{Path: path, Context: ctxName}
	if opts.SetCurrent || dst.CurrentContext == "" {
		dst.CurrentContext = ctxName
		res.Current = true
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create kubeconfig dir: %w", err)
	}
	if err := clientcmd.WriteToFile(*dst, path); err != nil {
		return nil, fmt.Errorf("write kubeconfig: %w", err)
	}
	return res, nil
}

// Encode serializes cfg as yaml (default) or json.
func Encode(cfg *clientcmdapi.Config, format string) ([]byte, error) {
	data, err := clientcmd.Write(*cfg)
	if err != nil {
		return nil, fmt.Errorf("serialize kubeconfig: %w", err)
	}
	switch format {
	case "", "yaml":
		return data, nil
	case "json":
		j, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("convert to json: %w", err)
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unsupported kubeconfig format %q", format)
	}
}

func uniqueName[T any](name string, m map[string]T) string {
	if _, ok := m[name]; !ok {
		return name
	}
	for i := 1; ; i++ {
		if cand := fmt.Sprintf("%s-%d", name, i); !hasKey(m, cand) {
			return cand
		}
	}
}

func hasKey[T any](m map[string]T, k string) bool {
	_, ok := m[k]
	return ok
}
