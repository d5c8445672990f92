package aks

// Azure resource names derived from the compute handle.
//
//	resource group   AZURE_RESOURCE_GROUP_NAME, else {prefix}_{cluster}_{hash}
//	managed cluster  {prefix}-{cluster}
//	dns prefix       managed cluster name reduced to letters, digits and hyphens
//	deployment stack webstack_{resource group}
//
// prefix is AZURE_RESOURCE_PREFIX or "webstack". hash is naming.StackHash("aks", cluster)
// so two clusters whose names collide after truncation still get distinct groups.

import (
	"fmt"
	"strings"

	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/internal/naming"
)

const (
	maxResourcePrefix     = 32
	maxResourceName       = 72
	maxClusterName        = 63
	maxDNSPrefix          = 54
	maxStackName          = 90
	defaultResourcePrefix = "webstack"
	keyResourcePrefix     = "AZURE_RESOURCE_PREFIX"
	keyResourceGroupName  = "AZURE_RESOURCE_GROUP_NAME"
)

// sanitize maps characters Azure rejects in resource names to '-'.
func sanitize(s string, allowUnderscore bool) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		case r == '_' && allowUnderscore:
			return r
		}
		return '-'
	}, s)
}

// joinBounded returns base_suffix no longer than limit, cutting base first.
func joinBounded(base, suffix string, limit int) (string, error) {
	room := limit - len(suffix) - 1
	if room < 1 {
		return "", fmt.Errorf("suffix %q leaves no room within %d characters", suffix, limit)
	}
	if len(base) > room {
		base = base[:room]
	}
	return base + "_" + suffix, nil
}

// truncate cuts s to limit and drops trailing separators, which Azure
// rejects at the end of cluster names.
func truncate(s string, limit int) string {
	if len(s) > limit {
		s = s[:limit]
	}
	return strings.TrimRight(s, "-_")
}

func resourcePrefix(h *model.ComputeHandle) string {
	p := sanitize(h.Setting(keyResourcePrefix), true)
	if p == "" {
		p = defaultResourcePrefix
	}
	if len(p) > maxResourcePrefix {
		p = p[:maxResourcePrefix]
	}
	return p
}

// resourceGroupName returns the resource group holding every cloud resource of the cluster.
func resourceGroupName(h *model.ComputeHandle) (string, error) {
	if h == nil || h.ClusterName == "" {
		return "", fmt.Errorf("cluster name is required")
	}
	if v := h.Setting(keyResourceGroupName); v != "" {
		return v, nil
	}
	base := resourcePrefix(h) + "_" + sanitize(h.ClusterName, true)
	name, err := joinBounded(base, naming.StackHash("aks", h.ClusterName), maxResourceName)
	if err != nil {
		return "", fmt.Errorf("cluster resource group name: %w", err)
	}
	return name, nil
}

func managedClusterName(h *model.ComputeHandle) string {
	return truncate(resourcePrefix(h)+"-"+sanitize(h.ClusterName, true), maxClusterName)
}

// deploymentStackName names the subscription-scope stack owning resource group rg.
func deploymentStackName(rg string) string {
	return truncate(defaultResourcePrefix+"_"+rg, maxStackName)
}

// dnsPrefix returns the API server FQDN prefix. It must start with a letter
// or digit.
func dnsPrefix(h *model.ComputeHandle) string {
	p := strings.TrimLeft(sanitize(managedClusterName(h), false), "-")
	return truncate(p, maxDNSPrefix)
}
