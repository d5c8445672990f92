package aks

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/containerservice/armcontainerservice"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armdeploymentstacks"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/kompox/webstack/adapters/kube"
	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/internal/kubeconfig"
	"github.com/kompox/webstack/internal/logging"
	"k8s.io/client-go/tools/clientcmd"
)

// mainJSON is the subscription-scope ARM template declaring the resource group
// and, nested inside it, the virtual network, the managed cluster and the
// subnet role assignment.
//
//go:embed main.json
var mainJSON []byte

// Template output keys.
const (
	outputResourceGroupName = "AZURE_RESOURCE_GROUP_NAME"
	outputAksClusterName    = "AZURE_AKS_CLUSTER_NAME"
	outputAksPrincipalID    = "AZURE_AKS_PRINCIPAL_ID"
)

const (
	provisionTimeout = 30 * time.Minute
	statusTimeout    = 5 * time.Minute
	systemPoolName   = "system"
)

// clusterTags returns tags attached to every resource of the cluster.
func clusterTags(h *model.ComputeHandle) map[string]*string {
	return map[string]*string{
		"managed-by":       to.Ptr(kube.ManagedByValue),
		"webstack-cluster": to.Ptr(h.ClusterName),
	}
}

// declaredSizing returns the handle sizing or the fixed cloud sizing.
func declaredSizing(h *model.ComputeHandle) model.NodeSizing {
	if h.Sizing != nil {
		return *h.Sizing
	}
	return model.CloudNodeSizing()
}

// declaredNetwork returns the handle network or the fixed cloud network.
func declaredNetwork(h *model.ComputeHandle) model.NetworkSpec {
	if h.Network != nil {
		return *h.Network
	}
	return model.CloudNetwork()
}

// templateParameters renders deployment stack parameters for h. rg is the
// resource group the template creates.
func (d *driver) templateParameters(h *model.ComputeHandle, rg string) map[string]*armdeploymentstacks.DeploymentParameter {
	sizing := declaredSizing(h)
	network := declaredNetwork(h)
	zones := make([]any, 0, len(sizing.Zones))
	for _, z := range sizing.Zones {
		zones = append(zones, z)
	}
	tags := map[string]any{}
	for k, v := range clusterTags(h) {
		tags[k] = *v
	}
	values := map[string]any{
		"resourceGroupName":  rg,
		"clusterName":        managedClusterName(h),
		"dnsPrefix":          dnsPrefix(h),
		"location":           d.AzureLocation,
		"kubernetesVersion":  h.Setting(settingKubernetesVer),
		"vnetAddressPrefix":  network.AddressPrefix,
		"subnetPrefix":       network.SubnetPrefix,
		"vmSize":             sizing.InstanceClass,
		"nodeCount":          sizing.Desired,
		"minCount":           sizing.Min,
		"maxCount":           sizing.Max,
		"availabilityZones":  zones,
		"enableNodePublicIP": !sizing.PrivateNodes,
		"tags":               tags,
	}
	params := make(map[string]*armdeploymentstacks.DeploymentParameter, len(values))
	for k, v := range values {
		params[k] = &armdeploymentstacks.DeploymentParameter{Value: v}
	}
	return params
}

// sizingDrift lists differences between an existing system pool and the declared sizing.
func sizingDrift(mc *armcontainerservice.ManagedCluster, sizing model.NodeSizing) []string {
	if mc == nil || mc.Properties == nil {
		return nil
	}
	var pool *armcontainerservice.ManagedClusterAgentPoolProfile
	for _, p := range mc.Properties.AgentPoolProfiles {
		if p != nil && p.Name != nil && *p.Name == systemPoolName {
			pool = p
			break
		}
	}
	if pool == nil {
		return []string{"system node pool not found"}
	}
	var drift []string
	if pool.VMSize != nil && *pool.VMSize != sizing.InstanceClass {
		drift = append(drift, fmt.Sprintf("instance class %s != %s", *pool.VMSize, sizing.InstanceClass))
	}
	if pool.MinCount != nil && *pool.MinCount != sizing.Min {
		drift = append(drift, fmt.Sprintf("min %d != %d", *pool.MinCount, sizing.Min))
	}
	if pool.MaxCount != nil && *pool.MaxCount != sizing.Max {
		drift = append(drift, fmt.Sprintf("max %d != %d", *pool.MaxCount, sizing.Max))
	}
	return drift
}

// ClusterProvision submits the subscription-scope template as a deployment
// stack owning the cluster resource group. A previously succeeded stack is
// left alone unless forced.
func (d *driver) ClusterProvision(ctx context.Context, h *model.ComputeHandle, opts ...model.ClusterProvisionOption) (err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "ClusterProvision", h)
	defer func() { cleanup(err) }()

	ctx, cancel := context.WithTimeout(ctx, provisionTimeout)
	defer cancel()

	o := &model.ClusterProvisionOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	log := logging.FromContext(ctx)

	sizing := declaredSizing(h)
	if err := sizing.Validate(); err != nil {
		return err
	}
	rg, err := resourceGroupName(h)
	if err != nil {
		return err
	}

	aksClient, err := armcontainerservice.NewManagedClustersClient(d.AzureSubscriptionId, d.TokenCredential, nil)
	if err != nil {
		return fmt.Errorf("create AKS client: %w", err)
	}
	if existing, err := aksClient.Get(ctx, rg, managedClusterName(h), nil); err == nil {
		if drift := sizingDrift(&existing.ManagedCluster, sizing); len(drift) > 0 {
			log.Warn(ctx, "existing cluster differs from declared sizing; changing it may replace the node pool", "drift", drift)
		}
	}

	stacksClient, err := armdeploymentstacks.NewClient(d.AzureSubscriptionId, d.TokenCredential, nil)
	if err != nil {
		return fmt.Errorf("create deployment stacks client: %w", err)
	}
	name := deploymentStackName(rg)
	if existing, err := stacksClient.GetAtSubscription(ctx, name, nil); err == nil {
		if existing.Properties != nil && existing.Properties.ProvisioningState != nil &&
			*existing.Properties.ProvisioningState == armdeploymentstacks.DeploymentStackProvisioningStateSucceeded {
			if !o.Force {
				log.Info(ctx, "aks cluster already provisioned", "stack", name)
				return nil
			}
			log.Info(ctx, "force enabled, re-issuing deployment stack", "stack", name)
		}
	}

	var template map[string]any
	if err := json.Unmarshal(mainJSON, &template); err != nil {
		return fmt.Errorf("unmarshal embedded template: %w", err)
	}
	stack := armdeploymentstacks.DeploymentStack{
		Location: to.Ptr(d.AzureLocation),
		Properties: &armdeploymentstacks.DeploymentStackProperties{
			Template:   template,
			Parameters: d.templateParameters(h, rg),
			// Resources dropped from the template are detached, never deleted, on update.
			ActionOnUnmanage: &armdeploymentstacks.ActionOnUnmanage{
				Resources:        to.Ptr(armdeploymentstacks.DeploymentStacksDeleteDetachEnumDetach),
				ResourceGroups:   to.Ptr(armdeploymentstacks.DeploymentStacksDeleteDetachEnumDetach),
				ManagementGroups: to.Ptr(armdeploymentstacks.DeploymentStacksDeleteDetachEnumDetach),
			},
			DenySettings: &armdeploymentstacks.DenySettings{
				Mode: to.Ptr(armdeploymentstacks.DenySettingsModeNone),
			},
		},
		Tags: clusterTags(h),
	}
	poller, err := stacksClient.BeginCreateOrUpdateAtSubscription(ctx, name, stack, nil)
	if err != nil {
		return fmt.Errorf("begin deployment stack: %w", err)
	}
	res, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return fmt.Errorf("deployment stack failed: %w", err)
	}
	outputs := stackOutputs(res.Properties)
	log.Info(ctx, "aks cluster deployed", "resource_group", outputs[outputResourceGroupName], "aks", outputs[outputAksClusterName], "principal", outputs[outputAksPrincipalID])
	return nil
}

// stackOutputs flattens {"KEY": {"type": ..., "value": v}} into {"KEY": v}.
// ARM may change the case of output keys, so keys are upper-cased.
func stackOutputs(props *armdeploymentstacks.DeploymentStackProperties) map[string]any {
	out := map[string]any{}
	if props == nil {
		return out
	}
	m, ok := props.Outputs.(map[string]any)
	if !ok {
		return out
	}
	for k, v := range m {
		if ov, ok := v.(map[string]any); ok {
			if val, exists := ov["value"]; exists {
				out[strings.ToUpper(k)] = val
			}
		}
	}
	return out
}

// ownsResourceGroup reports whether tags mark a resource group as created
// for cluster h.
func ownsResourceGroup(tags map[string]*string, h *model.ComputeHandle) bool {
	for k, want := range clusterTags(h) {
		if v, ok := tags[k]; !ok || v == nil || *v != *want {
			return false
		}
	}
	return true
}

// ClusterDeprovision deletes the deployment stack together with the resource
// group and every resource it manages. Without a stack, a resource group
// carrying the cluster tags is deleted directly; an untagged one is kept.
func (d *driver) ClusterDeprovision(ctx context.Context, h *model.ComputeHandle, _ ...model.ClusterDeprovisionOption) (err error) {
	ctx, cleanup := d.withMethodLogger(ctx, "ClusterDeprovision", h)
	defer func() { cleanup(err) }()

	ctx, cancel := context.WithTimeout(ctx, provisionTimeout)
	defer cancel()

	rg, err := resourceGroupName(h)
	if err != nil {
		return err
	}
	stacksClient, err := armdeploymentstacks.NewClient(d.AzureSubscriptionId, d.TokenCredential, nil)
	if err != nil {
		return fmt.Errorf("create deployment stacks client: %w", err)
	}
	name := deploymentStackName(rg)
	if _, err := stacksClient.GetAtSubscription(ctx, name, nil); err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("get deployment stack %s: %w", name, err)
		}
		return d.deleteTaggedResourceGroup(ctx, h, rg)
	}
	poller, err := stacksClient.BeginDeleteAtSubscription(ctx, name, &armdeploymentstacks.ClientBeginDeleteAtSubscriptionOptions{
		UnmanageActionResources:        to.Ptr(armdeploymentstacks.UnmanageActionResourceModeDelete),
		UnmanageActionResourceGroups:   to.Ptr(armdeploymentstacks.UnmanageActionResourceGroupModeDelete),
		UnmanageActionManagementGroups: to.Ptr(armdeploymentstacks.UnmanageActionManagementGroupModeDelete),
	})
	if err != nil {
		return fmt.Errorf("begin deployment stack deletion: %w", err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete deployment stack %s: %w", name, err)
	}
	return nil
}

func (d *driver) deleteTaggedResourceGroup(ctx context.Context, h *model.ComputeHandle, rg string) error {
	log := logging.FromContext(ctx)
	groupsClient, err := armresources.NewResourceGroupsClient(d.AzureSubscriptionId, d.TokenCredential, nil)
	if err != nil {
		return fmt.Errorf("create resource groups client: %w", err)
	}
	got, err := groupsClient.Get(ctx, rg, nil)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("get resource group %s: %w", rg, err)
	}
	if !ownsResourceGroup(got.Tags, h) {
		log.Warn(ctx, "resource group is not tagged for this cluster, leaving it in place", "resource_group", rg)
		return nil
	}
	poller, err := groupsClient.BeginDelete(ctx, rg, nil)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("begin resource group deletion: %w", err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete resource group %s: %w", rg, err)
	}
	return nil
}

// ClusterStatus reports provisioning state from ARM and readiness from the API server.
func (d *driver) ClusterStatus(ctx context.Context, h *model.ComputeHandle) (*model.ClusterStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	st := &model.ClusterStatus{Driver: d.ID()}
	rg, err := resourceGroupName(h)
	if err != nil {
		return nil, err
	}
	aksClient, err := armcontainerservice.NewManagedClustersClient(d.AzureSubscriptionId, d.TokenCredential, nil)
	if err != nil {
		return nil, fmt.Errorf("create AKS client: %w", err)
	}
	mc, err := aksClient.Get(ctx, rg, managedClusterName(h), nil)
	if err != nil {
		if isNotFound(err) {
			st.Detail = "not found"
			return st, nil
		}
		return nil, fmt.Errorf("get AKS cluster: %w", err)
	}
	if mc.Properties != nil {
		if mc.Properties.ProvisioningState != nil {
			st.Detail = *mc.Properties.ProvisioningState
			st.Provisioned = *mc.Properties.ProvisioningState == "Succeeded"
		}
		if mc.Properties.KubernetesVersion != nil {
			st.Version = *mc.Properties.KubernetesVersion
		}
	}
	if !st.Provisioned {
		return st, nil
	}

	kc, err := d.ClusterKubeconfig(ctx, h)
	if err != nil {
		st.Detail = err.Error()
		return st, nil
	}
	c, err := kube.NewClient(kc)
	if err != nil {
		st.Detail = err.Error()
		return st, nil
	}
	if v, err := c.ServerVersion(ctx); err == nil {
		st.Ready = true
		st.Version = v
	} else {
		st.Detail = err.Error()
	}
	return st, nil
}

// ClusterKubeconfig returns kubeconfig bytes for the cluster, with the context
// renamed to the cluster name. User credentials are returned unless
// AZURE_AKS_ADMIN_CREDENTIALS is true.
func (d *driver) ClusterKubeconfig(ctx context.Context, h *model.ComputeHandle) ([]byte, error) {
	rg, err := resourceGroupName(h)
	if err != nil {
		return nil, err
	}
	aksClient, err := armcontainerservice.NewManagedClustersClient(d.AzureSubscriptionId, d.TokenCredential, nil)
	if err != nil {
		return nil, fmt.Errorf("create AKS client: %w", err)
	}

	var creds []*armcontainerservice.CredentialResult
	admin, _ := strconv.ParseBool(h.Setting(settingAdminCredentials))
	if admin {
		res, err := aksClient.ListClusterAdminCredentials(ctx, rg, managedClusterName(h), nil)
		if err != nil {
			return nil, fmt.Errorf("get cluster admin credentials: %w", err)
		}
		creds = res.Kubeconfigs
	} else {
		res, err := aksClient.ListClusterUserCredentials(ctx, rg, managedClusterName(h), nil)
		if err != nil {
			return nil, fmt.Errorf("get cluster user credentials: %w", err)
		}
		creds = res.Kubeconfigs
	}
	if len(creds) == 0 || creds[0] == nil || len(creds[0].Value) == 0 {
		return nil, fmt.Errorf("no kubeconfig found for cluster")
	}

	cfg, err := kubeconfig.Normalize(creds[0].Value, h.ClusterName, "")
	if err != nil {
		return nil, err
	}
	return clientcmd.Write(*cfg)
}
