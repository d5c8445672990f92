package model

import "fmt"

// NodeSizing declares the node pool shape of a managed cluster.
type NodeSizing struct {
	Desired       int32    `json:"desired"`
	Min           int32    `json:"min"`
	Max           int32    `json:"max"`
	InstanceClass string   `json:"instanceClass"`
	Zones         []string `json:"zones"`
	PrivateNodes  bool     `json:"privateNodes"`
}

// Validate checks min <= desired <= max.
func (s NodeSizing) Validate() error {
	if s.Min < 1 {
		return fmt.Errorf("node sizing: min must be positive, got %d", s.Min)
	}
	if s.Min > s.Desired || s.Desired > s.Max {
		return fmt.Errorf("node sizing: want min <= desired <= max, got %d/%d/%d", s.Min, s.Desired, s.Max)
	}
	if s.InstanceClass == "" {
		return fmt.Errorf("node sizing: instance class is empty")
	}
	return nil
}

// CloudNodeSizing returns the fixed sizing of the managed cluster.
func CloudNodeSizing() NodeSizing {
	return NodeSizing{
		Desired:       2,
		Min:           1,
		Max:           2,
		InstanceClass: "Standard_B2s",
		Zones:         []string{"1", "2"},
		PrivateNodes:  true,
	}
}

// NetworkSpec declares the isolated virtual network of a managed cluster.
type NetworkSpec struct {
	AddressPrefix string `json:"addressPrefix"`
	SubnetPrefix  string `json:"subnetPrefix"`
}

// CloudNetwork returns the fixed network layout of the managed cluster.
func CloudNetwork() NetworkSpec {
	return NetworkSpec{AddressPrefix: "10.224.0.0/12", SubnetPrefix: "10.224.0.0/16"}
}

// ComputeHandle identifies the cluster the rest of the plan targets.
type ComputeHandle struct {
	Platform    Platform          `json:"platform"`
	Driver      string            `json:"driver"`
	ClusterName string            `json:"clusterName"`
	Sizing      *NodeSizing       `json:"sizing,omitempty"`
	Network     *NetworkSpec      `json:"network,omitempty"`
	Settings    map[string]string `json:"-"`
}

// Setting returns a driver setting or an empty string.
func (h *ComputeHandle) Setting(key string) string {
	if h == nil || h.Settings == nil {
		return ""
	}
	return h.Settings[key]
}
