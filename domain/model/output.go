package model

import "time"

// Output keys recorded after a successful run.
const (
	OutputPlatform    = "platform"
	OutputHostname    = "hostname"
	OutputEdgeAddress = "edgeAddress"
	OutputClusterName = "clusterName"
)

// StackOutput is a named value exported by a stack for later stages.
type StackOutput struct {
	ID        string    `json:"id"`
	Stack     string    `json:"stack"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
