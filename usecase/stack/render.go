package stack

import (
	"bytes"
	"context"
	"fmt"

	"github.com/kompox/webstack/domain/model"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"
)

const redacted = "[REDACTED]"

// PlanInput is the input of Plan.
type PlanInput struct {
	Env *model.Environment `json:"env"`
}

// PlanOutput is the outcome of Plan.
type PlanOutput struct {
	Plan *Plan
	// Levels lists step IDs in submission order.
	Levels [][]string `json:"levels"`
}

// Plan composes the plan for in.Env without submitting anything.
func (u *UseCase) Plan(_ context.Context, in *PlanInput) (*PlanOutput, error) {
	if in == nil || in.Env == nil {
		return nil, fmt.Errorf("PlanInput.Env is required")
	}
	p, err := Compose(in.Env, u.DNSPort)
	if err != nil {
		return nil, err
	}
	levels, err := p.Graph.Levels()
	if err != nil {
		return nil, err
	}
	return &PlanOutput{Plan: p, Levels: levels}, nil
}

type stepSummary struct {
	ID        string   `json:"id"`
	Kind      StepKind `json:"kind"`
	DependsOn []string `json:"dependsOn,omitempty"`
	Release   any      `json:"release,omitempty"`
	FQDN      string   `json:"fqdn,omitempty"`
	Objects   []string `json:"objects,omitempty"`
}

type planSummary struct {
	Stack    string               `json:"stack"`
	Platform model.Platform       `json:"platform"`
	Hostname string               `json:"hostname"`
	Handle   *model.ComputeHandle `json:"handle"`
	Policy   model.PlatformPolicy `json:"policy"`
	Levels   [][]string           `json:"levels"`
	Steps    []stepSummary        `json:"steps"`
}

// Render writes the plan as a multi-document YAML stream: a summary followed
// by every declared object. Secret values are redacted.
func (p *Plan) Render() ([]byte, error) {
	levels, err := p.Graph.Levels()
	if err != nil {
		return nil, err
	}
	sum := planSummary{
		Stack:    p.Env.Stack,
		Platform: p.Handle.Platform,
		Hostname: p.Env.Hostname(),
		Handle:   p.Handle,
		Policy:   p.Policy,
		Levels:   levels,
	}
	var objs []runtime.Object
	for _, id := range p.Graph.IDs() {
		s := p.Step(id)
		ss := stepSummary{ID: s.ID, Kind: s.Kind, DependsOn: p.Graph.DependsOn(id), FQDN: s.FQDN}
		if s.Release != nil {
			ss.Release = s.Release
		}
		for _, o := range s.Objects {
			ss.Objects = append(ss.Objects, objectRef(o))
			objs = append(objs, o)
		}
		sum.Steps = append(sum.Steps, ss)
	}

	var buf bytes.Buffer
	doc, err := yaml.Marshal(sum)
	if err != nil {
		return nil, fmt.Errorf("render plan: %w", err)
	}
	buf.Write(doc)
	for _, o := range objs {
		doc, err := yaml.Marshal(redact(o))
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", objectRef(o), err)
		}
		buf.WriteString("---\n")
		buf.Write(doc)
	}
	return buf.Bytes(), nil
}

func objectRef(o runtime.Object) string {
	kind := o.GetObjectKind().GroupVersionKind().Kind
	if m, ok := o.(interface {
		GetNamespace() string
		GetName() string
	}); ok {
		if ns := m.GetNamespace(); ns != "" {
			return kind + "/" + ns + "/" + m.GetName()
		}
		return kind + "/" + m.GetName()
	}
	return kind
}

// redact returns o with secret payloads replaced.
func redact(o runtime.Object) runtime.Object {
	s, ok := o.(*corev1.Secret)
	if !ok {
		return o
	}
	cp := s.DeepCopy()
	for k := range cp.StringData {
		cp.StringData[k] = redacted
	}
	for k := range cp.Data {
		cp.Data[k] = []byte(redacted)
	}
	return cp
}
