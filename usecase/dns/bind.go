package dns

import (
	"context"
	"fmt"
	"time"

	"github.com/kompox/webstack/adapters/kube"
	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/internal/logging"
)

// DefaultPollInterval is used when UseCase.PollInterval is not set.
const DefaultPollInterval = 5 * time.Second

// BindInput holds parameters for binding the public hostname.
type BindInput struct {
	Env    *model.Environment   `json:"env"`
	Handle *model.ComputeHandle `json:"handle"`
	// Timeout bounds the wait for the edge address.
	Timeout time.Duration `json:"timeout"`
}

// BindOutput holds the result of a binding.
type BindOutput struct {
	Record model.DNSRecordSet `json:"record"`
	Action string             `json:"action"`
}

// UnbindInput holds parameters for removing the public hostname record.
type UnbindInput struct {
	Env    *model.Environment   `json:"env"`
	Handle *model.ComputeHandle `json:"handle"`
}

// checkBindable rejects environments whose hostname cannot be published.
func checkBindable(env *model.Environment) error {
	if env == nil {
		return fmt.Errorf("environment is required")
	}
	if !model.PolicyFor(env.Platform).BindDNS {
		return fmt.Errorf("platform %s does not publish DNS records", env.Platform)
	}
	if env.Domain == "" || env.Domain == model.DefaultDomain {
		return fmt.Errorf("%w: %q cannot be bound in public DNS", model.ErrInvalidDomain, env.Domain)
	}
	return nil
}

func (u *UseCase) reader(ctx context.Context, h *model.ComputeHandle) (EdgeReader, error) {
	kubeconfig, err := u.ClusterPort.Kubeconfig(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("get kubeconfig: %w", err)
	}
	factory := u.NewReader
	if factory == nil {
		factory = func(ctx context.Context, kc []byte) (EdgeReader, error) {
			return kube.NewTarget(ctx, kc)
		}
	}
	return factory(ctx, kubeconfig)
}

// Bind waits for the edge address of the deployed stack and upserts the
// hostname record. The address is stored as a stack output.
func (u *UseCase) Bind(ctx context.Context, in *BindInput) (*BindOutput, error) {
	if in == nil || in.Handle == nil {
		return nil, fmt.Errorf("BindInput.Env and Handle are required")
	}
	if err := checkBindable(in.Env); err != nil {
		return nil, err
	}
	reader, err := u.reader(ctx, in.Handle)
	if err != nil {
		return nil, err
	}
	interval := u.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	timeout := in.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	edge := model.NewDeferred[model.EdgeAddress]()
	go WatchEdge(wctx, reader, interval, edge)
	addr, err := AwaitEdge(ctx, edge, timeout)
	if err != nil {
		return nil, err
	}

	rset, err := model.RecordFor(in.Env.Hostname(), addr)
	if err != nil {
		return nil, err
	}
	action, err := u.DNSPort.Upsert(ctx, in.Env.DNSAccess(), rset)
	if err != nil {
		return nil, err
	}
	if u.Repos != nil && u.Repos.Output != nil {
		o := &model.StackOutput{Stack: in.Env.Stack, Key: model.OutputEdgeAddress, Value: addr.String()}
		if err := u.Repos.Output.Put(ctx, o); err != nil {
			return nil, fmt.Errorf("store output: %w", err)
		}
	}
	logging.FromContext(ctx).Info(ctx, "hostname bound", "fqdn", rset.FQDN, "type", rset.Type, "action", action)
	return &BindOutput{Record: rset, Action: action}, nil
}

// Unbind removes the hostname record. The record type follows the stored
// edge address; without one every edge record type is removed.
func (u *UseCase) Unbind(ctx context.Context, in *UnbindInput) error {
	if in == nil {
		return fmt.Errorf("UnbindInput is required")
	}
	if err := checkBindable(in.Env); err != nil {
		return err
	}
	access := in.Env.DNSAccess()
	fqdn := in.Env.Hostname()
	types := model.EdgeRecordTypes()
	if u.Repos != nil && u.Repos.Output != nil {
		if o, err := u.Repos.Output.Get(ctx, in.Env.Stack, model.OutputEdgeAddress); err == nil {
			if rset, err := model.RecordFor(fqdn, model.ParseEdgeAddress(o.Value)); err == nil {
				types = []model.DNSRecordType{rset.Type}
			}
		}
	}
	for _, t := range types {
		if err := u.DNSPort.Delete(ctx, access, model.DNSRecordSet{FQDN: fqdn, Type: t}); err != nil {
			return err
		}
	}
	return nil
}
