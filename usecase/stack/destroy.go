package stack

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kompox/webstack/adapters/kube"
	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/internal/logging"
	"golang.org/x/sync/errgroup"
)

// DestroyInput is the input of Destroy.
type DestroyInput struct {
	Env *model.Environment `json:"env"`
	// Deprovision also deletes the cluster. Without it the cluster is kept.
	Deprovision bool `json:"deprovision,omitempty"`
}

// DestroyOutput is the outcome of Destroy.
type DestroyOutput struct {
	Removed       []string `json:"removed"`
	Deprovisioned bool     `json:"deprovisioned"`
}

// Destroy tears the plan down in reverse dependency order. Teardown is best
// effort: every step is attempted and the failures are joined.
func (u *UseCase) Destroy(ctx context.Context, in *DestroyInput) (*DestroyOutput, error) {
	if in == nil || in.Env == nil {
		return nil, fmt.Errorf("DestroyInput.Env is required")
	}
	plan, err := Compose(in.Env, u.DNSPort)
	if err != nil {
		return nil, err
	}
	levels, err := plan.Graph.ReverseLevels()
	if err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx).With("stack", in.Env.Stack, "platform", plan.Handle.Platform)
	out := &DestroyOutput{}

	target, err := u.connect(ctx, plan.Handle)
	if err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	for _, level := range levels {
		var g errgroup.Group
		for _, id := range level {
			step := plan.Step(id)
			if step.Kind == KindCluster {
				continue
			}
			if target == nil && step.Kind != KindDNS {
				continue
			}
			g.Go(func() error {
				err := u.teardown(ctx, plan, target, step)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					logger.Warn(ctx, "teardown failed", "step", step.ID, "err", err)
					errs = append(errs, fmt.Errorf("step %s: %w", step.ID, err))
				} else {
					out.Removed = append(out.Removed, step.ID)
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	if in.Deprovision {
		if err := u.ClusterPort.Deprovision(ctx, plan.Handle); err != nil {
			errs = append(errs, fmt.Errorf("deprovision cluster: %w", err))
		} else {
			out.Deprovisioned = true
		}
	}
	if len(errs) == 0 && u.Repos != nil && u.Repos.Output != nil {
		if err := u.Repos.Output.DeleteStack(ctx, in.Env.Stack); err != nil {
			errs = append(errs, fmt.Errorf("delete outputs: %w", err))
		}
	}
	return out, errors.Join(errs...)
}

// connect returns a target for the cluster, or nil when the cluster does not exist.
func (u *UseCase) connect(ctx context.Context, h *model.ComputeHandle) (Target, error) {
	status, err := u.ClusterPort.Status(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("cluster status: %w", err)
	}
	if !status.Provisioned {
		logging.FromContext(ctx).Info(ctx, "cluster not provisioned; skipping in-cluster teardown", "cluster", h.ClusterName)
		return nil, nil
	}
	kubeconfig, err := u.ClusterPort.Kubeconfig(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("get kubeconfig: %w", err)
	}
	factory := u.NewTarget
	if factory == nil {
		factory = KubeTarget
	}
	return factory(ctx, kubeconfig)
}

func (u *UseCase) teardown(ctx context.Context, plan *Plan, target Target, step *Step) error {
	switch step.Kind {
	case KindManifest:
		return target.Delete(ctx, step.Objects)
	case KindRelease:
		return target.UninstallRelease(ctx, step.Release)
	case KindDNS:
		return u.unbind(ctx, plan, target, step.FQDN)
	default:
		return nil
	}
}

// unbind deletes the hostname record. The record type follows the last known
// edge address; when none is known every edge record type is removed.
func (u *UseCase) unbind(ctx context.Context, plan *Plan, target Target, fqdn string) error {
	access := plan.Env.DNSAccess()
	addr := u.lastEdgeAddress(ctx, plan, target)
	if !addr.Empty() {
		rset, err := model.RecordFor(fqdn, addr)
		if err != nil {
			return err
		}
		return u.DNSPort.Delete(ctx, access, rset)
	}
	var errs []error
	for _, t := range model.EdgeRecordTypes() {
		if err := u.DNSPort.Delete(ctx, access, model.DNSRecordSet{FQDN: fqdn, Type: t}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (u *UseCase) lastEdgeAddress(ctx context.Context, plan *Plan, target Target) model.EdgeAddress {
	if u.Repos != nil && u.Repos.Output != nil {
		if o, err := u.Repos.Output.Get(ctx, plan.Env.Stack, model.OutputEdgeAddress); err == nil {
			return model.ParseEdgeAddress(o.Value)
		}
	}
	if target != nil {
		if a, err := target.EdgeAddress(ctx, kube.EdgeNamespace, kube.EdgeServiceName(kube.EdgeReleaseName)); err == nil {
			return a
		}
	}
	return model.EdgeAddress{}
}
