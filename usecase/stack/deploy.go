package stack

import (
	"context"
	"fmt"
	"time"

	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/internal/logging"
	dnsuc "github.com/kompox/webstack/usecase/dns"
	"golang.org/x/sync/errgroup"
)

// UpInput is the input of Up.
type UpInput struct {
	Env *model.Environment `json:"env"`
	// EdgeTimeout bounds the DNS step's wait for the edge address. Zero selects DefaultEdgeTimeout.
	EdgeTimeout time.Duration `json:"edgeTimeout,omitempty"`
	// ForceProvision resubmits the cluster deployment even when it already succeeded.
	ForceProvision bool `json:"forceProvision,omitempty"`
}

// UpOutput is the outcome of Up.
type UpOutput struct {
	Hostname    string               `json:"hostname"`
	EdgeAddress model.EdgeAddress    `json:"edgeAddress"`
	DNSAction   string               `json:"dnsAction,omitempty"`
	Steps       []string             `json:"steps"`
	Outputs     []*model.StackOutput `json:"outputs"`
	Handle      *model.ComputeHandle `json:"handle"`
	Policy      model.PlatformPolicy `json:"policy"`
}

// runner executes one plan. target is set by the cluster step, which is the
// only step of the first level.
type runner struct {
	u           *UseCase
	plan        *Plan
	edgeTimeout time.Duration
	force       bool
	target      Target
	dnsAction   string
	stopEdge    context.CancelFunc
}

// Up composes the plan for in.Env and submits it level by level. Steps of a
// level run concurrently; the first failure cancels the level and aborts the run.
func (u *UseCase) Up(ctx context.Context, in *UpInput) (*UpOutput, error) {
	if in == nil || in.Env == nil {
		return nil, fmt.Errorf("UpInput.Env is required")
	}
	plan, err := Compose(in.Env, u.DNSPort)
	if err != nil {
		return nil, err
	}
	levels, err := plan.Graph.Levels()
	if err != nil {
		return nil, err
	}

	r := &runner{u: u, plan: plan, edgeTimeout: in.EdgeTimeout, force: in.ForceProvision}
	if r.edgeTimeout <= 0 {
		r.edgeTimeout = DefaultEdgeTimeout
	}
	defer func() {
		if r.stopEdge != nil {
			r.stopEdge()
		}
	}()

	logger := logging.FromContext(ctx).With("stack", in.Env.Stack, "platform", plan.Handle.Platform)
	out := &UpOutput{Hostname: in.Env.Hostname(), Handle: plan.Handle, Policy: plan.Policy}
	for i, level := range levels {
		logger.Debug(ctx, "plan level", "index", i, "steps", level)
		g, gctx := errgroup.WithContext(ctx)
		for _, id := range level {
			step := plan.Step(id)
			g.Go(func() error { return r.run(gctx, step) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		out.Steps = append(out.Steps, level...)
	}

	if addr, ok := plan.Edge.TryGet(); ok {
		out.EdgeAddress = addr
	}
	out.DNSAction = r.dnsAction

	outputs, err := u.recordOutputs(ctx, plan, out.EdgeAddress)
	if err != nil {
		return nil, err
	}
	out.Outputs = outputs
	return out, nil
}

// run submits one step with span logging.
func (r *runner) run(ctx context.Context, step *Step) (err error) {
	logger := logging.FromContext(ctx).With("step", step.ID, "kind", step.Kind)
	msgSym := "STEP:" + step.ID
	start := time.Now()
	logger.Info(ctx, msgSym+"/S")
	defer func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		if err == nil {
			logger.Info(ctx, msgSym+"/EOK", "elapsed", elapsed)
		} else {
			logger.Info(ctx, msgSym+"/EFAIL", "elapsed", elapsed, "err", err)
		}
	}()

	switch step.Kind {
	case KindCluster:
		err = r.provision(ctx)
	case KindManifest:
		err = r.target.Apply(ctx, step.Objects)
	case KindRelease:
		err = r.target.InstallRelease(ctx, step.Release)
		if err == nil && step.ProducesEdge {
			r.startEdgeWatch(ctx)
		}
	case KindDNS:
		r.dnsAction, err = r.bind(ctx, step)
	default:
		err = fmt.Errorf("unknown step kind %q", step.Kind)
	}
	if err != nil {
		return fmt.Errorf("step %s: %w", step.ID, err)
	}
	return nil
}

// provision brings the cluster up and connects the target to it.
func (r *runner) provision(ctx context.Context) error {
	var opts []model.ClusterProvisionOption
	if r.force {
		opts = append(opts, model.WithClusterProvisionForce())
	}
	if err := r.u.ClusterPort.Provision(ctx, r.plan.Handle, opts...); err != nil {
		return fmt.Errorf("provision cluster: %w", err)
	}
	kubeconfig, err := r.u.ClusterPort.Kubeconfig(ctx, r.plan.Handle)
	if err != nil {
		return fmt.Errorf("get kubeconfig: %w", err)
	}
	factory := r.u.NewTarget
	if factory == nil {
		factory = KubeTarget
	}
	target, err := factory(ctx, kubeconfig)
	if err != nil {
		return fmt.Errorf("connect cluster: %w", err)
	}
	r.target = target
	return nil
}

// startEdgeWatch starts the single producer of plan.Edge. It outlives the
// step and stops when Up returns.
func (r *runner) startEdgeWatch(ctx context.Context) {
	// Detached from the level context, which is cancelled when the level completes.
	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.stopEdge = cancel
	go dnsuc.WatchEdge(wctx, r.target, r.u.pollInterval(), r.plan.Edge)
}

// bind waits for the edge address and upserts the hostname record.
func (r *runner) bind(ctx context.Context, step *Step) (string, error) {
	addr, err := dnsuc.AwaitEdge(ctx, r.plan.Edge, r.edgeTimeout)
	if err != nil {
		return "", err
	}
	rset, err := model.RecordFor(step.FQDN, addr)
	if err != nil {
		return "", err
	}
	return r.u.DNSPort.Upsert(ctx, r.plan.Env.DNSAccess(), rset)
}

// recordOutputs stores the exported values of a successful run.
func (u *UseCase) recordOutputs(ctx context.Context, plan *Plan, addr model.EdgeAddress) ([]*model.StackOutput, error) {
	values := []struct{ key, value string }{
		{model.OutputPlatform, string(plan.Handle.Platform)},
		{model.OutputClusterName, plan.Handle.ClusterName},
		{model.OutputHostname, plan.Env.Hostname()},
	}
	if !addr.Empty() {
		values = append(values, struct{ key, value string }{model.OutputEdgeAddress, addr.String()})
	}
	var out []*model.StackOutput
	for _, v := range values {
		o := &model.StackOutput{Stack: plan.Env.Stack, Key: v.key, Value: v.value}
		if u.Repos != nil && u.Repos.Output != nil {
			if err := u.Repos.Output.Put(ctx, o); err != nil {
				return nil, fmt.Errorf("store output %s: %w", v.key, err)
			}
		}
		out = append(out, o)
	}
	return out, nil
}
