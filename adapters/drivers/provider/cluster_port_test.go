package providerdrv

import (
	"context"
	"errors"
	"testing"

	"github.com/kompox/webstack/domain/model"
)

type fakeDriver struct {
	provisioned bool
	force       bool
}

func (f *fakeDriver) ID() string { return "fake" }

func (f *fakeDriver) ClusterProvision(_ context.Context, _ *model.ComputeHandle, opts ...model.ClusterProvisionOption) error {
	o := &model.ClusterProvisionOptions{}
	for _, opt := range opts {
		opt(o)
	}
	f.provisioned = true
	f.force = o.Force
	return nil
}

func (f *fakeDriver) ClusterDeprovision(context.Context, *model.ComputeHandle, ...model.ClusterDeprovisionOption) error {
	f.provisioned = false
	return nil
}

func (f *fakeDriver) ClusterStatus(context.Context, *model.ComputeHandle) (*model.ClusterStatus, error) {
	return &model.ClusterStatus{Provisioned: f.provisioned}, nil
}

func (f *fakeDriver) ClusterKubeconfig(_ context.Context, h *model.ComputeHandle) ([]byte, error) {
	return []byte(h.Setting("KUBECONFIG_DATA")), nil
}

func TestClusterPort_Dispatch(t *testing.T) {
	shared := &fakeDriver{}
	Register("fake", func(settings map[string]string) (Driver, error) {
		if settings["fail"] == "true" {
			return nil, errors.New("boom")
		}
		return shared, nil
	})

	ctx := context.Background()
	port := GetClusterPort()
	h := &model.ComputeHandle{Driver: "fake", Settings: map[string]string{"KUBECONFIG_DATA": "kc"}}

	if err := port.Provision(ctx, h, model.WithClusterProvisionForce()); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if !shared.force {
		t.Fatalf("force option not forwarded")
	}
	st, err := port.Status(ctx, h)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Provisioned || st.Driver != "fake" {
		t.Fatalf("status = %+v", st)
	}
	kc, err := port.Kubeconfig(ctx, h)
	if err != nil || string(kc) != "kc" {
		t.Fatalf("Kubeconfig = %q, %v", kc, err)
	}
	if err := port.Deprovision(ctx, h); err != nil {
		t.Fatalf("Deprovision: %v", err)
	}

	if _, err := port.Status(ctx, &model.ComputeHandle{Driver: "fake", Settings: map[string]string{"fail": "true"}}); err == nil {
		t.Fatalf("expected factory error")
	}
}

func TestClusterPort_UnknownDriver(t *testing.T) {
	err := GetClusterPort().Provision(context.Background(), &model.ComputeHandle{Driver: "nope"})
	if !errors.Is(err, model.ErrDriverNotFound) {
		t.Fatalf("expected ErrDriverNotFound, got %v", err)
	}
	if _, err := driverFor(nil); err == nil {
		t.Fatalf("expected error for nil handle")
	}
}
