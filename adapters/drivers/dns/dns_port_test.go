package dnsdrv

import (
	"context"
	"errors"
	"testing"

	"github.com/kompox/webstack/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDriver struct {
	records map[string]model.DNSRecordSet
}

func (m *memDriver) ID() string { return "mem" }

func (m *memDriver) Upsert(_ context.Context, rset model.DNSRecordSet) (string, error) {
	prev, ok := m.records[rset.FQDN]
	m.records[rset.FQDN] = rset
	switch {
	case !ok:
		return model.DNSActionCreated, nil
	case prev.RData[0] == rset.RData[0]:
		return model.DNSActionUnchanged, nil
	default:
		return model.DNSActionUpdated, nil
	}
}

func (m *memDriver) Delete(_ context.Context, rset model.DNSRecordSet) error {
	delete(m.records, rset.FQDN)
	return nil
}

func TestDNSPort(t *testing.T) {
	mem := &memDriver{records: map[string]model.DNSRecordSet{}}
	Register("mem", func(access model.DNSAccess) (Driver, error) {
		if access.Token.IsZero() {
			return nil, model.MissingCredential("dns api token")
		}
		return mem, nil
	}, func(access model.DNSAccess) (*model.DNSSolver, error) {
		return &model.DNSSolver{SecretName: "mem-secret", SecretKey: "token", Config: map[string]any{"mem": map[string]any{}}}, nil
	})

	ctx := context.Background()
	port := GetDNSPort()
	access := model.DNSAccess{Provider: "mem", Zone: "example.com", Token: "t"}
	rset := model.DNSRecordSet{FQDN: "app.example.com", Type: model.DNSRecordTypeA, RData: []string{"203.0.113.1"}}

	action, err := port.Upsert(ctx, access, rset)
	require.NoError(t, err)
	assert.Equal(t, model.DNSActionCreated, action)

	action, err = port.Upsert(ctx, access, rset)
	require.NoError(t, err)
	assert.Equal(t, model.DNSActionUnchanged, action)

	rset.RData = []string{"203.0.113.2"}
	action, err = port.Upsert(ctx, access, rset)
	require.NoError(t, err)
	assert.Equal(t, model.DNSActionUpdated, action)

	require.NoError(t, port.Delete(ctx, access, rset))
	assert.Empty(t, mem.records)

	solver, err := port.Solver(access)
	require.NoError(t, err)
	assert.Equal(t, "mem-secret", solver.SecretName)

	_, err = port.Upsert(ctx, model.DNSAccess{Provider: "mem"}, rset)
	assert.True(t, errors.Is(err, model.ErrMissingCredential))
}

func TestDNSPort_UnknownProvider(t *testing.T) {
	port := GetDNSPort()
	_, err := port.Solver(model.DNSAccess{Provider: "nope"})
	assert.ErrorIs(t, err, model.ErrDriverNotFound)
	err = port.Delete(context.Background(), model.DNSAccess{Provider: "nope"}, model.DNSRecordSet{})
	assert.ErrorIs(t, err, model.ErrDriverNotFound)
}
