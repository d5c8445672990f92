package dnsdrv

import (
	"context"
	"fmt"

	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/internal/logging"
)

// dnsPortAdapter implements model.DNSPort backed by DNS drivers.
type dnsPortAdapter struct{}

func lookup(access model.DNSAccess) (entry, error) {
	name := access.Provider
	if name == "" {
		name = model.DefaultDNSProvider
	}
	e, ok := registry[name]
	if !ok {
		return entry{}, fmt.Errorf("%w: dns provider %q", model.ErrDriverNotFound, name)
	}
	return e, nil
}

func driverFor(access model.DNSAccess) (Driver, error) {
	e, err := lookup(access)
	if err != nil {
		return nil, err
	}
	return e.factory(access)
}

func (a *dnsPortAdapter) Upsert(ctx context.Context, access model.DNSAccess, rset model.DNSRecordSet) (action string, err error) {
	logger := logging.FromContext(ctx).With("provider", access.Provider, "fqdn", rset.FQDN, "type", rset.Type)
	msgSym := "DNS:Upsert"
	logger.Info(ctx, msgSym+"/s", "rdata", rset.RData)
	defer func() {
		if err == nil {
			logger.Info(ctx, msgSym+"/eok", "action", action)
		} else {
			logger.Info(ctx, msgSym+"/efail", "err", err)
		}
	}()

	d, err := driverFor(access)
	if err != nil {
		return "", err
	}
	return d.Upsert(ctx, rset)
}

func (a *dnsPortAdapter) Delete(ctx context.Context, access model.DNSAccess, rset model.DNSRecordSet) (err error) {
	logger := logging.FromContext(ctx).With("provider", access.Provider, "fqdn", rset.FQDN, "type", rset.Type)
	msgSym := "DNS:Delete"
	logger.Info(ctx, msgSym+"/s")
	defer func() {
		if err == nil {
			logger.Info(ctx, msgSym+"/eok")
		} else {
			logger.Info(ctx, msgSym+"/efail", "err", err)
		}
	}()

	d, err := driverFor(access)
	if err != nil {
		return err
	}
	return d.Delete(ctx, rset)
}

func (a *dnsPortAdapter) Solver(access model.DNSAccess) (*model.DNSSolver, error) {
	e, err := lookup(access)
	if err != nil {
		return nil, err
	}
	if e.solver == nil {
		return nil, fmt.Errorf("dns provider %q cannot solve ACME challenges", access.Provider)
	}
	return e.solver(access)
}

// GetDNSPort returns a model.DNSPort implemented via DNS drivers.
func GetDNSPort() model.DNSPort {
	return &dnsPortAdapter{}
}
