// Package dnsdrv dispatches DNS record changes and certificate solver
// configuration to provider drivers registered under adapters/drivers/dns/<name>.
package dnsdrv

import (
	"context"
	"sort"

	"github.com/kompox/webstack/domain/model"
)

// Driver manages records in the hosted zone of one DNS provider.
type Driver interface {
	// ID returns the provider identifier (e.g., "cloudflare").
	ID() string
	// Upsert creates or updates rset and returns one of the model.DNSAction* values.
	Upsert(ctx context.Context, rset model.DNSRecordSet) (string, error)
	// Delete removes rset. Deleting an absent record is not an error.
	Delete(ctx context.Context, rset model.DNSRecordSet) error
}

type driverFactory func(access model.DNSAccess) (Driver, error)

type solverFunc func(access model.DNSAccess) (*model.DNSSolver, error)

type entry struct {
	factory driverFactory
	solver  solverFunc
}

var registry = map[string]entry{}

// Register makes a driver available by name. Drivers call this from init().
func Register(name string, factory driverFactory, solver solverFunc) {
	registry[name] = entry{factory: factory, solver: solver}
}

// GetDriverFactory returns the factory registered under name.
func GetDriverFactory(name string) (driverFactory, bool) {
	e, ok := registry[name]
	return e.factory, ok
}

// Names returns the registered driver names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
