package model

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// DNSRecordType represents provider-agnostic DNS record types.
type DNSRecordType string

const (
	DNSRecordTypeA     DNSRecordType = "A"
	DNSRecordTypeAAAA  DNSRecordType = "AAAA"
	DNSRecordTypeCNAME DNSRecordType = "CNAME"
)

// Actions reported by DNSPort.Upsert.
const (
	DNSActionCreated   = "created"
	DNSActionUpdated   = "updated"
	DNSActionUnchanged = "unchanged"
)

// DNSRecordSet describes a single DNS record set identified by FQDN and type.
type DNSRecordSet struct {
	FQDN  string        `json:"fqdn"` // Absolute FQDN. Trailing dot is optional.
	Type  DNSRecordType `json:"type"`
	TTL   uint32        `json:"ttl,omitempty"` // TTL in seconds. Use provider default when zero.
	RData []string      `json:"rdata"`
}

// EdgeAddress is the externally reachable address of the edge load balancer.
// Either IP or Hostname is set once the cloud has assigned it.
type EdgeAddress struct {
	IP       string `json:"ip,omitempty"`
	Hostname string `json:"hostname,omitempty"`
}

// Empty reports whether no address has been assigned yet.
func (a EdgeAddress) Empty() bool { return a.IP == "" && a.Hostname == "" }

func (a EdgeAddress) String() string {
	if a.Hostname != "" {
		return a.Hostname
	}
	return a.IP
}

// ParseEdgeAddress is the inverse of EdgeAddress.String.
func ParseEdgeAddress(s string) EdgeAddress {
	s = strings.TrimSpace(s)
	if s == "" {
		return EdgeAddress{}
	}
	if net.ParseIP(s) != nil {
		return EdgeAddress{IP: s}
	}
	return EdgeAddress{Hostname: s}
}

// RecordFor builds the record binding fqdn to addr: CNAME for a hostname,
// A or AAAA for an IP.
func RecordFor(fqdn string, addr EdgeAddress) (DNSRecordSet, error) {
	fqdn = strings.TrimSuffix(fqdn, ".")
	if fqdn == "" {
		return DNSRecordSet{}, fmt.Errorf("FQDN is required")
	}
	switch {
	case addr.Hostname != "":
		return DNSRecordSet{FQDN: fqdn, Type: DNSRecordTypeCNAME, RData: []string{addr.Hostname}}, nil
	case addr.IP != "":
		ip := net.ParseIP(addr.IP)
		if ip == nil {
			return DNSRecordSet{}, fmt.Errorf("invalid edge IP %q", addr.IP)
		}
		t := DNSRecordTypeA
		if ip.To4() == nil {
			t = DNSRecordTypeAAAA
		}
		return DNSRecordSet{FQDN: fqdn, Type: t, RData: []string{addr.IP}}, nil
	default:
		return DNSRecordSet{}, fmt.Errorf("edge address for %s is not assigned", fqdn)
	}
}

// EdgeRecordTypes lists every record type RecordFor can produce. Unbinding
// without a known edge address deletes all of them.
func EdgeRecordTypes() []DNSRecordType {
	return []DNSRecordType{DNSRecordTypeCNAME, DNSRecordTypeA, DNSRecordTypeAAAA}
}

// DNSAccess describes how to reach the DNS provider that owns the zone.
type DNSAccess struct {
	Provider string
	// Zone is the configured domain; drivers use it to locate the hosted zone.
	Zone     string
	Settings map[string]string
	Token    Secret
}

// DNSSolver describes how the certificate issuer answers DNS-01 challenges
// through the provider.
type DNSSolver struct {
	// SecretName and SecretKey locate the provider credential the issuer reads.
	SecretName string
	SecretKey  string
	// Config is the provider block placed under the solver's dns01 key.
	Config map[string]any
}

// DNSPort is the domain port for authoritative DNS record changes.
type DNSPort interface {
	// Upsert creates or updates rset and returns the action taken ("created", "updated", "unchanged").
	Upsert(ctx context.Context, access DNSAccess, rset DNSRecordSet) (string, error)
	// Delete removes rset. Deleting an absent record is not an error.
	Delete(ctx context.Context, access DNSAccess, rset DNSRecordSet) error
	// Solver returns the DNS-01 solver for the provider. It performs no I/O.
	Solver(access DNSAccess) (*DNSSolver, error)
}
