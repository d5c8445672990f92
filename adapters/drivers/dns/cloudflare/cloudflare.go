// Package cloudflare implements the DNS driver backed by the Cloudflare API.
package cloudflare

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	cf "github.com/cloudflare/cloudflare-go"
	dnsdrv "github.com/kompox/webstack/adapters/drivers/dns"
	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/internal/logging"
)

// Settings keys.
const (
	settingZoneID   = "CLOUDFLARE_ZONE_ID"
	settingZoneName = "CLOUDFLARE_ZONE_NAME"
	settingProxied  = "CLOUDFLARE_PROXIED"
)

// Certificate issuer credential.
const (
	TokenSecretName = "cloudflare-api-token-secret"
	TokenSecretKey  = "api-token"
)

const (
	defaultTTL = 300
	// autoTTL is the only TTL accepted for proxied records.
	autoTTL = 1
)

// recordsAPI is the subset of *cf.API used by the driver.
type recordsAPI interface {
	ZoneIDByName(zoneName string) (string, error)
	ListDNSRecords(ctx context.Context, rc *cf.ResourceContainer, params cf.ListDNSRecordsParams) ([]cf.DNSRecord, *cf.ResultInfo, error)
	CreateDNSRecord(ctx context.Context, rc *cf.ResourceContainer, params cf.CreateDNSRecordParams) (cf.DNSRecord, error)
	UpdateDNSRecord(ctx context.Context, rc *cf.ResourceContainer, params cf.UpdateDNSRecordParams) (cf.DNSRecord, error)
	DeleteDNSRecord(ctx context.Context, rc *cf.ResourceContainer, recordID string) error
}

type driver struct {
	api      recordsAPI
	zoneID   string
	zoneName string
	proxied  bool
}

// ID returns the provider identifier.
func (d *driver) ID() string { return "cloudflare" }

func newDriver(api recordsAPI, access model.DNSAccess) (*driver, error) {
	proxied := true
	if v := strings.TrimSpace(access.Settings[settingProxied]); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, model.InvalidConfig(settingProxied, err.Error())
		}
		proxied = b
	}
	zoneName := strings.TrimSpace(access.Settings[settingZoneName])
	if zoneName == "" {
		zoneName = access.Zone
	}
	return &driver{
		api:      api,
		zoneID:   strings.TrimSpace(access.Settings[settingZoneID]),
		zoneName: strings.TrimSuffix(zoneName, "."),
		proxied:  proxied,
	}, nil
}

// zone resolves the zone identifier, looking it up by name once.
func (d *driver) zone() (*cf.ResourceContainer, error) {
	if d.zoneID == "" {
		if d.zoneName == "" {
			return nil, model.MissingConfig("dns zone")
		}
		id, err := d.api.ZoneIDByName(d.zoneName)
		if err != nil {
			return nil, fmt.Errorf("lookup zone %s: %w", d.zoneName, err)
		}
		d.zoneID = id
	}
	return cf.ZoneIdentifier(d.zoneID), nil
}

// list returns records named fqdn; all types when t is empty.
func (d *driver) list(ctx context.Context, rc *cf.ResourceContainer, fqdn string, t model.DNSRecordType) ([]cf.DNSRecord, error) {
	params := cf.ListDNSRecordsParams{Name: fqdn, Type: string(t), ResultInfo: cf.ResultInfo{PerPage: 100}}
	recs, _, err := d.api.ListDNSRecords(ctx, rc, params)
	if err != nil {
		return nil, fmt.Errorf("list records %s: %w", fqdn, err)
	}
	return recs, nil
}

func (d *driver) ttl(rset model.DNSRecordSet) int {
	if d.proxied {
		return autoTTL
	}
	if rset.TTL == 0 {
		return defaultTTL
	}
	return int(rset.TTL)
}

// Upsert converges the single record named rset.FQDN. Records of a conflicting
// type (A/AAAA versus CNAME) are removed first.
func (d *driver) Upsert(ctx context.Context, rset model.DNSRecordSet) (string, error) {
	if len(rset.RData) != 1 {
		return "", fmt.Errorf("cloudflare record %s needs exactly one value, got %d", rset.FQDN, len(rset.RData))
	}
	fqdn := strings.TrimSuffix(rset.FQDN, ".")
	content := strings.TrimSuffix(rset.RData[0], ".")
	rc, err := d.zone()
	if err != nil {
		return "", err
	}
	existing, err := d.list(ctx, rc, fqdn, "")
	if err != nil {
		return "", err
	}

	log := logging.FromContext(ctx)
	var match *cf.DNSRecord
	for i := range existing {
		r := existing[i]
		switch {
		case r.Type == string(rset.Type) && match == nil:
			match = &existing[i]
		case r.Type == string(rset.Type) || conflicts(model.DNSRecordType(r.Type), rset.Type):
			log.Info(ctx, "removing conflicting cloudflare record", "fqdn", fqdn, "type", r.Type, "content", r.Content)
			if err := d.api.DeleteDNSRecord(ctx, rc, r.ID); err != nil {
				return "", fmt.Errorf("delete conflicting record %s: %w", r.ID, err)
			}
		}
	}

	ttl := d.ttl(rset)
	if match == nil {
		_, err := d.api.CreateDNSRecord(ctx, rc, cf.CreateDNSRecordParams{
			Type:    string(rset.Type),
			Name:    fqdn,
			Content: content,
			TTL:     ttl,
			Proxied: &d.proxied,
		})
		if err != nil {
			return "", fmt.Errorf("create record %s: %w", fqdn, err)
		}
		return model.DNSActionCreated, nil
	}

	if match.Content == content && match.Proxied != nil && *match.Proxied == d.proxied && match.TTL == ttl {
		return model.DNSActionUnchanged, nil
	}
	_, err = d.api.UpdateDNSRecord(ctx, rc, cf.UpdateDNSRecordParams{
		ID:      match.ID,
		Type:    string(rset.Type),
		Name:    fqdn,
		Content: content,
		TTL:     ttl,
		Proxied: &d.proxied,
	})
	if err != nil {
		return "", fmt.Errorf("update record %s: %w", fqdn, err)
	}
	return model.DNSActionUpdated, nil
}

// conflicts reports whether records of types a and b cannot share a name.
func conflicts(a, b model.DNSRecordType) bool {
	return (a == model.DNSRecordTypeCNAME) != (b == model.DNSRecordTypeCNAME) &&
		(a == model.DNSRecordTypeA || a == model.DNSRecordTypeAAAA || a == model.DNSRecordTypeCNAME)
}

// Delete removes every record of rset.Type named rset.FQDN.
func (d *driver) Delete(ctx context.Context, rset model.DNSRecordSet) error {
	rc, err := d.zone()
	if err != nil {
		return err
	}
	fqdn := strings.TrimSuffix(rset.FQDN, ".")
	recs, err := d.list(ctx, rc, fqdn, rset.Type)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if err := d.api.DeleteDNSRecord(ctx, rc, r.ID); err != nil {
			return fmt.Errorf("delete record %s: %w", r.ID, err)
		}
	}
	return nil
}

// solver returns the cert-manager DNS-01 block reading the API token secret.
func solver(model.DNSAccess) (*model.DNSSolver, error) {
	return &model.DNSSolver{
		SecretName: TokenSecretName,
		SecretKey:  TokenSecretKey,
		Config: map[string]any{
			"cloudflare": map[string]any{
				"apiTokenSecretRef": map[string]any{
					"name": TokenSecretName,
					"key":  TokenSecretKey,
				},
			},
		},
	}, nil
}

func init() {
	dnsdrv.Register("cloudflare", func(access model.DNSAccess) (dnsdrv.Driver, error) {
		if access.Token.IsZero() {
			return nil, model.MissingCredential("dns api token")
		}
		api, err := cf.NewWithAPIToken(access.Token.Reveal())
		if err != nil {
			return nil, fmt.Errorf("create cloudflare client: %w", err)
		}
		return newDriver(api, access)
	}, solver)
}
