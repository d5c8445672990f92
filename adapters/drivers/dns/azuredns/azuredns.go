// Package azuredns implements the DNS driver backed by Azure DNS zones.
package azuredns

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/dns/armdns"
	dnsdrv "github.com/kompox/webstack/adapters/drivers/dns"
	"github.com/kompox/webstack/domain/model"
	"github.com/kompox/webstack/internal/logging"
)

const (
	// Default TTL for DNS records when not specified (5 minutes)
	defaultDNSRecordTTL = 300

	settingTenantID      = "AZURE_TENANT_ID"
	settingClientID      = "AZURE_CLIENT_ID"
	settingZoneResources = "AZURE_DNS_ZONE_RESOURCE_IDS"
	settingZoneHint      = "AZURE_DNS_ZONE_HINT"

	// ClientSecretName holds the service principal secret read by the certificate issuer.
	ClientSecretName = "azuredns-config"
	ClientSecretKey  = "client-secret"
)

// zoneInfo represents parsed Azure DNS Zone resource information.
type zoneInfo struct {
	ResourceID     string
	SubscriptionID string
	ResourceGroup  string
	Name           string
}

// recordSetsAPI is the subset of *armdns.RecordSetsClient used by the driver.
type recordSetsAPI interface {
	Get(ctx context.Context, resourceGroupName string, zoneName string, relativeRecordSetName string, recordType armdns.RecordType, options *armdns.RecordSetsClientGetOptions) (armdns.RecordSetsClientGetResponse, error)
	CreateOrUpdate(ctx context.Context, resourceGroupName string, zoneName string, relativeRecordSetName string, recordType armdns.RecordType, parameters armdns.RecordSet, options *armdns.RecordSetsClientCreateOrUpdateOptions) (armdns.RecordSetsClientCreateOrUpdateResponse, error)
	Delete(ctx context.Context, resourceGroupName string, zoneName string, relativeRecordSetName string, recordType armdns.RecordType, options *armdns.RecordSetsClientDeleteOptions) (armdns.RecordSetsClientDeleteResponse, error)
}

type driver struct {
	zones    []*zoneInfo
	zoneHint string
	// clients returns the record sets client for a subscription.
	clients func(subscriptionID string) (recordSetsAPI, error)
}

// ID returns the provider identifier.
func (d *driver) ID() string { return "azuredns" }

// parseZoneID parses an Azure DNS Zone resource ID using Azure SDK's parser.
// Expected format: /subscriptions/{sub}/resourceGroups/{rg}/providers/Microsoft.Network/dnszones/{zone}
func parseZoneID(resourceID string) (*zoneInfo, error) {
	rid, err := arm.ParseResourceID(resourceID)
	if err != nil {
		return nil, fmt.Errorf("parse Azure DNS Zone resource ID: %w", err)
	}
	if !strings.EqualFold(rid.ResourceType.Namespace, "Microsoft.Network") ||
		!strings.EqualFold(rid.ResourceType.Type, "dnszones") {
		return nil, fmt.Errorf("invalid resource type for DNS Zone: expected Microsoft.Network/dnszones, got %s/%s",
			rid.ResourceType.Namespace, rid.ResourceType.Type)
	}
	return &zoneInfo{
		ResourceID:     resourceID,
		SubscriptionID: rid.SubscriptionID,
		ResourceGroup:  rid.ResourceGroupName,
		Name:           rid.Name,
	}, nil
}

// parseZoneIDs parses a comma or whitespace separated list of zone resource IDs.
func parseZoneIDs(raw string) ([]*zoneInfo, error) {
	var zones []*zoneInfo
	for _, id := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	}) {
		info, err := parseZoneID(id)
		if err != nil {
			return nil, err
		}
		zones = append(zones, info)
	}
	return zones, nil
}

// selectZone selects the best matching DNS zone for the given FQDN.
// Priority: 1) zone hint (match by ID or name), 2) longest-match heuristic.
func (d *driver) selectZone(ctx context.Context, fqdn string) (*zoneInfo, error) {
	log := logging.FromContext(ctx)
	if len(d.zones) == 0 {
		return nil, model.MissingConfig(settingZoneResources)
	}
	fqdn = strings.TrimSuffix(fqdn, ".")

	if d.zoneHint != "" {
		for _, z := range d.zones {
			if z.ResourceID == d.zoneHint || z.Name == d.zoneHint {
				return z, nil
			}
		}
		log.Warn(ctx, "DNS zone hint did not match any configured zone", "hint", d.zoneHint)
	}

	var best *zoneInfo
	for _, z := range d.zones {
		name := strings.TrimSuffix(z.Name, ".")
		if fqdn == name || strings.HasSuffix(fqdn, "."+name) {
			if best == nil || len(name) > len(strings.TrimSuffix(best.Name, ".")) {
				best = z
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no matching DNS zone found for FQDN %s", fqdn)
	}
	log.Debug(ctx, "DNS zone selected", "fqdn", fqdn, "zone", best.Name)
	return best, nil
}

// normalizeRecordSet validates and normalizes the input record set.
func normalizeRecordSet(rset *model.DNSRecordSet) error {
	if rset.FQDN == "" {
		return fmt.Errorf("FQDN is required")
	}
	rset.FQDN = strings.TrimSuffix(rset.FQDN, ".")
	switch rset.Type {
	case model.DNSRecordTypeA, model.DNSRecordTypeAAAA, model.DNSRecordTypeCNAME:
	default:
		return fmt.Errorf("unsupported DNS record type: %s", rset.Type)
	}
	if rset.Type == model.DNSRecordTypeCNAME && len(rset.RData) > 1 {
		return fmt.Errorf("CNAME record must have exactly one RData entry, got %d", len(rset.RData))
	}
	if rset.TTL == 0 {
		rset.TTL = defaultDNSRecordTTL
	}
	return nil
}

// recordSetName converts FQDN to the zone-relative record set name.
// APEX records are represented as "@".
func recordSetName(fqdn string, zoneName string) string {
	fqdn = strings.TrimSuffix(fqdn, ".")
	zoneName = strings.TrimSuffix(zoneName, ".")
	if fqdn == zoneName {
		return "@"
	}
	if strings.HasSuffix(fqdn, "."+zoneName) {
		return strings.TrimSuffix(fqdn, "."+zoneName)
	}
	return fqdn
}

// recordSetProperties renders rset as Azure record set properties.
func recordSetProperties(rset model.DNSRecordSet) (*armdns.RecordSetProperties, error) {
	props := &armdns.RecordSetProperties{TTL: to.Ptr(int64(rset.TTL))}
	switch rset.Type {
	case model.DNSRecordTypeA:
		for _, ip := range rset.RData {
			props.ARecords = append(props.ARecords, &armdns.ARecord{IPv4Address: to.Ptr(ip)})
		}
	case model.DNSRecordTypeAAAA:
		for _, ip := range rset.RData {
			props.AaaaRecords = append(props.AaaaRecords, &armdns.AaaaRecord{IPv6Address: to.Ptr(ip)})
		}
	case model.DNSRecordTypeCNAME:
		if len(rset.RData) > 0 {
			props.CnameRecord = &armdns.CnameRecord{Cname: to.Ptr(rset.RData[0])}
		}
	default:
		return nil, fmt.Errorf("unsupported record type: %s", rset.Type)
	}
	return props, nil
}

// sameRecords reports whether existing holds exactly the values of want.
func sameRecords(existing, want *armdns.RecordSetProperties) bool {
	if existing == nil || existing.TTL == nil || *existing.TTL != *want.TTL {
		return false
	}
	values := func(p *armdns.RecordSetProperties) []string {
		var v []string
		for _, r := range p.ARecords {
			if r != nil && r.IPv4Address != nil {
				v = append(v, *r.IPv4Address)
			}
		}
		for _, r := range p.AaaaRecords {
			if r != nil && r.IPv6Address != nil {
				v = append(v, *r.IPv6Address)
			}
		}
		if p.CnameRecord != nil && p.CnameRecord.Cname != nil {
			v = append(v, strings.TrimSuffix(*p.CnameRecord.Cname, "."))
		}
		return v
	}
	a, b := values(existing), values(want)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isNotFound(err error) bool {
	var re *azcore.ResponseError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}

// Upsert creates or updates the record set.
func (d *driver) Upsert(ctx context.Context, rset model.DNSRecordSet) (string, error) {
	if err := normalizeRecordSet(&rset); err != nil {
		return "", err
	}
	zone, err := d.selectZone(ctx, rset.FQDN)
	if err != nil {
		return "", err
	}
	client, err := d.clients(zone.SubscriptionID)
	if err != nil {
		return "", fmt.Errorf("create DNS record sets client: %w", err)
	}
	props, err := recordSetProperties(rset)
	if err != nil {
		return "", err
	}
	relName := recordSetName(rset.FQDN, zone.Name)
	recordType := armdns.RecordType(rset.Type)

	action := model.DNSActionCreated
	existing, err := client.Get(ctx, zone.ResourceGroup, zone.Name, relName, recordType, nil)
	switch {
	case err == nil:
		if sameRecords(existing.Properties, props) {
			return model.DNSActionUnchanged, nil
		}
		action = model.DNSActionUpdated
	case !isNotFound(err):
		return "", fmt.Errorf("get DNS record: %w", err)
	}

	logging.FromContext(ctx).Info(ctx, "upserting Azure DNS record",
		"zone_resource_id", zone.ResourceID,
		"record_name", relName,
		"type", rset.Type,
		"ttl", rset.TTL,
		"rdata", rset.RData,
	)
	if _, err := client.CreateOrUpdate(ctx, zone.ResourceGroup, zone.Name, relName, recordType, armdns.RecordSet{Properties: props}, nil); err != nil {
		return "", fmt.Errorf("create/update DNS record: %w", err)
	}
	return action, nil
}

// Delete deletes the record set. Azure treats deleting an absent record set as success.
func (d *driver) Delete(ctx context.Context, rset model.DNSRecordSet) error {
	if err := normalizeRecordSet(&rset); err != nil {
		return err
	}
	zone, err := d.selectZone(ctx, rset.FQDN)
	if err != nil {
		return err
	}
	client, err := d.clients(zone.SubscriptionID)
	if err != nil {
		return fmt.Errorf("create DNS record sets client: %w", err)
	}
	relName := recordSetName(rset.FQDN, zone.Name)
	logging.FromContext(ctx).Info(ctx, "deleting Azure DNS record",
		"zone_resource_id", zone.ResourceID,
		"record_name", relName,
		"type", rset.Type,
	)
	if _, err := client.Delete(ctx, zone.ResourceGroup, zone.Name, relName, armdns.RecordType(rset.Type), nil); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete DNS record: %w", err)
	}
	return nil
}

// solver returns the cert-manager azureDNS block. The service principal
// secret is read from ClientSecretName.
func solver(access model.DNSAccess) (*model.DNSSolver, error) {
	zones, err := parseZoneIDs(access.Settings[settingZoneResources])
	if err != nil {
		return nil, err
	}
	if len(zones) == 0 {
		return nil, model.MissingConfig(settingZoneResources)
	}
	zone := zones[0]
	if hint := access.Settings[settingZoneHint]; hint != "" {
		for _, z := range zones {
			if z.Name == hint || z.ResourceID == hint {
				zone = z
			}
		}
	}
	clientID := access.Settings[settingClientID]
	tenantID := access.Settings[settingTenantID]
	if clientID == "" || tenantID == "" {
		return nil, model.MissingConfig(settingClientID + "/" + settingTenantID)
	}
	return &model.DNSSolver{
		SecretName: ClientSecretName,
		SecretKey:  ClientSecretKey,
		Config: map[string]any{
			"azureDNS": map[string]any{
				"clientID": clientID,
				"clientSecretSecretRef": map[string]any{
					"name": ClientSecretName,
					"key":  ClientSecretKey,
				},
				"subscriptionID":    zone.SubscriptionID,
				"tenantID":          tenantID,
				"resourceGroupName": zone.ResourceGroup,
				"hostedZoneName":    zone.Name,
				"environment":       "AzurePublicCloud",
			},
		},
	}, nil
}

func init() {
	dnsdrv.Register("azuredns", func(access model.DNSAccess) (dnsdrv.Driver, error) {
		if access.Token.IsZero() {
			return nil, model.MissingCredential("dns api token")
		}
		zones, err := parseZoneIDs(access.Settings[settingZoneResources])
		if err != nil {
			return nil, err
		}
		tenantID := access.Settings[settingTenantID]
		clientID := access.Settings[settingClientID]
		if tenantID == "" || clientID == "" {
			return nil, model.MissingConfig(settingClientID + "/" + settingTenantID)
		}
		cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, access.Token.Reveal(), nil)
		if err != nil {
			return nil, fmt.Errorf("create Azure credential: %w", err)
		}
		return &driver{
			zones:    zones,
			zoneHint: access.Settings[settingZoneHint],
			clients: func(subscriptionID string) (recordSetsAPI, error) {
				return armdns.NewRecordSetsClient(subscriptionID, cred, nil)
			},
		}, nil
	}, solver)
}
