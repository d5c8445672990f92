package model

// PullPolicy mirrors the container image pull policy values.
type PullPolicy string

const (
	PullNever  PullPolicy = "Never"
	PullAlways PullPolicy = "Always"
)

// TLSMode selects how TLS is provided at the edge.
type TLSMode string

const (
	// TLSModeNone serves plain HTTP at the edge.
	TLSModeNone TLSMode = "none"
	// TLSModeDelegated delegates certificate issuance to the in-cluster issuer.
	TLSModeDelegated TLSMode = "delegated"
)

// PlatformPolicy collects every platform-dependent switch. It is computed once per
// run so composers never branch on the platform themselves.
type PlatformPolicy struct {
	PullPolicy               PullPolicy `json:"pullPolicy"`
	TLSMode                  TLSMode    `json:"tlsMode"`
	DisableAdmissionWebhooks bool       `json:"disableAdmissionWebhooks"`
	ImagePullSecret          bool       `json:"imagePullSecret"`
	IssueCertificates        bool       `json:"issueCertificates"`
	BindDNS                  bool       `json:"bindDNS"`
}

// PolicyFor returns the policy for platform p.
func PolicyFor(p Platform) PlatformPolicy {
	if p == PlatformLocal {
		return PlatformPolicy{
			PullPolicy:               PullNever,
			TLSMode:                  TLSModeNone,
			DisableAdmissionWebhooks: true,
		}
	}
	return PlatformPolicy{
		PullPolicy:        PullAlways,
		TLSMode:           TLSModeDelegated,
		ImagePullSecret:   true,
		IssueCertificates: true,
		BindDNS:           true,
	}
}
