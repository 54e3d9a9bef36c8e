package vco

import (
	"github.com/velotools/velocheck/internal/probe"
	"github.com/velotools/velocheck/internal/schema"
)

// Orchestrator state machines, as the portal spells them. A state outside
// these sets is a contract change worth flagging.
var (
	endpointPkiModes = []string{
		"CERTIFICATE_DISABLED", "CERTIFICATE_REQUIRED", "CERTIFICATE_OPTIONAL",
	}

	bastionStates = []string{
		"UNCONFIGURED", "STAGE_REQUESTED", "UNSTAGE_REQUESTED", "STAGED",
		"UNSTAGED", "PROMOTION_REQUESTED", "PROMOTION_PENDING", "PROMOTED",
	}

	activationStates = []string{
		"UNASSIGNED", "PENDING", "ACTIVATED", "REACTIVATION_PENDING",
	}

	edgeStates = []string{
		"NEVER_ACTIVATED", "DEGRADED", "OFFLINE", "DISABLED", "EXPIRED", "CONNECTED",
	}

	serviceStates = []string{
		"IN_SERVICE", "OUT_OF_SERVICE", "PENDING_SERVICE",
	}

	haStates = []string{
		"UNCONFIGURED", "PENDING_INIT", "PENDING_CONFIRMATION",
		"PENDING_CONFIRMED", "PENDING_DISSOCATION", "READY", "FAILED",
	}
)

// BuiltinParams carries the identifiers the builtin endpoints are probed
// with. EdgeID is optional: without one the edge configuration stack probe is
// left out of the set, since the portal cannot answer it.
type BuiltinParams struct {
	EnterpriseID string
	EdgeID       string
}

// Builtins returns the endpoint set velocheck validates out of the box,
// in a fixed order so reports are comparable across runs.
func Builtins(params BuiltinParams) []probe.Endpoint {
	enterprise := map[string]string{"enterpriseId": params.EnterpriseID}

	endpoints := []probe.Endpoint{
		{
			Name:        "enterprise",
			Method:      MethodGetEnterprise,
			Params:      enterprise,
			Expect:      enterpriseSchema(),
			Description: "Enterprise record for the configured enterprise",
		},
		{
			Name:        "enterprise_edges",
			Method:      MethodGetEnterpriseEdges,
			Params:      enterprise,
			Expect:      edgeSchema(),
			List:        true,
			Description: "Every edge provisioned under the enterprise",
		},
		{
			Name:        "configuration_policies",
			Method:      MethodGetEnterprisePolicies,
			Params:      enterprise,
			Expect:      configurationPolicySchema(),
			List:        true,
			Description: "Configuration profiles with their policy summary",
		},
	}

	if params.EdgeID != "" {
		endpoints = append(endpoints, probe.Endpoint{
			Name:   "edge_configuration_stack",
			Method: MethodGetEdgeConfigStack,
			Params: map[string]string{
				"enterpriseId": params.EnterpriseID,
				"edgeId":       params.EdgeID,
			},
			Expect:      configurationProfileSchema(),
			List:        true,
			Description: "Configuration profiles applied to the configured edge, modules included",
		})
	}

	return append(endpoints,
		probe.Endpoint{
			Name:   "enterprise_edge_list",
			Method: MethodGetEnterpriseEdgeList,
			Params: map[string]string{
				"enterpriseId": params.EnterpriseID,
				"limit":        "500",
				"_filterSpec":  "true",
			},
			Expect:      edgeListEnvelopeSchema(),
			Description: "Paginated edge listing envelope",
		},
		probe.Endpoint{
			Name:        "ws_hello",
			Method:      MethodWSHello,
			Expect:      wsHelloSchema(),
			Description: "Websocket entrypoint greeting",
		},
	)
}

// RegisterBuiltins registers the builtin endpoint set on a registry.
func RegisterBuiltins(r *probe.Registry, params BuiltinParams) error {
	for _, ep := range Builtins(params) {
		if err := r.Register(ep); err != nil {
			return err
		}
	}

	return nil
}

func enterpriseSchema() *schema.Schema {
	return schema.New("Enterprise", []schema.Field{
		{Name: "id", Spec: schema.Require(schema.TypeNumber)},
		{Name: "created", Spec: schema.Require(schema.TypeDatetime)},
		{Name: "networkId", Spec: schema.AllowNull(schema.TypeNumber)},
		{Name: "gatewayPoolId", Spec: schema.AllowNull(schema.TypeNumber)},
		{Name: "alertsEnabled", Spec: schema.Require(schema.TypeNumber)},
		{Name: "operatorAlertsEnabled", Spec: schema.Require(schema.TypeNumber)},
		{Name: "endpointPkiMode", Spec: schema.OneOf(endpointPkiModes...)},
		{Name: "name", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "domain", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "prefix", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "logicalId", Spec: schema.Require(schema.TypeUUID)},
		{Name: "accountNumber", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "description", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "contactName", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "contactPhone", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "contactMobile", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "contactEmail", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "streetAddress", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "city", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "state", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "postalCode", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "country", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "lat", Spec: schema.Require(schema.TypeNumber)},
		{Name: "lon", Spec: schema.Require(schema.TypeNumber)},
		{Name: "timezone", Spec: schema.Require(schema.TypeString)},
		{Name: "bastionState", Spec: schema.OneOf(bastionStates...)},
		{Name: "modified", Spec: schema.AllowNull(schema.TypeDatetime)},
	})
}

func edgeSchema() *schema.Schema {
	return schema.New("Edge", []schema.Field{
		{Name: "id", Spec: schema.Require(schema.TypeNumber)},
		{Name: "created", Spec: schema.Require(schema.TypeDatetime)},
		{Name: "enterpriseId", Spec: schema.Require(schema.TypeNumber)},
		{Name: "enterpriseLogicalId", Spec: schema.Require(schema.TypeUUID)},
		{Name: "siteId", Spec: schema.AllowNull(schema.TypeNumber)},
		{Name: "activationKey", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "activationKeyExpires", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "activationState", Spec: schema.OneOf(activationStates...).OrNull()},
		{Name: "activationTime", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "softwareVersion", Spec: schema.Require(schema.TypeString)},
		{Name: "buildNumber", Spec: schema.Require(schema.TypeString)},
		{Name: "factorySoftwareVersion", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "factoryBuildNumber", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "platformFirmwareVersion", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "platformFirmwareBuildNumber", Spec: schema.OptionalNull(schema.TypeString)},
		{Name: "modemFirmwareVersion", Spec: schema.Require(schema.TypeString)},
		{Name: "modemBuildNumber", Spec: schema.Require(schema.TypeString)},
		{Name: "softwareUpdated", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "selfMacAddress", Spec: schema.Require(schema.TypeString)},
		{Name: "deviceId", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "logicalId", Spec: schema.Require(schema.TypeUUID).OrNull()},
		{Name: "serialNumber", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "modelNumber", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "deviceFamily", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "lteRegion", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "name", Spec: schema.Require(schema.TypeString)},
		{Name: "description", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "alertsEnabled", Spec: schema.Require(schema.TypeNumber)},
		{Name: "operatorAlertsEnabled", Spec: schema.Require(schema.TypeNumber)},
		{Name: "edgeState", Spec: schema.OneOf(edgeStates...).OrNull()},
		{Name: "edgeStateTime", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "isLive", Spec: schema.Require(schema.TypeNumber)},
		{Name: "systemUpSince", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "serviceUpSince", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "lastContact", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "serviceState", Spec: schema.OneOf(serviceStates...)},
		{Name: "endpointPkiMode", Spec: schema.OneOf(endpointPkiModes...)},
		{Name: "haState", Spec: schema.OneOf(haStates...)},
		{Name: "haPreviousState", Spec: schema.OneOf(haStates...)},
		{Name: "haLastContact", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "haSerialNumber", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "bastionState", Spec: schema.OneOf(bastionStates...)},
		{Name: "modified", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "customInfo", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "haMode", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "standbySystemUpSince", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "standbyServiceUpSince", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "standbySoftwareVersion", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "standbyFactorySoftwareVersion", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "standbyFactoryBuildNumber", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "standbyBuildNumber", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "standbyModelNumber", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "standbyDeviceId", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "haWifiCapabilityMismatch", Spec: schema.AllowNull(schema.TypeNumber)},
	})
}

func configurationPolicySchema() *schema.Schema {
	policies := schema.New("ProfilePolicies", []schema.Field{
		{Name: "deviceSettingsEnabled", Spec: schema.Require(schema.TypeBool)},
		{Name: "bizPolicyEnabled", Spec: schema.Require(schema.TypeBool)},
		{Name: "firewall", Spec: schema.OneOf("enabled", "disabled")},
	})

	return schema.New("ConfigurationPolicy", []schema.Field{
		{Name: "id", Spec: schema.Require(schema.TypeNumber)},
		{Name: "created", Spec: schema.Require(schema.TypeDatetime)},
		{Name: "name", Spec: schema.Require(schema.TypeString)},
		{Name: "logicalId", Spec: schema.Require(schema.TypeUUID)},
		{Name: "enterpriseLogicalId", Spec: schema.Require(schema.TypeUUID)},
		// Version is a millisecond timestamp the portal serializes as a string.
		{Name: "version", Spec: schema.Require(schema.TypeString)},
		{Name: "description", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "configurationType", Spec: schema.Require(schema.TypeString)},
		{Name: "bastionState", Spec: schema.OneOf(bastionStates...)},
		{Name: "schemaVersion", Spec: schema.Require(schema.TypeString)},
		{Name: "effective", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "modified", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "isStaging", Spec: schema.Require(schema.TypeNumber)},
		{Name: "edgeCount", Spec: schema.Require(schema.TypeNumber)},
		{Name: "policies", Spec: schema.ObjectOf(policies)},
		{Name: "hasQuiescedGatewayUsage", Spec: schema.OptionalNull(schema.TypeBool)},
	})
}

// configurationProfileSchema covers both entries of the configuration stack:
// the edge-specific profile and the enterprise profile it overlays.
func configurationProfileSchema() *schema.Schema {
	module := schema.New("ConfigurationModule", []schema.Field{
		{Name: "id", Spec: schema.Require(schema.TypeNumber)},
		{Name: "created", Spec: schema.Require(schema.TypeDatetime)},
		{Name: "name", Spec: schema.Require(schema.TypeString)},
		{Name: "type", Spec: schema.Require(schema.TypeString)},
		{Name: "description", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "schemaVersion", Spec: schema.Require(schema.TypeString)},
		{Name: "version", Spec: schema.Require(schema.TypeString)},
		{Name: "configurationId", Spec: schema.Require(schema.TypeNumber)},
		{Name: "enterpriseLogicalId", Spec: schema.Require(schema.TypeUUID).OrNull()},
		{Name: "effective", Spec: schema.Require(schema.TypeString)},
		{Name: "modified", Spec: schema.AllowNull(schema.TypeDatetime)},
		// Module bodies are free-form per module type; their inner shape is
		// deliberately not part of the contract.
		{Name: "data", Spec: schema.Require(schema.TypeAny)},
		{Name: "refs", Spec: schema.Optional(schema.TypeAny)},
	})

	return schema.New("ConfigurationProfile", []schema.Field{
		{Name: "id", Spec: schema.Require(schema.TypeNumber)},
		{Name: "created", Spec: schema.Require(schema.TypeDatetime)},
		{Name: "name", Spec: schema.Require(schema.TypeString)},
		{Name: "logicalId", Spec: schema.Require(schema.TypeUUID)},
		{Name: "enterpriseLogicalId", Spec: schema.Require(schema.TypeUUID)},
		{Name: "version", Spec: schema.Require(schema.TypeString)},
		{Name: "description", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "configurationType", Spec: schema.Require(schema.TypeString)},
		{Name: "bastionState", Spec: schema.Require(schema.TypeString)},
		{Name: "schemaVersion", Spec: schema.Require(schema.TypeString)},
		{Name: "effective", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "modified", Spec: schema.AllowNull(schema.TypeDatetime)},
		{Name: "modules", Spec: schema.ListOf(schema.ObjectOf(module))},
	})
}

// edgeListEnvelopeSchema describes the paginated listing wrapper. The probe
// checks one page; walking nextPageLink is a client concern, not a contract
// one.
func edgeListEnvelopeSchema() *schema.Schema {
	meta := schema.New("EdgeListMeta", []schema.Field{
		{Name: "limit", Spec: schema.Optional(schema.TypeNumber)},
		{Name: "more", Spec: schema.Optional(schema.TypeBool)},
		{Name: "nextPageLink", Spec: schema.OptionalNull(schema.TypeString)},
	})

	item := schema.New("EdgeListItem", []schema.Field{
		{Name: "id", Spec: schema.AllowNull(schema.TypeNumber)},
		{Name: "logicalId", Spec: schema.Require(schema.TypeUUID).OrNull()},
		{Name: "name", Spec: schema.AllowNull(schema.TypeString)},
		{Name: "edgeState", Spec: schema.OneOf(edgeStates...).OrNull()},
	})

	return schema.New("EdgeListEnvelope", []schema.Field{
		{Name: "metaData", Spec: schema.ObjectOf(meta)},
		{Name: "data", Spec: schema.ListOf(schema.ObjectOf(item))},
	})
}

// wsHelloSchema describes the greeting the orchestrator pushes on a fresh
// websocket connection. The token is what later subscription messages echo
// back, so its absence breaks every websocket consumer.
func wsHelloSchema() *schema.Schema {
	return schema.New("WSHello", []schema.Field{
		{Name: "action", Spec: schema.OneOf("noop").OrAbsent()},
		{Name: "token", Spec: schema.Require(schema.TypeString)},
	})
}
