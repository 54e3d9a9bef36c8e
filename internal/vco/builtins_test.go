package vco

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velotools/velocheck/internal/probe"
	"github.com/velotools/velocheck/internal/schema"
	"github.com/velotools/velocheck/internal/validate"
)

func decodePayload(t *testing.T, raw string) interface{} {
	t.Helper()

	var payload interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	return payload
}

func TestBuiltinsRegisterAndFreeze(t *testing.T) {
	r := probe.NewRegistry()

	require.NoError(t, RegisterBuiltins(r, BuiltinParams{EnterpriseID: "1", EdgeID: "5"}))
	require.NoError(t, r.Freeze())

	assert.Equal(t, []string{
		"enterprise",
		"enterprise_edges",
		"configuration_policies",
		"edge_configuration_stack",
		"enterprise_edge_list",
		"ws_hello",
	}, r.Names())
}

func TestBuiltinsWithoutEdgeSkipStackProbe(t *testing.T) {
	r := probe.NewRegistry()

	require.NoError(t, RegisterBuiltins(r, BuiltinParams{EnterpriseID: "1"}))
	require.NoError(t, r.Freeze())

	assert.Equal(t, []string{
		"enterprise",
		"enterprise_edges",
		"configuration_policies",
		"enterprise_edge_list",
		"ws_hello",
	}, r.Names())
}

func TestBuiltinsThreadParams(t *testing.T) {
	byName := map[string]probe.Endpoint{}
	for _, ep := range Builtins(BuiltinParams{EnterpriseID: "7", EdgeID: "12"}) {
		byName[ep.Name] = ep
	}

	assert.Equal(t, map[string]string{"enterpriseId": "7"}, byName["enterprise"].Params)
	assert.Equal(t, map[string]string{"enterpriseId": "7"}, byName["enterprise_edges"].Params)
	assert.Equal(t, map[string]string{
		"enterpriseId": "7",
		"edgeId":       "12",
	}, byName["edge_configuration_stack"].Params)
	assert.Equal(t, map[string]string{
		"enterpriseId": "7",
		"limit":        "500",
		"_filterSpec":  "true",
	}, byName["enterprise_edge_list"].Params)
	assert.Empty(t, byName["ws_hello"].Params)
}

func TestBuiltinsSchemasWellFormed(t *testing.T) {
	for _, ep := range Builtins(BuiltinParams{EnterpriseID: "1", EdgeID: "5"}) {
		assert.NoError(t, schema.Check(ep.Expect), "endpoint %s", ep.Name)
	}
}

const conformingEnterprise = `{
	"id": 1,
	"created": "2023-01-05T10:00:00Z",
	"networkId": null,
	"gatewayPoolId": 3,
	"alertsEnabled": 1,
	"operatorAlertsEnabled": 0,
	"endpointPkiMode": "CERTIFICATE_DISABLED",
	"name": "ACME Corp",
	"domain": null,
	"prefix": null,
	"logicalId": "9a0e1c6e-5a6b-4f5e-8f9a-1b2c3d4e5f60",
	"accountNumber": "ACC-0001",
	"description": null,
	"contactName": "Jo Admin",
	"contactPhone": null,
	"contactMobile": null,
	"contactEmail": "jo@acme.example",
	"streetAddress": null,
	"city": null,
	"state": null,
	"postalCode": null,
	"country": "US",
	"lat": 37.402866,
	"lon": -122.117332,
	"timezone": "America/Los_Angeles",
	"bastionState": "UNCONFIGURED",
	"modified": "2024-02-03T04:05:06Z"
}`

func TestEnterprisePayloadConforms(t *testing.T) {
	v := validate.NewValidator()

	ds := v.Validate(enterpriseSchema(), decodePayload(t, conformingEnterprise))

	assert.Empty(t, ds)
}

func TestEnterprisePayloadViolations(t *testing.T) {
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(conformingEnterprise), &payload))

	delete(payload, "logicalId")
	payload["endpointPkiMode"] = "CERTIFICATE_MAYBE"

	v := validate.NewValidator()

	ds := v.Validate(enterpriseSchema(), payload)

	require.Len(t, ds, 2)
	assert.Equal(t, validate.KindTypeMismatch, ds[0].Kind)
	assert.Equal(t, "endpointPkiMode", ds[0].Path.String())
	assert.Equal(t, validate.KindMissingField, ds[1].Kind)
	assert.Equal(t, "logicalId", ds[1].Path.String())
}

func TestEdgeListEnvelopeConforms(t *testing.T) {
	payload := decodePayload(t, `{
		"metaData": {"limit": 500, "more": false, "nextPageLink": null},
		"data": [
			{"id": 10, "logicalId": "9a0e1c6e-5a6b-4f5e-8f9a-1b2c3d4e5f60", "name": "branch-1", "edgeState": "CONNECTED"},
			{"id": null, "logicalId": null, "name": null, "edgeState": null}
		]
	}`)

	v := validate.NewValidator()

	ds := v.Validate(edgeListEnvelopeSchema(), payload)

	assert.Empty(t, ds)
}

func TestWSHelloPayloadConforms(t *testing.T) {
	v := validate.NewValidator()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "full greeting", raw: `{"action": "noop", "token": "abc123"}`},
		{name: "action omitted", raw: `{"token": "abc123"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := v.Validate(wsHelloSchema(), decodePayload(t, tt.raw))
			assert.Empty(t, ds)
		})
	}
}

func TestWSHelloPayloadMissingToken(t *testing.T) {
	v := validate.NewValidator()

	ds := v.Validate(wsHelloSchema(), decodePayload(t, `{"action": "noop"}`))

	require.Len(t, ds, 1)
	assert.Equal(t, validate.KindMissingField, ds[0].Kind)
	assert.Equal(t, "token", ds[0].Path.String())
}

func TestConfigurationProfileModuleData(t *testing.T) {
	payload := decodePayload(t, `{
		"id": 100,
		"created": "2023-01-05T10:00:00Z",
		"name": "Edge Specific Profile",
		"logicalId": "9a0e1c6e-5a6b-4f5e-8f9a-1b2c3d4e5f60",
		"enterpriseLogicalId": "11111111-2222-4333-8444-555555555555",
		"version": "1700000000000",
		"description": null,
		"configurationType": "SEGMENT_BASED",
		"bastionState": "UNCONFIGURED",
		"schemaVersion": "4.5.1",
		"effective": "2023-01-05T10:00:00Z",
		"modified": "2024-02-03T04:05:06Z",
		"modules": [
			{
				"id": 7,
				"created": "2023-01-05T10:00:00Z",
				"name": "deviceSettings",
				"type": "ENTERPRISE",
				"description": null,
				"schemaVersion": "4.5.1",
				"version": "1700000000000",
				"configurationId": 100,
				"enterpriseLogicalId": null,
				"effective": "2023-01-05T10:00:00.000Z",
				"modified": "2024-02-03T04:05:06Z",
				"data": {"lan": {"networks": []}, "arbitrary": true},
				"refs": {"deviceSettings:segment": []}
			}
		]
	}`)

	v := validate.NewValidator()

	ds := v.Validate(configurationProfileSchema(), payload)

	assert.Empty(t, ds)
}
