package main

import (
	"testing"

	"loan-orchestrator/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoTypeFromJSONType(t *testing.T) {
	assert.Equal(t, "string", goTypeFromJSONType("string"))
	assert.Equal(t, "decimal.Decimal", goTypeFromJSONType("number"))
	assert.Equal(t, "decimal.NullDecimal", goTypeFromJSONType([]interface{}{"number", "null"}))
	assert.Equal(t, "[]string", goTypeFromJSONType([]interface{}{"array", "null"}))
	assert.Equal(t, "int", goTypeFromJSONType("integer"))
	assert.Equal(t, "interface{}", goTypeFromJSONType(nil))
}

func TestGenerateStructFields_DecisionInput(t *testing.T) {
	reg := registry.Default()
	activity, ok := reg.Find("record-underwriting-decision")
	require.True(t, ok)

	fields := generateStructFields(parseSchema(activity.InputSchema))

	assert.Contains(t, fields, "\tApplicationID string `json:\"applicationId\"`")
	assert.Contains(t, fields, "\tApprovedAmount decimal.NullDecimal `json:\"approvedAmount\"`")
	assert.Contains(t, fields, "\tApproved bool `json:\"approved\"`")
}
