package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_RoleMarker(t *testing.T) {
	tests := []struct {
		name  string
		json  string
		admin bool
		role  string
	}{
		{name: "user_type admin", json: `{"id":1,"user_type":"admin"}`, admin: true, role: "admin"},
		{name: "role admin", json: `{"id":1,"role":"Admin"}`, admin: true, role: "admin"},
		{name: "user_type wins", json: `{"id":1,"user_type":"staff","role":"admin"}`, admin: false, role: "staff"},
		{name: "no role", json: `{"id":2}`, admin: false, role: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			require.NoError(t, json.Unmarshal([]byte(tt.json), &u))
			assert.Equal(t, tt.admin, u.IsAdmin())
			assert.Equal(t, tt.role, u.RoleName())
		})
	}
}

func TestUser_Valid(t *testing.T) {
	assert.True(t, User{ID: 1}.Valid())
	assert.False(t, User{}.Valid())
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ann", User{Name: "Ann", Email: "a@b.com"}.DisplayName())
	assert.Equal(t, "a@b.com", User{Email: "a@b.com"}.DisplayName())
}

func TestQuotation_DecodesNestedModelAndTimestamps(t *testing.T) {
	raw := `{"id":7,"quotation_number":"Q-7","customer_name":"Bob","total_amount":120.5,
		"status":"pending","model":{"id":3,"name":"X1","brand_id":2,"brand":{"id":2,"name":"Acme"}},
		"created_at":"2024-05-01T10:00:00.000000Z","updated_at":null}`

	var q Quotation
	require.NoError(t, json.Unmarshal([]byte(raw), &q))
	assert.Equal(t, QuotationPending, q.Status)
	require.NotNil(t, q.Model)
	require.NotNil(t, q.Model.Brand)
	assert.Equal(t, "Acme", q.Model.Brand.Name)
	assert.Equal(t, 2024, q.CreatedAt.Year())
	assert.True(t, q.UpdatedAt.IsZero())
}
