package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "milsabores/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
	})
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String(), "   "}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errUser := ParseUserID(validUUID)
		_, errTab := ParseTabID(validUUID)
		_, errReceipt := ParseReceiptID(validUUID)

		require.NoError(t, errUser)
		require.NoError(t, errTab)
		require.NoError(t, errReceipt)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errUser := ParseUserID(input)
			_, errTab := ParseTabID(input)
			_, errReceipt := ParseReceiptID(input)

			require.Error(t, errUser)
			require.Error(t, errTab)
			require.Error(t, errReceipt)
		})
	}
}

func TestUserIDJSON(t *testing.T) {
	original := NewUserID()
	raw, err := json.Marshal(struct {
		ID UserID `json:"id"`
	}{ID: original})
	require.NoError(t, err)
	assert.Contains(t, string(raw), original.String())

	var decoded struct {
		ID UserID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, original, decoded.ID)

	require.Error(t, json.Unmarshal([]byte(`{"id":"nope"}`), &decoded))
}

func TestParseProductCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ProductCode
		wantErr bool
	}{
		{"plain code", "TC001", "TC001", false},
		{"trims surrounding space", "  TT002 ", "TT002", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"inner space", "TC 001", "", true},
		{"control character", "TC\x00001", "", true},
		{"oversized", strings.Repeat("A", 65), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProductCode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}

	assert.False(t, ProductCode(" padded").IsValid())
}
