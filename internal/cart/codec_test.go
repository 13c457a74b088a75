package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "milsabores/pkg/domain-errors"
)

func TestCodec_RoundTrip(t *testing.T) {
	carts := []Cart{
		{},
		mustAdd(t, Cart{}, tortaChocolate),
		mustAdd(t, Cart{}, brownie, kuchen, kuchen, tortaChocolate),
	}
	for _, c := range carts {
		data, err := Encode(c)
		require.NoError(t, err)

		decoded, err := Decode(data)
		require.NoError(t, err)
		assert.True(t, decoded.Equal(c))
		assert.Equal(t, c, decoded)
	}
}

func TestEncode_FieldNames(t *testing.T) {
	data, err := Encode(mustAdd(t, Cart{}, kuchen))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"productCode":"PT002","unitPrice":2000,"quantity":1,"nameSnapshot":"Kuchen de Manzana","imageRef":""}]`, string(data))

	empty, err := Encode(Cart{})
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(empty))
}

func TestDecode_RejectsCorruptRecords(t *testing.T) {
	records := map[string]string{
		"truncated":         `[{"productCode":"PT002","unitPrice":20`,
		"not an array":      `{"productCode":"PT002"}`,
		"zero quantity":     `[{"productCode":"PT002","unitPrice":2000,"quantity":0}]`,
		"negative quantity": `[{"productCode":"PT002","unitPrice":2000,"quantity":-1}]`,
		"duplicate codes":   `[{"productCode":"A","unitPrice":1,"quantity":1},{"productCode":"A","unitPrice":1,"quantity":1}]`,
		"missing code":      `[{"unitPrice":1,"quantity":1}]`,
		"negative price":    `[{"productCode":"A","unitPrice":-1,"quantity":1}]`,
		"fractional price":  `[{"productCode":"A","unitPrice":1.5,"quantity":1}]`,
	}
	for name, raw := range records {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(raw))
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
}
