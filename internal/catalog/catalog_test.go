package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderReverseRoundTrip(t *testing.T) {
	cat := New(DefaultReferences(), Options{})

	keys := []string{
		KeyName, KeyCategory, KeyQuantity, KeyMinQuantity, KeyManufacturer,
		KeyModel, KeySupplier, KeyCost, KeyInvoice, KeyPurchaseDate, KeyNotes,
	}
	require.Len(t, cat.Fields(), len(keys))

	for _, key := range keys {
		header := cat.Header(key)
		got, ok := cat.Reverse(header)
		require.True(t, ok, "header %q did not reverse", header)
		assert.Equal(t, key, got)
	}
}

func TestReverseNormalizesSpacingAndCase(t *testing.T) {
	cat := New(DefaultReferences(), Options{})

	tests := []struct {
		header string
		key    string
	}{
		{"nombre", KeyName},
		{"  NOMBRE  ", KeyName},
		{"cantidad   minima", KeyMinQuantity},
		{"Numero De Factura", KeyInvoice},
	}
	for _, tc := range tests {
		got, ok := cat.Reverse(tc.header)
		require.True(t, ok, "header %q", tc.header)
		assert.Equal(t, tc.key, got)
	}

	_, ok := cat.Reverse("COLUMNA DESCONOCIDA")
	assert.False(t, ok)
}

func TestCostHeaderVariant(t *testing.T) {
	cat := New(DefaultReferences(), Options{CostHeader: "VALOR/COSTO"})

	assert.Equal(t, "VALOR/COSTO", cat.Header(KeyCost))
	key, ok := cat.Reverse("VALOR/COSTO")
	require.True(t, ok)
	assert.Equal(t, KeyCost, key)

	// Default falls back to the older layout.
	cat = New(DefaultReferences(), Options{})
	assert.Equal(t, "VALOR", cat.Header(KeyCost))
}

func TestDescribeUnknownKey(t *testing.T) {
	cat := New(DefaultReferences(), Options{})

	_, err := cat.Describe("no-such-field")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown catalog field")

	assert.Panics(t, func() { cat.MustDescribe("no-such-field") })
}

func TestReferenceExamples(t *testing.T) {
	cat := New(DefaultReferences(), Options{})

	category := cat.MustDescribe(KeyCategory)
	require.NotNil(t, category.Example)
	assert.Equal(t, "1 (Ferretería)", category.Example())

	supplier := cat.MustDescribe(KeySupplier)
	require.NotNil(t, supplier.Example)
	assert.Equal(t, "1 (Ferretería Central)", supplier.Example())

	// Notes deliberately has no example.
	notes := cat.MustDescribe(KeyNotes)
	assert.Nil(t, notes.Example)
}

func TestHeadersOrder(t *testing.T) {
	cat := New(DefaultReferences(), Options{})

	assert.Equal(t, []string{
		"NOMBRE", "CATEGORIA", "CANTIDAD", "CANTIDAD MINIMA", "FABRICANTE",
		"MODELO", "PROVEEDOR", "VALOR", "NUMERO DE FACTURA", "FECHA DE COMPRA",
		"OBSERVACIONES",
	}, cat.Headers())
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"nombre", "NOMBRE"},
		{"  CANTIDAD   MINIMA ", "CANTIDAD MINIMA"},
		{"Fecha\tde\tCompra", "FECHA DE COMPRA"},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeHeader(tc.in))
	}
}
