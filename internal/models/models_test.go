package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeOptionsRepresentationsAgree(t *testing.T) {
	inputs := []any{
		"M,L,XL",
		" M , L ,XL, ",
		`["M","L","XL"]`,
		[]byte(`["M", "L", "XL"]`),
		"{M,L,XL}",
		`{"M","L","XL"}`,
		[]string{"M", "L", "XL", "m"},
		[]any{"M", "L", "XL"},
	}
	for _, in := range inputs {
		got, err := ParseSizeOptions(in)
		require.NoError(t, err, "%v", in)
		assert.Equal(t, SizeOptions{"M", "L", "XL"}, got, "%v", in)
		assert.True(t, got.Contains("M"))
		assert.False(t, got.Contains("S"))
	}
}

func TestSizeOptionsMatchReturnsCanonicalLabel(t *testing.T) {
	sizes := SizeOptions{"P", "M", "GG"}
	label, ok := sizes.Match(" gg ")
	require.True(t, ok)
	assert.Equal(t, "GG", label)
}

func TestSizeOptionsScanAndValue(t *testing.T) {
	var s SizeOptions
	require.NoError(t, s.Scan("38, 39,40"))

	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, `["38","39","40"]`, v)

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)

	assert.Error(t, s.Scan(42))
	_, err = ParseSizeOptions(`["M",`)
	assert.Error(t, err)
}

func TestSizeOptionsUnmarshalJSONAcceptsString(t *testing.T) {
	var body struct {
		Sizes SizeOptions `json:"size_options"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"size_options":"P,M,G"}`), &body))
	assert.Equal(t, SizeOptions{"P", "M", "G"}, body.Sizes)

	out, err := json.Marshal(SizeOptions(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestNewCartSummary(t *testing.T) {
	cart := NewCart([]CartLine{
		{ProductID: 1, Price: decimal.RequireFromString("89.90"), Quantity: 2},
		{ProductID: 2, Price: decimal.RequireFromString("10.05"), Quantity: 3},
	})

	assert.Equal(t, 2, cart.Summary.TotalItems)
	assert.Equal(t, 5, cart.Summary.TotalQuantity)
	assert.Equal(t, "209.95", cart.Summary.TotalAmount)
	assert.Equal(t, "179.8", cart.Items[0].ItemTotal.String())

	empty := NewCart(nil)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, "0.00", empty.Summary.TotalAmount)
}

func TestShippingAddressMissingAndScan(t *testing.T) {
	addr := ShippingAddress{Street: "Rua A", City: " "}
	assert.Equal(t, []string{"city", "zipcode"}, addr.Missing())

	var scanned ShippingAddress
	require.NoError(t, scanned.Scan(`{"street":"Rua A","city":"Recife","zipcode":"50000-000"}`))
	assert.Empty(t, scanned.Missing())
	assert.Equal(t, "Recife", scanned.City)
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, OrderShipped.Valid())
	assert.False(t, OrderStatus("lost").Valid())
	assert.True(t, PaymentRefunded.Valid())
	assert.False(t, PaymentStatus("").Valid())
}

func TestPagination(t *testing.T) {
	p := NewPagination(PageRequest{Page: 2, Limit: 10}, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	last := NewPagination(PageRequest{Page: 3, Limit: 10}, 25)
	assert.False(t, last.HasNext)

	none := NewPagination(PageRequest{}, 0)
	assert.Equal(t, 1, none.Page)
	assert.Equal(t, DefaultPageLimit, none.Limit)
	assert.Equal(t, 0, none.TotalPages)
	assert.False(t, none.HasNext)

	assert.Equal(t, MaxPageLimit, PageRequest{Limit: 500}.Normalize().Limit)
	assert.Equal(t, 20, PageRequest{Page: 3, Limit: 10}.Offset())

	huge := PageRequest{Page: math.MaxInt, Limit: MaxPageLimit}
	assert.Equal(t, MaxPage, huge.Normalize().Page)
	assert.Equal(t, (MaxPage-1)*MaxPageLimit, huge.Offset())
	assert.Positive(t, huge.Offset())
}
