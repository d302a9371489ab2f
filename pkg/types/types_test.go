package types

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func TestCartLineItemsValueScan(t *testing.T) {
	id := uuid.New()
	items := CartLineItems{{ProductID: id, Quantity: 3, UnitPriceCents: 1250}}

	raw, err := items.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}

	var decoded CartLineItems
	if err := decoded.Scan([]byte(raw.(string))); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ProductID != id || decoded[0].LineTotalCents() != 3750 {
		t.Fatalf("unexpected decoded items %+v", decoded)
	}
	if decoded.IndexOf(id) != 0 || decoded.IndexOf(uuid.New()) != -1 {
		t.Fatalf("IndexOf mismatch")
	}
}

func TestCartLineItemCheckedLineTotal(t *testing.T) {
	cases := []struct {
		name  string
		item  CartLineItem
		want  int64
		valid bool
	}{
		{name: "regular", item: CartLineItem{Quantity: 3, UnitPriceCents: 1250}, want: 3750, valid: true},
		{name: "free", item: CartLineItem{Quantity: math.MaxInt, UnitPriceCents: 0}, want: 0, valid: true},
		{name: "exact max", item: CartLineItem{Quantity: 1, UnitPriceCents: math.MaxInt64}, want: math.MaxInt64, valid: true},
		{name: "overflow", item: CartLineItem{Quantity: math.MaxInt, UnitPriceCents: 10}, valid: false},
		{name: "negative quantity", item: CartLineItem{Quantity: -1, UnitPriceCents: 10}, valid: false},
	}
	for _, tc := range cases {
		got, ok := tc.item.CheckedLineTotalCents()
		if ok != tc.valid || (ok && got != tc.want) {
			t.Fatalf("%s: got (%d, %v), want (%d, %v)", tc.name, got, ok, tc.want, tc.valid)
		}
	}
}

func TestCartLineItemsNilStoresEmptyArray(t *testing.T) {
	var items CartLineItems
	raw, err := items.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if raw != "[]" {
		t.Fatalf("expected [] got %v", raw)
	}
}

func TestScanRejectsUnknownType(t *testing.T) {
	var items CartLineItems
	if err := items.Scan(42); err == nil {
		t.Fatal("expected error for int scan")
	}
}

func TestShippingAddressValidate(t *testing.T) {
	ok := ShippingAddress{Address: "1 Main St", City: "Austin", PostalCode: "73301", Country: "US"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	missing := ok
	missing.City = " "
	if err := missing.Validate(); err == nil {
		t.Fatal("expected missing city error")
	}
}
