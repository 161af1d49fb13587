package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ItemID identifies a catalog product and the line item created from it.
// Browser carts persisted ids as either JSON strings or JSON numbers, so
// decoding accepts both; encoding always produces a string.
type ItemID string

// UnmarshalJSON accepts `"abc"` as well as `42`.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a string or number: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// String returns the id as a plain string.
func (id ItemID) String() string {
	return string(id)
}

// Product is a catalog product descriptor as handed to the cart by the
// storefront pages and the search widget. Price is in minor currency units.
type Product struct {
	ID       ItemID `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=500"`
	Price    int64  `json:"price" validate:"gte=0"`
	Image    string `json:"image"`
	Category string `json:"category,omitempty"`
}

// LineItem is one product entry in the cart with its quantity and the unit
// price locked in when it was first added.
type LineItem struct {
	ID       ItemID `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Image    string `json:"image"`
	Quantity int    `json:"quantity"`
}

// NewLineItem creates a line item with quantity 1 from a product.
func NewLineItem(p Product) LineItem {
	return LineItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Quantity: 1,
	}
}

// Subtotal returns price * quantity for the line.
func (li LineItem) Subtotal() int64 {
	return li.Price * int64(li.Quantity)
}

// Items is the ordered sequence of line items in a cart. Insertion order is
// display order.
type Items []LineItem

// Total calculates the total price of all items (in minor units).
func (items Items) Total() int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// ItemCount returns the total number of units in the cart, not the number of
// distinct products.
func (items Items) ItemCount() int {
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// FindIndex returns the index of the line item with the given id, or -1.
func (items Items) FindIndex(id ItemID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no backing array with items.
func (items Items) Clone() Items {
	if items == nil {
		return Items{}
	}
	out := make(Items, len(items))
	copy(out, items)
	return out
}
