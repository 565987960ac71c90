package inventory

import "fmt"

// Item is one stocked product.
type Item struct {
	SKU      string
	Quantity int
}

// Store is the interface for stock persistence.
type Store interface {
	Lookup(sku string) (*Item, error)
	Put(item *Item) error
}

// Reserve decrements stock for a SKU.
func Reserve(store Store, sku string, n int) (*Item, error) {
	item, err := store.Lookup(sku)
	if err != nil {
		return nil, fmt.Errorf("reserve %s: %w", sku, err)
	}
	item.Quantity -= n
	return item, store.Put(item)
}
