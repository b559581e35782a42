package entity

// CartEntry is one item inside a user's cart. Selected marks whether the
// item is included in the next cart-mode checkout.
type CartEntry struct {
	Quantity int  `json:"quantity"`
	Selected bool `json:"selected"`
}

// Cart maps a sku id (string, it is a JSON object key in Redis) to its entry.
type Cart map[string]CartEntry

// MaxCartItems caps the number of distinct sku ids in one cart.
const MaxCartItems = 100

// SelectedEntries returns the subset of entries marked for checkout.
func (c Cart) SelectedEntries() Cart {
	out := Cart{}
	for id, entry := range c {
		if entry.Selected {
			out[id] = entry
		}
	}
	return out
}

// UnselectedEntries returns the entries that survive a cart-mode checkout.
func (c Cart) UnselectedEntries() Cart {
	out := Cart{}
	for id, entry := range c {
		if !entry.Selected {
			out[id] = entry
		}
	}
	return out
}

// CartLine is a cart entry joined with its catalog row for display.
type CartLine struct {
	SkuID           int      `json:"id"`
	Name            string   `json:"name"`
	Count           int      `json:"count"`
	Selected        bool     `json:"selected"`
	Price           float64  `json:"price"`
	DefaultImageURL string   `json:"default_image_url"`
	SaleAttrs       []string `json:"sku_sale_attr_val"`
}
