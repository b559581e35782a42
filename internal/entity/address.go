package entity

// Address is a shipping address. Soft-deleted rows keep IsDelete set and are
// never resolvable during checkout.
type Address struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	Receiver  string `json:"receiver"`
	Address   string `json:"address"`
	Mobile    string `json:"receiver_mobile"`
	Tag       string `json:"tag"`
	IsDefault bool   `json:"is_default"`
	IsDelete  bool   `json:"-"`
}

// CheckoutPreview is the order confirm page payload: the candidate line
// items plus the user's addresses (default address first).
type CheckoutPreview struct {
	Addresses []Address          `json:"addresses"`
	Lines     []LineItemSnapshot `json:"sku_list"`
	SkuID     int                `json:"sku_id"`
	BuyCount  int                `json:"buy_count"`
}
