package entity

// SKU is a sellable catalog item with its inventory counters.
type SKU struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Price           float64  `json:"price"`
	Stock           int      `json:"stock"`
	Sales           int      `json:"sales"`
	IsLaunched      bool     `json:"is_launched"`
	DefaultImageURL string   `json:"default_image_url"`
	SaleAttrs       []string `json:"sku_sale_attr_val"`
}

// LineItemSnapshot is a display-time view of one checkout line. The price
// here is what the user saw on the confirm page; the commit re-reads the
// current price inside the transaction.
type LineItemSnapshot struct {
	SkuID           int      `json:"id"`
	Name            string   `json:"name"`
	Count           int      `json:"count"`
	Selected        bool     `json:"selected"`
	Price           float64  `json:"price"`
	DefaultImageURL string   `json:"default_image_url"`
	SaleAttrs       []string `json:"sku_sale_attr_val"`
}

/*
MySQL schema for the skus table:
CREATE TABLE `skus` (
  `id` int(11) NOT NULL AUTO_INCREMENT,
  `name` varchar(255) NOT NULL,
  `price` double NOT NULL,
  `stock` int(11) NOT NULL,
  `sales` int(11) NOT NULL,
  `is_launched` tinyint(1) NOT NULL DEFAULT 1,
  `default_image_url` varchar(255) NOT NULL DEFAULT '',
  `sale_attrs` text,
  PRIMARY KEY (`id`)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
*/
