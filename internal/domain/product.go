package domain

// StandardizedAttribute is a catalog product's normalized property.
// Names and values come pre-normalized from the deduplication pipeline.
type StandardizedAttribute struct {
	StandardName  string `json:"standard_name" bson:"standard_name"`
	StandardValue string `json:"standard_value" bson:"standard_value"`
	Unit          string `json:"unit,omitempty" bson:"unit,omitempty"`
}

// OfferPrice is one quantity/price/discount tuple in a supplier offer.
type OfferPrice struct {
	Quantity int     `json:"qnt" bson:"qnt"`
	Price    float64 `json:"price" bson:"price"`
	Discount float64 `json:"discount" bson:"discount"`
}

// SupplierOffer is a concrete offer by a supplier for a product.
type SupplierOffer struct {
	SourceProductID string       `json:"source_product_id" bson:"source_product_id"`
	PurchaseURL     string       `json:"purchase_url,omitempty" bson:"purchase_url,omitempty"`
	PackageInfo     string       `json:"package_info,omitempty" bson:"package_info,omitempty"`
	Stock           string       `json:"stock,omitempty" bson:"stock,omitempty"`
	DeliveryTime    string       `json:"delivery_time,omitempty" bson:"delivery_time,omitempty"`
	Prices          []OfferPrice `json:"price" bson:"price"`
}

// Supplier is a seller of a deduplicated product.
type Supplier struct {
	Key     string          `json:"supplier_key" bson:"supplier_key"`
	Name    string          `json:"supplier_name" bson:"supplier_name"`
	Tel     string          `json:"supplier_tel,omitempty" bson:"supplier_tel,omitempty"`
	Address string          `json:"supplier_address,omitempty" bson:"supplier_address,omitempty"`
	Offers  []SupplierOffer `json:"supplier_offers" bson:"supplier_offers"`
}

// BestPrice returns the minimum unit price across all offers,
// or false when the supplier has no priced offers.
func (s Supplier) BestPrice() (float64, bool) {
	best := 0.0
	found := false
	for _, offer := range s.Offers {
		for _, p := range offer.Prices {
			if p.Price <= 0 {
				continue
			}
			if !found || p.Price < best {
				best = p.Price
				found = true
			}
		}
	}
	return best, found
}

// Product is a deduplicated catalog product. Identity is the content hash.
// Products are read-only from the matching engine's perspective.
type Product struct {
	Hash               string                  `json:"product_hash" bson:"product_hash"`
	ClassificationCode string                  `json:"okpd2_code" bson:"okpd2_code"`
	ClassificationName string                  `json:"okpd2_name" bson:"okpd2_name"`
	SampleTitle        string                  `json:"sample_title,omitempty" bson:"sample_title,omitempty"`
	SampleBrand        string                  `json:"sample_brand,omitempty" bson:"sample_brand,omitempty"`
	Attributes         []StandardizedAttribute `json:"standardized_attributes" bson:"standardized_attributes"`
	Suppliers          []Supplier              `json:"unique_suppliers" bson:"unique_suppliers"`

	// TextScore is populated by the enhanced full-text search when available.
	TextScore float64 `json:"text_score,omitempty" bson:"text_score,omitempty"`
}
