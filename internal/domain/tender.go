package domain

// CharacteristicKind distinguishes numeric requirements from categorical ones.
type CharacteristicKind string

const (
	KindQuantitative CharacteristicKind = "Количественная"
	KindQualitative  CharacteristicKind = "Качественная"
)

// Characteristic is a single requirement attached to a tender item.
// Value may encode a numeric condition such as "≥10 и ≤20".
type Characteristic struct {
	ID       int                `json:"id,omitempty"`
	Name     string             `json:"name"`
	Value    string             `json:"value"`
	Unit     string             `json:"unit,omitempty"`
	Kind     CharacteristicKind `json:"type,omitempty"`
	Required bool               `json:"required"`
}

// Money is an amount with its currency as it appears in tender documents.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

// TenderItem is one line item of a procurement request.
type TenderItem struct {
	ID                 int              `json:"id"`
	Name               string           `json:"name"`
	ClassificationCode string           `json:"okpd2Code"`
	ClassificationName string           `json:"okpd2Name,omitempty"`
	Quantity           float64          `json:"quantity"`
	UnitOfMeasurement  string           `json:"unitOfMeasurement,omitempty"`
	UnitPrice          Money            `json:"unitPrice"`
	TotalPrice         Money            `json:"totalPrice,omitempty"`
	Characteristics    []Characteristic `json:"characteristics"`
}

// TenderInfo carries the tender header fields relevant for matching.
type TenderInfo struct {
	TenderName   string `json:"tenderName,omitempty"`
	TenderNumber string `json:"tenderNumber,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
	MaxPrice     *Money `json:"maxPrice,omitempty"`
}

// TenderRequest is the full procurement request submitted for matching.
type TenderRequest struct {
	TenderInfo TenderInfo   `json:"tenderInfo"`
	Items      []TenderItem `json:"items"`
}
