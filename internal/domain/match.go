package domain

import "time"

// ProcessingStatus is the outcome of matching one tender item.
type ProcessingStatus string

const (
	StatusSuccess   ProcessingStatus = "success"
	StatusNoMatches ProcessingStatus = "no_matches"
	StatusError     ProcessingStatus = "error"
)

// MatchDetail records the comparison of one tender characteristic
// against a product. Every required characteristic of an item ends up
// either in MatchedAttributes or MissingAttributes of MatchDetails.
type MatchDetail struct {
	Name         string `json:"name"`
	TenderValue  string `json:"tender_value"`
	ProductValue string `json:"product_value,omitempty"`
	Unit         string `json:"unit,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Required     bool   `json:"required"`
}

// MatchDetails explains how a product's final score was composed.
type MatchDetails struct {
	FinalScore        float64       `json:"final_score"`
	AttributeScore    float64       `json:"attribute_score"`
	TextScore         float64       `json:"text_score,omitempty"`
	SemanticScore     float64       `json:"semantic_score,omitempty"`
	MatchedAttributes []MatchDetail `json:"matched_attributes"`
	MissingAttributes []MatchDetail `json:"missing_attributes"`
	TotalRequired     int           `json:"total_required"`
	TotalMatched      int           `json:"total_matched"`
}

// MatchedSupplier is a supplier ranked by price-adjusted match score.
type MatchedSupplier struct {
	Key               string          `json:"supplier_key"`
	Name              string          `json:"supplier_name"`
	Tel               string          `json:"supplier_tel,omitempty"`
	Address           string          `json:"supplier_address,omitempty"`
	Offers            []SupplierOffer `json:"supplier_offers"`
	MatchScore        float64         `json:"match_score"`
	MatchedAttributes []string        `json:"matched_attributes"`
}

// MatchedProduct is a catalog candidate with its final score and ranked suppliers.
type MatchedProduct struct {
	ProductHash        string                  `json:"product_hash"`
	ClassificationCode string                  `json:"okpd2_code"`
	ClassificationName string                  `json:"okpd2_name"`
	SampleTitle        string                  `json:"sample_title,omitempty"`
	SampleBrand        string                  `json:"sample_brand,omitempty"`
	Attributes         []StandardizedAttribute `json:"standardized_attributes"`
	MatchedSuppliers   []MatchedSupplier       `json:"matched_suppliers"`
	TotalSuppliers     int                     `json:"total_suppliers"`
	MatchScore         float64                 `json:"match_score"`
	MatchDetails       MatchDetails            `json:"match_details"`
}

// ProcessingStats carries per-item pipeline metrics.
type ProcessingStats struct {
	SearchQuery         string  `json:"search_query,omitempty"`
	CandidatesFound     int     `json:"candidates_found"`
	AfterSemanticFilter int     `json:"after_semantic_filter,omitempty"`
	MatchedProducts     int     `json:"matched_products"`
	WeightedTermsCount  int     `json:"weighted_terms_count,omitempty"`
	ProcessingSeconds   float64 `json:"processing_time"`
}

// TenderItemMatch is the outcome for a single tender item.
type TenderItemMatch struct {
	TenderItemID       int              `json:"tender_item_id"`
	TenderItemName     string           `json:"tender_item_name"`
	ClassificationCode string           `json:"okpd2_code"`
	MatchedProducts    []MatchedProduct `json:"matched_products"`
	TotalMatches       int              `json:"total_matches"`
	BestMatchScore     float64          `json:"best_match_score"`
	ProcessingStatus   ProcessingStatus `json:"processing_status"`
	ErrorMessage       string           `json:"error_message,omitempty"`
	ProcessingStats    *ProcessingStats `json:"processing_stats,omitempty"`
}

// Summary aggregates tender-level statistics over all item matches.
type Summary struct {
	ProcessingDurationSeconds float64 `json:"processing_duration_seconds"`
	ItemsPerSecond            float64 `json:"items_per_second"`
	ParallelBatchSize         int     `json:"parallel_batch_size,omitempty"`
	ItemsWithPerfectMatch     int     `json:"items_with_perfect_match"`
	ItemsWithGoodMatch        int     `json:"items_with_good_match"`
	ItemsWithPartialMatch     int     `json:"items_with_partial_match"`
	ItemsWithoutMatch         int     `json:"items_without_match"`
	ItemsWithErrors           int     `json:"items_with_errors"`
	AverageMatchScore         float64 `json:"average_match_score"`
	TotalSuppliers            int     `json:"total_suppliers"`
	TotalMatchedProducts      int     `json:"total_matched_products"`
	SemanticSearchEnabled     bool    `json:"semantic_search_enabled"`
	AlgorithmVersion          string  `json:"algorithm_version,omitempty"`
}

// TenderMatchingResult is the whole-tender outcome. It is created once per
// processing invocation and never mutated after return.
type TenderMatchingResult struct {
	TenderNumber   string            `json:"tender_number,omitempty"`
	TenderName     string            `json:"tender_name,omitempty"`
	TenderMaxPrice float64           `json:"tender_max_price,omitempty"`
	ProcessingTime time.Time         `json:"processing_time"`
	TotalItems     int               `json:"total_items"`
	MatchedItems   int               `json:"matched_items"`
	ItemMatches    []TenderItemMatch `json:"item_matches"`
	Summary        Summary           `json:"summary"`
}
