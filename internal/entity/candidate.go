package entity

// CandidateProduct is an unverified product match proposed by the reasoning
// service for one document. Name and Brand are mandatory; a candidate missing
// either fails validation on its own without affecting its siblings.
type CandidateProduct struct {
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	ProductType   string   `json:"product_type,omitempty"`
	SubType       string   `json:"sub_type,omitempty"`
	BOMLayer      string   `json:"bom_layer,omitempty"`
	VendorName    string   `json:"vendor_name,omitempty"`
	Page          *int     `json:"page,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	ComponentType string   `json:"component_type,omitempty"`
}

// NormalizedKey is the canonical identity derived from a candidate. The
// (BrandNorm, NameNorm) pair is the dedup key for the whole catalog.
type NormalizedKey struct {
	BrandNorm  string   `json:"brand_norm" bson:"brand_norm"`
	NameNorm   string   `json:"name_norm" bson:"name_norm"`
	NameTokens []string `json:"name_tokens" bson:"name_tokens"`
	Aliases    []string `json:"aliases" bson:"aliases"`
}
