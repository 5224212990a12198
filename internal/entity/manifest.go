package entity

// Manifest is the static vendor/product reference catalog. It is loaded once
// at process start and read-only for the rest of the run.
type Manifest struct {
	Vendors []Vendor `json:"vendors"`
}

// Vendor groups the product lines a single manufacturer ships.
type Vendor struct {
	VendorName    string         `json:"vendor_name"`
	ProductGroups []ProductGroup `json:"product_groups"`
}

// ProductGroup is one product line within a vendor's catalog.
type ProductGroup struct {
	ProductGroup string   `json:"product_group"`
	BOMLayer     string   `json:"bom_layer,omitempty"`
	Items        []string `json:"items"`
}
