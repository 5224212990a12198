package llm

import (
	"encoding/json"
	"strings"

	"github.com/robostock/catalog-ingest/internal/entity"
	"github.com/robostock/catalog-ingest/internal/manifest"
)

// BuildSystemPrompt composes the system message: the matching task, the
// output contract, and strict formatting rules.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a product-catalog matcher for industrial robotics vendors.",
		"You are given a vendor manifest and the raw text of one catalog document.",
		"Identify every product from the manifest's vendors that the document mentions or describes.",
		"Return ONLY a JSON object with a 'products' array; each element MUST match the provided JSON Schema.",
		"Use the manifest's vendor_name spelling for 'brand' and 'vendor_name'.",
		"Include 'page' when the text indicates which page the product appears on.",
		"Include 'price' only when a numeric price is visible in the text; never guess one.",
		"Never output null. If a field is not present, omit it.",
		"If the document matches nothing, return {\"products\": []}.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the manifest, the output schema and the full
// document text into one user message.
func BuildUserPrompt(documentText string, m *entity.Manifest) string {
	var b strings.Builder

	b.WriteString("Vendor manifest:\n")
	b.WriteString(manifestJSON(m))
	b.WriteString("\n\nJSON Schema for each element of 'products':\n")
	b.WriteString(mustJSON(BuildCandidateJSONSchema()))
	b.WriteString("\n\nDocument text:\n")
	b.WriteString(documentText)
	return b.String()
}

// manifestJSON renders the manifest with per-group keyword hints so the model
// can match item mentions that use partial names.
func manifestJSON(m *entity.Manifest) string {
	type group struct {
		ProductGroup string   `json:"product_group"`
		BOMLayer     string   `json:"bom_layer,omitempty"`
		Items        []string `json:"items"`
		Keywords     []string `json:"keywords,omitempty"`
	}
	type vendor struct {
		VendorName    string  `json:"vendor_name"`
		ProductGroups []group `json:"product_groups"`
	}

	out := make([]vendor, 0, len(m.Vendors))
	for _, v := range m.Vendors {
		gv := make([]group, 0, len(v.ProductGroups))
		for _, g := range v.ProductGroups {
			gv = append(gv, group{
				ProductGroup: g.ProductGroup,
				BOMLayer:     g.BOMLayer,
				Items:        g.Items,
				Keywords:     manifest.Keywords(g.Items),
			})
		}
		out = append(out, vendor{VendorName: v.VendorName, ProductGroups: gv})
	}
	return mustJSON(map[string]any{"vendors": out})
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
