package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/robostock/catalog-ingest/internal/common"
	"github.com/robostock/catalog-ingest/internal/entity"
)

// Load reads and validates the vendor manifest. Any failure here is a
// CONFIG_ERROR: the pipeline cannot run without its reference data, so the
// caller is expected to treat it as fatal.
func Load(path string) (*entity.Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewConfigError(fmt.Sprintf("manifest file %q", path), err)
	}

	var m entity.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, common.NewConfigError(fmt.Sprintf("manifest file %q is not valid JSON", path), err)
	}
	if err := validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func validate(m *entity.Manifest) error {
	if len(m.Vendors) == 0 {
		return common.NewConfigError("manifest has no vendors", common.ErrValidation)
	}
	for i, v := range m.Vendors {
		if strings.TrimSpace(v.VendorName) == "" {
			return common.NewConfigError(fmt.Sprintf("vendor %d has an empty vendor_name", i), common.ErrValidation)
		}
		for _, g := range v.ProductGroups {
			if len(g.Items) > 0 && len(Keywords(g.Items)) == 0 {
				return common.NewConfigError(
					fmt.Sprintf("vendor %q group %q has items but no extractable keywords", v.VendorName, g.ProductGroup),
					common.ErrValidation)
			}
		}
	}
	return nil
}

// Keywords extracts the distinct lowercase tokens from a list of item names.
// The prompt builder uses these to ground the matching step.
func Keywords(items []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, item := range items {
		for _, tok := range strings.FieldsFunc(strings.ToLower(item), func(r rune) bool {
			return r == ' ' || r == '\t' || r == '\n' || r == '-' || r == '_' || r == '/' || r == ','
		}) {
			if tok == "" {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}
