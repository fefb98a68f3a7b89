package domain

import (
	"encoding/json"
	"strings"
)

// Metadata keys written onto payment provider products at checkout.
const (
	MetaProductID        = "productId"
	MetaSlug             = "slug"
	MetaOptions          = "options"
	MetaGelatoProductUID = "gelatoProductUid"
	MetaImageURL         = "imageUrl"
)

// ProductMetadata is the catalog identity carried through the payment provider.
type ProductMetadata struct {
	ProductID        string
	Slug             string
	Options          map[string]string
	GelatoProductUID string
	ImageURL         string
}

// ParseProductMetadata reads a provider metadata bag. It reports false when the
// bag is empty or carries no slug; a malformed options value yields no options.
func ParseProductMetadata(meta map[string]string) (ProductMetadata, bool) {
	if len(meta) == 0 {
		return ProductMetadata{}, false
	}
	slug := strings.TrimSpace(meta[MetaSlug])
	if slug == "" {
		return ProductMetadata{}, false
	}
	return ProductMetadata{
		ProductID:        strings.TrimSpace(meta[MetaProductID]),
		Slug:             slug,
		Options:          parseOptions(meta[MetaOptions]),
		GelatoProductUID: strings.TrimSpace(meta[MetaGelatoProductUID]),
		ImageURL:         strings.TrimSpace(meta[MetaImageURL]),
	}, true
}

func parseOptions(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var options map[string]string
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil
	}
	if len(options) == 0 {
		return nil
	}
	return options
}
