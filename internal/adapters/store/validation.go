package store

import (
	"fmt"

	"github.com/mikey/binsight/internal/core"
)

// validateItemFields enforces the item invariants shared by every backing
func validateItemFields(name string, category core.Category, confidence float64) error {
	if name == "" {
		return fmt.Errorf("item name must not be empty")
	}
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}
	if confidence < 0 || confidence > 1 {
		return fmt.Errorf("confidence %f outside [0,1]", confidence)
	}
	return nil
}
