package core

import (
	"strings"
)

// recyclableKeywords match recyclable materials. The list is checked
// strictly before compostKeywords, so a label containing keywords from
// both sets resolves to recyclable.
var recyclableKeywords = []string{
	// Metals
	"can", "aluminum", "tin", "steel",
	// Glass
	"glass", "jar", "bottle",
	// Paper/Cardboard
	"cardboard", "paper", "magazine", "newspaper", "envelope",
	// Plastics and containers
	"plastic", "pet", "hdpe", "container", "carton", "tray",
}

// compostKeywords match compostable materials.
var compostKeywords = []string{
	// Produce and food scraps
	"banana", "apple", "orange", "pear", "fruit", "vegetable", "greens", "food",
	// Yard/plant
	"leaf", "leaves", "plant", "yard", "grass",
	// Common compostables
	"coffee", "grounds", "tea", "eggshell", "bread", "compost",
}

// MapLabel maps a raw label from a vision provider to a disposal category.
// Matching is case-insensitive substring containment, which is deliberately
// lenient: "trash can" matches via "can". Labels matching neither keyword
// set fall back to trash.
func MapLabel(label string) Category {
	lower := strings.ToLower(label)

	for _, kw := range recyclableKeywords {
		if strings.Contains(lower, kw) {
			return CategoryRecyclable
		}
	}
	for _, kw := range compostKeywords {
		if strings.Contains(lower, kw) {
			return CategoryCompost
		}
	}
	return CategoryTrash
}
