package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapLabelRecyclable(t *testing.T) {
	tests := []string{
		"aluminum can",
		"glass bottle",
		"cardboard box",
		"water bottle",
		"tin",
		"milk carton",
		"newspaper",
	}
	for _, label := range tests {
		t.Run(label, func(t *testing.T) {
			assert.Equal(t, CategoryRecyclable, MapLabel(label))
		})
	}
}

func TestMapLabelCompost(t *testing.T) {
	tests := []string{
		"banana peel",
		"apple core",
		"coffee grounds",
		"dead leaves",
		"tea bag",
		"eggshell",
	}
	for _, label := range tests {
		t.Run(label, func(t *testing.T) {
			assert.Equal(t, CategoryCompost, MapLabel(label))
		})
	}
}

func TestMapLabelTrashFallback(t *testing.T) {
	tests := []string{
		"styrofoam cup",
		"broken toy",
		"chewing gum",
		"",
	}
	for _, label := range tests {
		t.Run(label, func(t *testing.T) {
			assert.Equal(t, CategoryTrash, MapLabel(label))
		})
	}
}

// "plastic wrapper" contains the recyclable keyword "plastic", so the
// heuristic resolves it as recyclable even though a human would likely
// bin it. The keyword lists win over intuition here.
func TestMapLabelPlasticWrapper(t *testing.T) {
	assert.Equal(t, CategoryRecyclable, MapLabel("plastic wrapper"))
}

// Recyclable keywords are checked strictly before compost keywords.
func TestMapLabelRecyclableBeatsCompost(t *testing.T) {
	assert.Equal(t, CategoryRecyclable, MapLabel("fruit jar"))
	assert.Equal(t, CategoryRecyclable, MapLabel("bottle of juice with fruit"))
}

func TestMapLabelCaseInsensitive(t *testing.T) {
	assert.Equal(t, CategoryRecyclable, MapLabel("ALUMINUM CAN"))
	assert.Equal(t, CategoryCompost, MapLabel("Banana Peel"))
}

func TestMapLabelDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Equal(t, CategoryRecyclable, MapLabel("glass bottle"))
	}
}

func TestMapLabelSubstringContainment(t *testing.T) {
	// "trash can" matches via "can": intentional leniency
	assert.Equal(t, CategoryRecyclable, MapLabel("trash can"))
	// "container" matches via "can" inside the word
	assert.Equal(t, CategoryRecyclable, MapLabel("storage container"))
}

func TestMapLabelAlwaysReturnsKnownCategory(t *testing.T) {
	labels := []string{"x", "zzz", "trash can", "banana", "thing"}
	for _, label := range labels {
		assert.True(t, MapLabel(label).Valid())
	}
}
