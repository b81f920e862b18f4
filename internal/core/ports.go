package core

import (
	"context"
	"time"
)

// VisionClient defines the interface for interacting with image-labeling services
type VisionClient interface {
	// LabelImage returns ranked candidate labels for a normalized image,
	// best candidate first
	LabelImage(ctx context.Context, image []byte) ([]LabelCandidate, error)

	// ModelID identifies the model behind this client
	ModelID() string
}

// ImageNormalizer prepares a captured image for the vision provider
type ImageNormalizer interface {
	// Normalize decodes the image and re-encodes it at the provider's
	// expected square input size
	Normalize(image []byte) ([]byte, error)
}

// OverrideChecker resolves labels that bypass the keyword heuristic
type OverrideChecker interface {
	// Match returns the forced category for a label, if any rule applies
	Match(label string) (Category, bool)
}

// ItemStore is the durable collection of saved scans.
//
// Implementations must funnel all mutating calls through a single
// serialization point so interleaved Create/Delete/WipeAll calls never race
// on the backing handle, and a failed Create must never leave a partial
// record visible to List. Delete of an absent id is a silent success.
type ItemStore interface {
	// Create persists a new item with a fresh unique id and returns it
	Create(ctx context.Context, name string, category Category, confidence float64, image []byte, timestamp time.Time) (*Item, error)

	// List returns items ordered by timestamp descending; limit <= 0
	// returns all items
	List(ctx context.Context, limit int) ([]*Item, error)

	// Delete removes the item with the given id
	Delete(ctx context.Context, id string) error

	// WipeAll removes every item
	WipeAll(ctx context.Context) error
}
