package ports

// ScanFrontend defines the interface for the user-facing surface that
// drives scan sessions (HTTP API, one-shot CLI)
type ScanFrontend interface {
	// Start starts the frontend
	Start() error

	// Stop stops the frontend
	Stop() error
}
