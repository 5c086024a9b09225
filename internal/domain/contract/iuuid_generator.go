package contract

// IUUIDGenerator defines the interface for generating unique identifiers
// (event ids, lock tokens).
type IUUIDGenerator interface {
	NewUUID() string
}
