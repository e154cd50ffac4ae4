package user

// User represents a user entity in the system.
//
// ID is derived from the creation timestamp in milliseconds and is not
// guaranteed to be unique: two users created within the same millisecond
// share an ID.
type User struct {
	ID    int64  `json:"id"`    // ID is the creation-time identifier for the user
	Name  string `json:"name"`  // Name is the display name of the user
	Email string `json:"email"` // Email is stored as given, no format or uniqueness check
}
