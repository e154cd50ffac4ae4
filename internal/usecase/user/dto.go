package user

// CreateUserRequest represents the request payload for creating a new user.
// Fields are taken as given; missing values stay empty.
type CreateUserRequest struct {
	Name  string
	Email string
}
