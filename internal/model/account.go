package model

// SignUpInput registers a new account.
type SignUpInput struct {
	FullName string `json:"fullName" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// SignInInput authenticates an existing account.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput changes the display name.
type ProfileInput struct {
	FullName string `json:"fullName" validate:"required,min=2,max=120"`
}
