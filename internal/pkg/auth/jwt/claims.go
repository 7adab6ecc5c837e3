package jwt

import "github.com/golang-jwt/jwt"

const (
	// UserTypeRegistered marks tokens issued on login or registration.
	UserTypeRegistered = "registered"
)

// Payload defines the structure of the JSON Web Token (JWT) claims for Twoogle.
// It includes the standard claims required by the JWT specification and the
// username the token holder acts as.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), Iss (Issuer) and Id (token id).
	jwt.StandardClaims `json:"standard_claims"`

	// Username is the registered account the token authenticates.
	Username string `json:"username"`

	// UserType defines the role of the participant. Only registered users receive tokens;
	// requests without a token act as the guest account.
	UserType string `json:"user_type"`
}
