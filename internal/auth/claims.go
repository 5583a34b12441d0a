package auth

import "github.com/golang-jwt/jwt/v5"

const operatorScope = "operator"

// Claims are the only supported JWT claims shape for operator tokens.
// The operator's identity travels in RegisteredClaims.Subject.
type Claims struct {
	jwt.RegisteredClaims

	Scope string `json:"scope"`
}
