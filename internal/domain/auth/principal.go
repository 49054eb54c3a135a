package auth

// Principal is the authenticated caller extracted from an access token
type Principal struct {
	UserID  string
	Email   string
	IsAdmin bool
}

// PrincipalFromClaims reads the caller from verified token claims
func PrincipalFromClaims(claims map[string]interface{}) (Principal, error) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Principal{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	isAdmin, _ := claims["is_admin"].(bool)
	return Principal{UserID: userID, Email: email, IsAdmin: isAdmin}, nil
}
