package domain

// TokenPair is what a successful login returns: the short-lived access token
// and the long-lived refresh token, both self-contained JWTs carrying the
// same principal snapshot.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    int64  `json:"expires_in"`           // seconds until access expiry
}
