package domain

// TokenPair is what login and refresh hand back: a short-lived access
// token and a longer-lived refresh token, each signed with its own key.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string // always "Bearer"
	ExpiresIn    int    // access token lifetime in seconds
}
