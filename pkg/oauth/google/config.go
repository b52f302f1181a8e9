package google

// Config represents the configuration for the Google OAuth client
type Config struct {
	// ClientID is the OAuth 2.0 client ID issued by Google Cloud Console
	ClientID string

	// ClientSecret is the OAuth 2.0 client secret
	ClientSecret string

	// RedirectURL is the callback URL registered for this client
	RedirectURL string

	// Endpoint URLs, overridable for tests
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

const (
	defaultAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	defaultTokenURL    = "https://oauth2.googleapis.com/token"
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" || c.RedirectURL == "" {
		return ErrInvalidConfig
	}
	return nil
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.AuthURL == "" {
		out.AuthURL = defaultAuthURL
	}
	if out.TokenURL == "" {
		out.TokenURL = defaultTokenURL
	}
	if out.UserInfoURL == "" {
		out.UserInfoURL = defaultUserInfoURL
	}
	return out
}
