package constants

const (
	// TokenType for Bearer authentication
	TokenType = "Bearer"

	// ExpiresInParam asks Fitbit for an access token lifetime in seconds
	ExpiresInParam = "expires_in"

	// PromptParam forces the consent screen on every authorization
	PromptParam   = "prompt"
	PromptConsent = "consent"

	// CodeParam is the query parameter carrying the authorization code
	CodeParam = "code"

	// UserIDField is the extra field of the Fitbit token response naming the user
	UserIDField = "user_id"
)

// Routes served by the auth handlers
const (
	LoginPath    = "/auth/login"
	SubmitPath   = "/auth/submit"
	LogoutPath   = "/auth/logout"
	CallbackPath = "/callback"
)

// RedirectURLField is the form field of the pasted redirect URL
const RedirectURLField = "redirect_url"
