package domain

// DecisionKind tags the outcome of the dashboard auth gate.
type DecisionKind int

const (
	// DecisionAuthorized grants access; Role carries the authorization level.
	DecisionAuthorized DecisionKind = iota
	// DecisionLoginRequired means no session cookies were presented; the
	// login page is shown.
	DecisionLoginRequired
	// DecisionInvalidToken means the presented token failed external
	// verification; the browser is redirected to the identity provider.
	DecisionInvalidToken
	// DecisionNoRole means the token verified but has no role mapping; the
	// browser is re-authenticated at the identity provider.
	DecisionNoRole
	// DecisionLoginCompleted is the callback short-circuit: the external
	// login finished, cookies must be set and the browser sent home.
	DecisionLoginCompleted
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionAuthorized:
		return "authorized"
	case DecisionLoginRequired:
		return "login_required"
	case DecisionInvalidToken:
		return "invalid_token"
	case DecisionNoRole:
		return "no_role"
	case DecisionLoginCompleted:
		return "login_completed"
	}
	return "unknown"
}

// Decision is the tagged outcome of evaluating a dashboard request against
// the auth gate. Exactly the fields relevant to the Kind are populated.
type Decision struct {
	Kind DecisionKind

	// Role is set when Kind == DecisionAuthorized.
	Role string

	// RedirectURL is the identity-provider URL for DecisionInvalidToken and
	// DecisionNoRole.
	RedirectURL string

	// AuthToken and Username are set when Kind == DecisionLoginCompleted and
	// become the secure, http-only cookies.
	AuthToken string
	Username  string
}
