package constants

// TokenKind tags a session JWT with the registry its ID belongs to.
type TokenKind string

const (
	TokenKindWatch     TokenKind = "watch"
	TokenKindBroadcast TokenKind = "broadcast"
	TokenKindIngress   TokenKind = "ingress"
)

const (
	// Default creation-dialog toggles; Cancel resets back to these.
	DefaultEnableChat         = true
	DefaultAllowParticipation = true
)
