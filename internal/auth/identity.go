package auth

// Identity is the typed result of validating a bearer token. It is built
// once by the JWT middleware and threaded through the request context to
// the role guard and handlers; nothing downstream re-parses the token.
type Identity struct {
	UserID uint64
	Email  string
	Role   string
}
