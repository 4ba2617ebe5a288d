package ports

// PasswordHasher turns a secret into an irreversible, verifiable representation.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	// Verify never fails loudly: malformed representations simply don't match.
	Verify(secret, representation string) bool
}

// TokenIssuer mints and resolves bearer credentials bound to a subject id.
type TokenIssuer interface {
	Issue(subjectID string) (string, error)
	Resolve(token string) (string, error)
}
