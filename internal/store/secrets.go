package store

import (
	"database/sql"
	"fmt"

	"curio/internal/logging"
)

// LookupSecret decrypts a stored secret with the local encryption key.
// Secrets are written by the surrounding memory plugin using pgcrypto's
// pgp_sym_encrypt; this is the matching read path. Returns empty string when
// no secret is stored.
func (s *Store) LookupSecret(kind, provider, encryptionKey string) (string, error) {
	var value sql.NullString
	err := s.db.QueryRow(`
		SELECT pgp_sym_decrypt(secret_value, $3)
		FROM secrets
		WHERE kind = $1 AND provider = $2`,
		kind, provider, encryptionKey).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		logging.StoreError("Failed to look up secret %s/%s: %v", kind, provider, err)
		return "", fmt.Errorf("failed to look up secret: %w", err)
	}
	return value.String, nil
}
