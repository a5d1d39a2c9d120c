package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
)

// Digest returns the lowercase hex SHA-256 of the path string itself.
// Downstream caches key on this value, so it must stay a digest of the
// logical path and never of file bytes.
func Digest(p string) string {
	sum := sha256.Sum256([]byte(p))
	return hex.EncodeToString(sum[:])
}

// JoinPath composes the logical path of fileName under base.
func JoinPath(base, fileName string) string {
	return path.Join(base, fileName)
}
