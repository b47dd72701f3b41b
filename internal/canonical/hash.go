package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"

	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/logging"
	"github.com/klauern/razd/internal/parser"
)

// Digest is a hex-encoded SHA-256 hash. The empty Digest means "no file".
type Digest string

// IsZero reports whether d is the absent digest.
func (d Digest) IsZero() bool {
	return d == ""
}

// Short returns the first 12 characters of d, for display.
func (d Digest) Short() string {
	if len(d) > 12 {
		return string(d[:12])
	}
	return string(d)
}

// HashString hashes a canonical form.
func HashString(s string) Digest {
	return HashBytes([]byte(s))
}

// HashBytes hashes raw content.
func HashBytes(data []byte) Digest {
	sum := sha256.Sum256(data)
	return Digest(hex.EncodeToString(sum[:]))
}

// HashFile returns the semantic digest of the manifest at path, choosing
// the format by file name. A missing file yields the zero Digest. When the
// file cannot be parsed the raw bytes are hashed instead and a warning is
// logged, so a malformed file still takes part in change detection.
func HashFile(path string) (Digest, error) {
	// #nosec G304 - path is a manifest inside the project root
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", rerrors.IO(path, "failed to read", err)
	}

	format, ok := parser.FormatForPath(path)
	if !ok {
		return HashBytes(data), nil
	}
	m, err := parser.Parse(data, format)
	if err != nil {
		logging.Warn("could not parse manifest, hashing raw content instead",
			logging.Path(path), logging.Err(err))
		return HashBytes(data), nil
	}
	return HashString(Canonicalize(m)), nil
}
