package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Metadata describes one backup file.
type Metadata struct {
	SourcePath string    `json:"source_path"` // File that was backed up
	BackupPath string    `json:"backup_path"` // Sibling .backup file
	CreatedAt  time.Time `json:"created_at"`  // Modification time of the backup
	Hash       string    `json:"hash"`        // SHA256 hash of content
	Size       int64     `json:"size"`        // File size in bytes
}

// ShortHash returns the first 12 characters of the content hash.
func (m Metadata) ShortHash() string {
	if len(m.Hash) > 12 {
		return m.Hash[:12]
	}
	return m.Hash
}

func hashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
