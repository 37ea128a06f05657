// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file is one secret: the filename is the key and the trimmed file
// contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Known secret keys.
const (
	// ContactEmail is appended to the User-Agent of API requests.
	ContactEmail = "contact-email"
	// WikiAPIToken is sent as a bearer token to the wiki APIs.
	WikiAPIToken = "wiki-api-token"
)

// Secrets maps secret keys to values.
type Secrets map[string]string

// Contact returns the contact e-mail, or "".
func (s Secrets) Contact() string { return s[ContactEmail] }

// Token returns the wiki API token, or "".
func (s Secrets) Token() string { return s[WikiAPIToken] }

// Load reads all files in dir. A missing directory is not an error and
// yields an empty set. Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (Secrets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("key", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}
