package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"
	"sync"
)

var (
	pepperMu     sync.Mutex
	pepperPath   string
	pepperLoaded bool
	pepper       string
)

// SetPepperPath configures the file holding the site-wide pepper that is
// mixed into every password hash. The file is created with a fresh random
// value the first time a hash is computed. An empty path disables peppering,
// which is the default.
//
// Changing the pepper invalidates every previously stored hash, so the file
// must be backed up together with the user database.
func SetPepperPath(path string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepperPath = path
	pepperLoaded = false
	pepper = ""
}

func loadPepper() (string, error) {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	if pepperLoaded {
		return pepper, nil
	}
	if pepperPath == "" {
		pepperLoaded = true
		return "", nil
	}

	path := filepath.Clean(pepperPath)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", err
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		pepper = string(raw)
	case os.IsNotExist(err):
		buf := make([]byte, keyLength)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		pepper = base64.RawURLEncoding.EncodeToString(buf)
		if err := os.WriteFile(path, []byte(pepper), 0600); err != nil {
			return "", err
		}
	default:
		return "", err
	}

	pepperLoaded = true
	return pepper, nil
}
