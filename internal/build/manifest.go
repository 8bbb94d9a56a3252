package build

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// ManifestName is the manifest's file name in the output directory.
const ManifestName = "manifest.json"

// ManifestVersion is the current manifest format.
const ManifestVersion = 1

// Manifest records the BLAKE3 digest of every file a pass produced. It
// carries nothing pass-specific, so identical inputs give an identical
// manifest.
type Manifest struct {
	Version int               `json:"version"`
	Files   map[string]string `json:"files"`
}

// Digest returns the hex BLAKE3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ReadManifest reads the manifest in dir. A missing manifest is empty.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if os.IsNotExist(err) {
		return &Manifest{Version: ManifestVersion, Files: map[string]string{}}, nil
	}
	if err != nil {
		return nil, err
	}

	m := &Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	if m.Files == nil {
		m.Files = map[string]string{}
	}
	return m, nil
}

// Bytes encodes the manifest with sorted keys.
func (m *Manifest) Bytes() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
