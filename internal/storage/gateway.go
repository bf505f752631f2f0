package storage

import (
	"fmt"
	"io"
	"log"
	"path"
	"regexp"
	"strings"
	"time"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// Gateway wraps the object store behind the path conventions and
// signed-URL issuance the rest of the application relies on. All reads of
// private objects go through signed URLs; callers never touch the store
// directly.
type Gateway struct {
	store  ObjectStore
	signer *URLSigner

	// now is stubbed in tests to pin timestamped filenames.
	now func() time.Time
}

func NewGateway(store ObjectStore, signer *URLSigner) *Gateway {
	return &Gateway{
		store:  store,
		signer: signer,
		now:    time.Now,
	}
}

// IsExternalRef reports whether ref is not a private storage path: a full
// URL, an embedded data reference, or a transient local-preview reference.
// Such refs are used verbatim and never sent to the backing store.
func IsExternalRef(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "data:") ||
		strings.HasPrefix(ref, "file://")
}

// SignedURL resolves a stored path into a time-limited URL. Empty paths
// yield empty results; external refs are returned unchanged. Signing
// failures are logged and yield an empty result, which callers treat as
// "no image".
func (g *Gateway) SignedURL(objectPath string) string {
	if objectPath == "" {
		return ""
	}
	if IsExternalRef(objectPath) {
		return objectPath
	}

	url, err := g.signer.Sign(objectPath)
	if err != nil {
		log.Printf("error signing url for %s: %v", objectPath, err)
		return ""
	}
	return url
}

// Upload stores data under {ownerID}/{folder}/{name}, where name is
// customName when given and a timestamped, sanitized copy of origName
// otherwise. The write is an upsert: repeated uploads to the same computed
// path replace the object without creating duplicates.
func (g *Gateway) Upload(ownerID, folder, customName, origName string, data io.Reader) (string, error) {
	name := customName
	if name == "" {
		name = fmt.Sprintf("%d-%s", g.now().UnixMilli(), SanitizeFilename(origName))
	}

	objectPath := path.Join(ownerID, folder, name)

	// path.Join resolves ".." segments, so a crafted name could walk out
	// of the owner's tree. Every stored object stays under {ownerID}/.
	if !strings.HasPrefix(objectPath, ownerID+"/") {
		return "", fmt.Errorf("invalid object name %q", name)
	}

	if err := g.store.Put(objectPath, data); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}

	return objectPath, nil
}

// Fetch streams a stored object. Used by the file-serving endpoint after
// signed-URL verification.
func (g *Gateway) Fetch(objectPath string) (io.ReadCloser, error) {
	return g.store.Fetch(objectPath)
}

// Delete removes a stored object. Empty and external refs are skipped:
// full URLs are never backend-owned objects. Store failures are logged
// and swallowed; deletion is best-effort cleanup and never blocks the
// caller's flow.
func (g *Gateway) Delete(objectPath string) {
	if objectPath == "" || IsExternalRef(objectPath) {
		return
	}

	if err := g.store.Remove(objectPath); err != nil {
		log.Printf("error deleting file %s: %v", objectPath, err)
	}
}

// DeleteAll removes many objects, best-effort, one at a time.
func (g *Gateway) DeleteAll(paths []string) {
	for _, p := range paths {
		g.Delete(p)
	}
}

// Verify checks a signed-URL token against the path it grants access to.
func (g *Gateway) Verify(token, objectPath string) error {
	return g.signer.Verify(token, objectPath)
}

// SanitizeFilename replaces every character outside [A-Za-z0-9.-] with an
// underscore.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// ContentTypeByExt maps a stored path to a content type for serving.
func ContentTypeByExt(objectPath string) string {
	switch strings.ToLower(path.Ext(objectPath)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".pdf":
		return "application/pdf"
	case ".txt", ".md":
		return "text/plain; charset=utf-8"
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
