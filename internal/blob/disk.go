package blob

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const uriScheme = "blob://"

// ErrBadSignature is returned when a signed URL fails verification or has expired.
var ErrBadSignature = errors.New("invalid or expired signature")

// DiskStore stores blobs under a root directory and signs access URLs with an
// HMAC secret so the HTTP layer can serve previews without exposing the root.
type DiskStore struct {
	root   string
	secret []byte
}

// NewDiskStore creates a disk-backed store rooted at root, creating it if needed.
func NewDiskStore(root, secret string) (*DiskStore, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve blob root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &DiskStore{root: abs, secret: []byte(secret)}, nil
}

// Put writes content under destPath and returns its locator. destPath must be
// a clean relative path; contentType is not persisted (the serving layer infers
// it from the file extension).
func (d *DiskStore) Put(ctx context.Context, content []byte, destPath, contentType string) (string, error) {
	rel, err := d.cleanRel(destPath)
	if err != nil {
		return "", err
	}
	full := filepath.Join(d.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.WriteFile(full, content, 0644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return uriScheme + rel, nil
}

// Get returns the content behind a locator issued by this store.
func (d *DiskStore) Get(ctx context.Context, uri string) ([]byte, error) {
	full, err := d.Resolve(uri)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return content, nil
}

// Resolve maps a locator to its absolute on-disk path.
func (d *DiskStore) Resolve(uri string) (string, error) {
	if !strings.HasPrefix(uri, uriScheme) {
		return "", fmt.Errorf("not a blob locator: %q", uri)
	}
	rel, err := d.cleanRel(strings.TrimPrefix(uri, uriScheme))
	if err != nil {
		return "", err
	}
	return filepath.Join(d.root, filepath.FromSlash(rel)), nil
}

// SignedURL returns a relative URL path ("/files/<path>?exp=...&sig=...")
// valid for ttl. The signature covers the blob path and expiry.
func (d *DiskStore) SignedURL(uri string, ttl time.Duration) (string, error) {
	if !strings.HasPrefix(uri, uriScheme) {
		return "", fmt.Errorf("not a blob locator: %q", uri)
	}
	rel, err := d.cleanRel(strings.TrimPrefix(uri, uriScheme))
	if err != nil {
		return "", err
	}
	exp := time.Now().Add(ttl).Unix()
	sig := d.sign(rel, exp)
	q := url.Values{}
	q.Set("exp", strconv.FormatInt(exp, 10))
	q.Set("sig", sig)
	return "/files/" + rel + "?" + q.Encode(), nil
}

// Verify checks a signed request for rel and returns the absolute file path
// when the signature matches and has not expired.
func (d *DiskStore) Verify(rel string, exp int64, sig string) (string, error) {
	clean, err := d.cleanRel(rel)
	if err != nil {
		return "", err
	}
	if time.Now().Unix() > exp {
		return "", ErrBadSignature
	}
	want := d.sign(clean, exp)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return "", ErrBadSignature
	}
	return filepath.Join(d.root, filepath.FromSlash(clean)), nil
}

func (d *DiskStore) sign(rel string, exp int64) string {
	mac := hmac.New(sha256.New, d.secret)
	fmt.Fprintf(mac, "%s\x00%d", rel, exp)
	return hex.EncodeToString(mac.Sum(nil))
}

// cleanRel normalizes p to a safe relative slash path inside the root.
func (d *DiskStore) cleanRel(p string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid blob path: %q", p)
	}
	return clean, nil
}
