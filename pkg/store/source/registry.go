package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when a location does not exist.
var ErrNotFound = errors.New("location not found")

// Opener opens a location for streaming reads.
type Opener func(ctx context.Context, location string) (io.ReadCloser, error)

// Registry resolves locations to openers by URI scheme. Plain paths and
// file:// URIs use the "file" scheme.
type Registry interface {
	// Register adds an opener for a URI scheme
	Register(scheme string, opener Opener) error
	// Open streams the content at location
	Open(ctx context.Context, location string) (io.ReadCloser, error)
	// ListSchemes returns the registered schemes in sorted order
	ListSchemes() []string
}

type registry struct {
	mu      sync.RWMutex
	openers map[string]Opener
}

func NewRegistry() Registry {
	return &registry{
		openers: make(map[string]Opener),
	}
}

// NewDefaultRegistry knows local files, S3, Google Cloud Storage and Azure Blob
// Storage.
func NewDefaultRegistry() Registry {
	r := NewRegistry()
	_ = r.Register(SchemeFile, OpenFile)
	_ = r.Register(SchemeS3, OpenS3)
	_ = r.Register(SchemeGCS, OpenGCS)
	_ = r.Register(SchemeAzureBlob, OpenAzureBlob)
	return r
}

func (r *registry) Register(scheme string, opener Opener) error {
	if scheme == "" {
		return fmt.Errorf("scheme cannot be empty")
	}
	if opener == nil {
		return fmt.Errorf("opener cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.openers[scheme]; exists {
		return fmt.Errorf("scheme %q is already registered", scheme)
	}

	r.openers[scheme] = opener
	return nil
}

func (r *registry) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	scheme := Scheme(location)

	r.mu.RLock()
	opener, exists := r.openers[scheme]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("scheme %q is not registered", scheme)
	}

	return opener(ctx, location)
}

func (r *registry) ListSchemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.openers))
	for scheme := range r.openers {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// Scheme returns the lower-cased URI scheme of location, or "file" for plain
// paths. Windows drive letters are treated as paths.
func Scheme(location string) string {
	i := strings.Index(location, "://")
	if i <= 1 {
		return SchemeFile
	}
	return strings.ToLower(location[:i])
}

// splitBucketURI parses scheme://bucket/key/with/slashes.
func splitBucketURI(location string) (string, string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("invalid location %q: %w", location, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("location %q must look like %s://<bucket>/<key>", location, u.Scheme)
	}
	return u.Host, key, nil
}
