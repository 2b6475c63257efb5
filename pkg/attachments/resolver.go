package attachments

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifycenter/pkg/logger"
	"github.com/dmitrymomot/notifycenter/pkg/tokens"
)

// FileFinder maps static attachment ids to paths relative to the root directory.
// Unknown ids are left out of the result.
type FileFinder interface {
	FindAttachmentPathsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Resolver turns attachment references into absolute file paths.
// Safe for concurrent use.
type Resolver struct {
	rootDir string
	finder  FileFinder
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for skipped attachments.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver confined to rootDir. finder may be nil when
// static attachments are not used.
func NewResolver(rootDir string, finder FileFinder, opts ...Option) (*Resolver, error) {
	if strings.TrimSpace(rootDir) == "" {
		return nil, ErrInvalidRoot
	}

	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}

	r := &Resolver{
		rootDir: abs,
		finder:  finder,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("attachments"))

	return r, nil
}

// TokenAttachments resolves comma separated token references. Each reference is
// either "##name##" or a bare token name; its value is a file path. List values
// contribute one path per item.
func (r *Resolver) TokenAttachments(ctx context.Context, refs string, toks tokens.Tokens) []string {
	var out []string
	for ref := range strings.SplitSeq(refs, ",") {
		name := tokenName(ref)
		if name == "" {
			continue
		}

		v, ok := toks.Get(name)
		if !ok || v.IsEmpty() {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "attachment token is empty",
				slog.String("token", name))
			continue
		}

		for _, c := range v.List() {
			if p, ok := r.resolveLogged(ctx, c); ok {
				out = append(out, p)
			}
		}
	}
	return out
}

// StaticAttachments resolves file ids through the FileFinder, keeping the order of ids.
func (r *Resolver) StaticAttachments(ctx context.Context, ids []uuid.UUID) []string {
	if len(ids) == 0 {
		return nil
	}
	if r.finder == nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "static attachments configured without file finder",
			slog.Int("count", len(ids)))
		return nil
	}

	found, err := r.finder.FindAttachmentPathsByIDs(ctx, ids)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to look up attachments",
			logger.Error(fmt.Errorf("%w: %v", ErrLookupFailure, err)))
		return nil
	}

	var out []string
	for _, id := range ids {
		rel, ok := found[id]
		if !ok {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "attachment not found",
				slog.String("file_id", id.String()))
			continue
		}
		if p, ok := r.resolveLogged(ctx, rel); ok {
			out = append(out, p)
		}
	}
	return out
}

// Resolve returns the absolute path of a regular file inside the root directory.
func (r *Resolver) Resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrFileNotFound)
	}

	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Join(r.rootDir, filepath.Clean(path))
	}

	if !strings.HasPrefix(abs, r.rootDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return "", fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotRegular, path)
	}

	return abs, nil
}

func (r *Resolver) resolveLogged(ctx context.Context, path string) (string, bool) {
	abs, err := r.Resolve(path)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "skipping attachment",
			logger.Path(path),
			logger.Error(err))
		return "", false
	}
	return abs, true
}

func tokenName(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "##") && strings.HasSuffix(ref, "##") && len(ref) > 4 {
		ref = ref[2 : len(ref)-2]
	}
	return strings.TrimSpace(ref)
}
