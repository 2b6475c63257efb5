package attachments_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifycenter/pkg/attachments"
	"github.com/dmitrymomot/notifycenter/pkg/tokens"
)

type mockFinder struct {
	mock.Mock
}

func (m *mockFinder) FindAttachmentPathsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]string), args.Error(1)
}

func setupRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "files", "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "files", "terms.pdf"), []byte("pdf"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "files", "docs", "a.txt"), []byte("a"), 0o644))
	return root
}

func TestResolver_TokenAttachments(t *testing.T) {
	t.Parallel()

	root := setupRoot(t)
	r, err := attachments.NewResolver(root, nil)
	require.NoError(t, err)

	toks := tokens.NewBuilder().
		Set("upload", "files/terms.pdf").
		SetList("docs", "files/docs/a.txt", "files/missing.txt").
		Set("escape", "../../etc/passwd").
		Set("dir", "files/docs").
		Set("absolute", filepath.Join(root, "files", "terms.pdf")).
		Build()

	tests := []struct {
		name string
		refs string
		want []string
	}{
		{
			name: "placeholder form",
			refs: "##upload##",
			want: []string{filepath.Join(root, "files", "terms.pdf")},
		},
		{
			name: "bare names and list values",
			refs: "upload, docs",
			want: []string{
				filepath.Join(root, "files", "terms.pdf"),
				filepath.Join(root, "files", "docs", "a.txt"),
			},
		},
		{
			name: "escaping and directories skipped",
			refs: "escape,dir,unknown",
			want: nil,
		},
		{
			name: "absolute path inside root",
			refs: "absolute",
			want: []string{filepath.Join(root, "files", "terms.pdf")},
		},
		{
			name: "empty refs",
			refs: " , ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, r.TokenAttachments(context.Background(), tt.refs, toks))
		})
	}
}

func TestResolver_StaticAttachments(t *testing.T) {
	t.Parallel()

	root := setupRoot(t)
	ctx := context.Background()
	idTerms, idGone, idMissing := uuid.New(), uuid.New(), uuid.New()
	ids := []uuid.UUID{idTerms, idGone, idMissing}

	t.Run("keeps order and skips unknown", func(t *testing.T) {
		t.Parallel()
		finder := &mockFinder{}
		finder.On("FindAttachmentPathsByIDs", ctx, ids).Return(map[uuid.UUID]string{
			idTerms: "files/terms.pdf",
			idGone:  "files/deleted.pdf",
		}, nil).Once()

		r, err := attachments.NewResolver(root, finder)
		require.NoError(t, err)

		got := r.StaticAttachments(ctx, ids)
		assert.Equal(t, []string{filepath.Join(root, "files", "terms.pdf")}, got)
		finder.AssertExpectations(t)
	})

	t.Run("lookup error yields nothing", func(t *testing.T) {
		t.Parallel()
		finder := &mockFinder{}
		finder.On("FindAttachmentPathsByIDs", ctx, ids).Return(nil, errors.New("db down")).Once()

		r, err := attachments.NewResolver(root, finder)
		require.NoError(t, err)

		assert.Empty(t, r.StaticAttachments(ctx, ids))
		finder.AssertExpectations(t)
	})

	t.Run("no ids skips finder", func(t *testing.T) {
		t.Parallel()
		finder := &mockFinder{}
		r, err := attachments.NewResolver(root, finder)
		require.NoError(t, err)

		assert.Empty(t, r.StaticAttachments(ctx, nil))
		finder.AssertNotCalled(t, "FindAttachmentPathsByIDs", mock.Anything, mock.Anything)
	})

	t.Run("nil finder", func(t *testing.T) {
		t.Parallel()
		r, err := attachments.NewResolver(root, nil)
		require.NoError(t, err)
		assert.Empty(t, r.StaticAttachments(ctx, ids))
	})
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	root := setupRoot(t)
	r, err := attachments.NewResolver(root, nil)
	require.NoError(t, err)

	_, err = r.Resolve("files/../../outside.txt")
	assert.ErrorIs(t, err, attachments.ErrInvalidPath)

	_, err = r.Resolve("files/none.pdf")
	assert.ErrorIs(t, err, attachments.ErrFileNotFound)

	_, err = r.Resolve("files/docs")
	assert.ErrorIs(t, err, attachments.ErrNotRegular)

	_, err = r.Resolve(".")
	assert.ErrorIs(t, err, attachments.ErrInvalidPath)

	_, err = attachments.NewResolver("  ", nil)
	assert.ErrorIs(t, err, attachments.ErrInvalidRoot)
}
