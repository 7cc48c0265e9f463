package media

import (
	"context"
	"testing"

	"letsconnect/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestValidator(t *testing.T) {
	v := &Validator{MaxFileSize: 64, AllowedTypes: []string{"image/png", "video/mp4"}}

	tests := []struct {
		name    string
		data    []byte
		file    string
		want    string
		wantErr error
	}{
		{"png", pngHeader, "a.png", "image/png", nil},
		{"empty", nil, "a.png", "", ErrEmptyFile},
		{"too large", make([]byte, 65), "a.png", "", ErrFileTooLarge},
		{"text rejected", []byte("just words"), "a.txt", "", ErrInvalidContentType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.data, tt.file)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectContentTypeFallsBackOnVideoExtension(t *testing.T) {
	assert.Equal(t, "video/quicktime", DetectContentType([]byte{0x00, 0x01, 0x02}, "clip.MOV"))
	assert.Equal(t, "video", Category("video/quicktime"))
	assert.Equal(t, "image", Category("image/png"))
	assert.Equal(t, "document", Category("application/pdf"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	m, err := store.Upload(ctx, pngHeader, "photo.png")
	require.NoError(t, err)
	assert.Equal(t, "photo.png", m.FileName)
	assert.True(t, store.Has(m.FileID))

	assert.True(t, store.Delete(ctx, m.FileID, m.FileName))
	assert.False(t, store.Delete(ctx, m.FileID, m.FileName))
	assert.True(t, store.Delete(ctx, DefaultFileID, "anything"))
}

func TestNewStoreWithoutCredentials(t *testing.T) {
	store, err := NewStore(&config.CloudinaryConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
}
