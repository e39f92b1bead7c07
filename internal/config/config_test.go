package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesValid(t *testing.T) {
	require.NoError(t, DefaultRules().Validate())
}

func TestDefaultRulesLogosKeepSize(t *testing.T) {
	c, err := DefaultRules().Category("logos")
	require.NoError(t, err)
	assert.Nil(t, c.MaxSize)
	assert.Equal(t, 100, c.Quality)
}

func TestValidateRejectsDuplicateFolder(t *testing.T) {
	r := DefaultRules()
	r.Folders = append(r.Folders,
		FolderRule{Dir: "Imagenes", Category: "hero"},
		FolderRule{Dir: "Imagenes/", Category: "hosts"},
	)

	err := r.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateFolder))
}

func TestValidateRejectsUnknownCategory(t *testing.T) {
	tests := []struct {
		name  string
		rules Rules
	}{
		{
			name: "folder",
			rules: Rules{
				Categories: map[string]Category{"hero": {Quality: 75}},
				Folders:    []FolderRule{{Dir: "a", Category: "banner"}},
			},
		},
		{
			name: "file",
			rules: Rules{
				Categories: map[string]Category{"hero": {Quality: 75}},
				Files:      []FileRule{{Source: "a.jpg", Category: "banner", Dest: "a.webp"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rules.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnknownCategory))
		})
	}
}

func TestValidateRejectsBadQuality(t *testing.T) {
	r := Rules{Categories: map[string]Category{"hero": {Quality: 0}, "logos": {Quality: 101}}}
	err := r.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidQuality))
}

func TestCategoryLookup(t *testing.T) {
	r := DefaultRules()

	c, err := r.Category("azores")
	require.NoError(t, err)
	assert.Equal(t, 75, c.Quality)
	assert.Equal(t, &Size{800, 600}, c.MaxSize)

	_, err = r.Category("missing")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IMGOPT_ROOT", "/srv/site")
	t.Setenv("IMGOPT_ENCODER", "vips")
	t.Setenv("IMGOPT_JPEG_FALLBACK", "true")
	t.Setenv("JPEG_QUALITY", "not-a-number")
	t.Setenv("REWRITE_HTML", " index.html, ,about.html")
	t.Setenv("R2_BUCKET", "assets")
	t.Setenv("R2_ACCESS_KEY_ID", "")

	cfg := Load()
	assert.Equal(t, "/srv/site", cfg.Root)
	assert.Equal(t, "vips", cfg.Encoder)
	assert.True(t, cfg.JPEGFallback)
	assert.Equal(t, 84, cfg.JPEGQuality)
	assert.Equal(t, []string{"index.html", "about.html"}, cfg.RewriteHTML)
	assert.False(t, cfg.PublishToR2())
	assert.NoError(t, cfg.Rules.Validate())
}
