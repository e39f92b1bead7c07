package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrDuplicateFolder = errors.New("duplicate folder rule")
	ErrInvalidQuality  = errors.New("quality out of range")
)

// Size is a bounding box. Images are scaled down to fit inside it.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Category is a named preset. A nil MaxSize keeps the original dimensions.
type Category struct {
	Quality int
	MaxSize *Size
}

type FolderRule struct {
	Dir      string
	Category string
}

type FileRule struct {
	Source   string
	Category string
	Dest     string
}

type Rules struct {
	Categories map[string]Category
	Folders    []FolderRule
	Files      []FileRule
}

func DefaultRules() Rules {
	return Rules{
		Categories: map[string]Category{
			"hero":        {Quality: 75, MaxSize: &Size{1920, 1080}},
			"carousel":    {Quality: 75, MaxSize: &Size{1400, 800}},
			"experiences": {Quality: 80, MaxSize: &Size{1200, 700}},
			"azores":      {Quality: 75, MaxSize: &Size{800, 600}},
			"hosts":       {Quality: 80, MaxSize: &Size{800, 1000}},
			"logos":       {Quality: 100}, // unused by the defaults, kept for externally supplied rules
		},
		Folders: []FolderRule{
			{Dir: "Imagenes/Carrucel", Category: "carousel"},
			{Dir: "Imagenes/Patagonia", Category: "experiences"},
			{Dir: "Imagenes/Azores", Category: "azores"},
		},
		Files: []FileRule{
			{Source: "Imagenes/Portada.jpg", Category: "hero", Dest: "Imagenes/Portada-optimized.webp"},
			{Source: "Imagenes/Host.jpg", Category: "hosts", Dest: "Imagenes/Host-optimized.webp"},
			{Source: "Imagenes/Host2.jpg", Category: "hosts", Dest: "Imagenes/Host2-optimized.webp"},
			{Source: "Imagenes/Foto grupal.jpeg", Category: "hosts", Dest: "Imagenes/Foto-grupal-optimized.webp"},
		},
	}
}

// Category returns the preset for name. Callers are expected to have run Validate.
func (r Rules) Category(name string) (Category, error) {
	c, ok := r.Categories[name]
	if !ok {
		return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return c, nil
}

// Validate checks that every referenced category exists, that qualities are
// within 1..100 and that no folder appears twice.
func (r Rules) Validate() error {
	var errs []error

	for name, c := range r.Categories {
		if c.Quality < 1 || c.Quality > 100 {
			errs = append(errs, fmt.Errorf("%w: category %q has quality %d", ErrInvalidQuality, name, c.Quality))
		}
		if c.MaxSize != nil && (c.MaxSize.Width <= 0 || c.MaxSize.Height <= 0) {
			errs = append(errs, fmt.Errorf("category %q has invalid max size %s", name, c.MaxSize))
		}
	}

	seen := make(map[string]string, len(r.Folders))
	for _, f := range r.Folders {
		if _, ok := r.Categories[f.Category]; !ok {
			errs = append(errs, fmt.Errorf("%w: %q referenced by folder %s", ErrUnknownCategory, f.Category, f.Dir))
		}
		key := filepath.Clean(f.Dir)
		if prev, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("%w: %s mapped to both %q and %q", ErrDuplicateFolder, f.Dir, prev, f.Category))
			continue
		}
		seen[key] = f.Category
	}

	for _, f := range r.Files {
		if _, ok := r.Categories[f.Category]; !ok {
			errs = append(errs, fmt.Errorf("%w: %q referenced by file %s", ErrUnknownCategory, f.Category, f.Source))
		}
		if f.Dest == "" {
			errs = append(errs, fmt.Errorf("file %s has no destination", f.Source))
		}
	}

	return errors.Join(errs...)
}
