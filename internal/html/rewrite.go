package html

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

var (
	attrRegex   = regexp.MustCompile(`(\s(?:src|href|srcset|data-src|poster)=)(["'])([^"']*)(["'])`)
	cssURLRegex = regexp.MustCompile(`(url\(\s*)(["']?)([^"')]+)(["']?\s*\))`)
)

// Rewriter points image references in HTML and CSS files at their optimized versions.
type Rewriter struct {
	root   string
	refs   map[string]string
	logger zerolog.Logger
}

type Stats struct {
	File         string
	Replacements int
}

// NewRewriter builds a rewriter for files under root. Keys of refs are source
// paths relative to root; values are either root-relative output paths or
// absolute URLs.
func NewRewriter(root string, logger zerolog.Logger) *Rewriter {
	return &Rewriter{
		root:   root,
		refs:   make(map[string]string),
		logger: logger,
	}
}

// Add records that source was optimized into target.
func (r *Rewriter) Add(source, target string) {
	r.refs[normalize(source)] = target
}

func (r *Rewriter) Len() int { return len(r.refs) }

// RewriteFile rewrites a file (relative to root) in place.
func (r *Rewriter) RewriteFile(name string) (Stats, error) {
	stats := Stats{File: name}

	filePath := filepath.Join(r.root, name)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return stats, fmt.Errorf("failed to read %s: %w", name, err)
	}

	out, n := r.Rewrite(string(data), path.Dir(filepath.ToSlash(name)))
	stats.Replacements = n
	if n == 0 {
		return stats, nil
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return stats, err
	}
	if err := os.WriteFile(filePath, []byte(out), info.Mode().Perm()); err != nil {
		return stats, fmt.Errorf("failed to write %s: %w", name, err)
	}

	r.logger.Info().Str("file", name).Int("replacements", n).Msg("rewrote image references")
	return stats, nil
}

// Rewrite replaces references in content. baseDir is the document's directory
// relative to root and is used to resolve relative references.
func (r *Rewriter) Rewrite(content, baseDir string) (string, int) {
	count := 0

	replace := func(re *regexp.Regexp, s string) string {
		return re.ReplaceAllStringFunc(s, func(match string) string {
			m := re.FindStringSubmatch(match)
			value, n := r.rewriteValue(m[3], baseDir, m[1])
			if n == 0 {
				return match
			}
			count += n
			return m[1] + m[2] + value + m[4]
		})
	}

	content = replace(attrRegex, content)
	content = replace(cssURLRegex, content)
	return content, count
}

func (r *Rewriter) rewriteValue(value, baseDir, attr string) (string, int) {
	if !strings.Contains(attr, "srcset") {
		ref, ok := r.resolve(value, baseDir)
		if !ok {
			return value, 0
		}
		return ref, 1
	}

	// srcset: "a.jpg 1x, b.jpg 2x"
	count := 0
	candidates := strings.Split(value, ",")
	for i, c := range candidates {
		fields := strings.Fields(c)
		if len(fields) == 0 {
			continue
		}
		if ref, ok := r.resolve(fields[0], baseDir); ok {
			fields[0] = ref
			count++
		}
		candidates[i] = strings.Join(fields, " ")
	}
	if count == 0 {
		return value, 0
	}
	return strings.Join(candidates, ", "), count
}

// resolve maps one reference to its replacement, if it names a processed source.
func (r *Rewriter) resolve(ref, baseDir string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.Contains(ref, "://") || strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "//") {
		return "", false
	}

	clean, suffix := ref, ""
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		clean, suffix = ref[:i], ref[i:]
	}

	escaped := strings.Contains(clean, "%")
	decoded, err := url.PathUnescape(clean)
	if err != nil {
		return "", false
	}

	var key string
	if strings.HasPrefix(decoded, "/") {
		key = normalize(decoded)
	} else {
		key = normalize(path.Join(baseDir, decoded))
	}

	target, ok := r.refs[key]
	if !ok {
		return "", false
	}
	if strings.Contains(target, "://") {
		return target, true
	}

	rel := relativeTo(baseDir, normalize(target))
	if strings.HasPrefix(decoded, "/") {
		rel = "/" + normalize(target)
	}
	if escaped || strings.Contains(rel, " ") {
		rel = (&url.URL{Path: rel}).EscapedPath()
	}
	return rel + suffix, true
}

func normalize(p string) string {
	return strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "/")
}

func relativeTo(baseDir, target string) string {
	if baseDir == "." || baseDir == "" {
		return target
	}
	rel, err := filepath.Rel(filepath.FromSlash(baseDir), filepath.FromSlash(target))
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}
