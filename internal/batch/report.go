package batch

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepxperience/imgopt/internal/config"
	"github.com/deepxperience/imgopt/internal/html"
	"github.com/deepxperience/imgopt/internal/imageproc"
)

var (
	heavyRule = strings.Repeat("=", 60)
	lightRule = strings.Repeat("-", 60)
)

// Reporter writes the human-readable console trail. It is not meant to be parsed.
type Reporter struct {
	w io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *Reporter) Banner() {
	r.printf("%s\n🖼️  IMAGE OPTIMIZER\n%s\n", heavyRule, heavyRule)
}

func (r *Reporter) FolderHeader(dir, category string, c config.Category) {
	maxSize := "original"
	if c.MaxSize != nil {
		maxSize = c.MaxSize.String()
	}
	r.printf("\n📁 Processing folder: %s\n", dir)
	r.printf("   Category: %s\n", category)
	r.printf("   Quality: %d\n", c.Quality)
	r.printf("   Max size: %s\n", maxSize)
	r.printf("%s\n", lightRule)
}

func (r *Reporter) FolderMissing(dir string) {
	r.printf("⚠️  Folder not found: %s\n", dir)
}

func (r *Reporter) FilesHeader() {
	r.printf("\n📸 Processing specific images...\n%s\n", lightRule)
}

func (r *Reporter) FileMissing(path string) {
	r.printf("⚠️  Not found: %s\n", path)
}

func (r *Reporter) Result(name string, res imageproc.Result) {
	if !res.OK {
		r.printf("❌ Error processing %s: %v\n", name, res.Err)
		return
	}
	r.printf("✅ %s\n", name)
	r.printf("   %s → %s (%.1f%% reduction)\n",
		formatSize(res.OriginalSize), formatSize(res.OptimizedSize), res.ReductionPct)
}

func (r *Reporter) PublishFailed(name string, err error) {
	r.printf("   ⚠️  Upload failed for %s: %v\n", name, err)
}

func (r *Reporter) Published(url string) {
	r.printf("   ☁️  %s\n", url)
}

func (r *Reporter) Rewritten(stats html.Stats) {
	r.printf("🔗 %s: %d reference(s) updated\n", stats.File, stats.Replacements)
}

func (r *Reporter) Summary(s Summary) {
	r.printf("\n%s\n✅ DONE: %d images optimized\n", heavyRule, s.Processed)
	if s.Failed > 0 || s.Skipped > 0 {
		r.printf("   %d failed, %d skipped\n", s.Failed, s.Skipped)
	}
	r.printf("%s\n", heavyRule)
}

func (r *Reporter) NextSteps() {
	r.printf("\n📋 NEXT STEPS:\n")
	r.printf("1. Review the optimized images (they end in -optimized.webp)\n")
	r.printf("2. If they look right, update the references in your HTML\n")
	r.printf("3. Example:\n")
	r.printf("   BEFORE: <img src='Imagenes/Portada.jpg'>\n")
	r.printf("   AFTER:  <img src='Imagenes/Portada-optimized.webp'>\n")
	r.printf("\n💡 TIP: keep the original images as a backup\n")
}

// formatSize renders a byte count the way the per-file lines show it.
func formatSize(n int64) string {
	return fmt.Sprintf("%.1f KB (%d bytes)", float64(n)/1024, n)
}
