package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Builds the release landing page for a goreleaser dist/ directory: a short
// hero blurb, the per-platform download table, then the rendered README.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <dist-dir>\n", os.Args[0])
		os.Exit(1)
	}

	distDir := os.Args[1]
	indexPath := filepath.Join(distDir, "index.html")

	version := detectVersionFromDist(distDir)

	f, err := os.Create(indexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating index.html: %v\n", err)
		os.Exit(1)
	}

	writeHeader(f)
	writeHero(f, version)
	if _, err := io.WriteString(f, downloadsSection(distDir, version)); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error writing downloads: %v\n", err)
		os.Exit(1)
	}
	if _, err := f.Write(renderReadme()); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error writing README content: %v\n", err)
		os.Exit(1)
	}
	writeFooter(f)
	f.Close()

	fmt.Fprintf(os.Stderr, "Generated %s\n", indexPath)
}

// renderReadme converts README.md to HTML with the usual extensions. A
// missing README is tolerated so snapshot builds still get a page.
func renderReadme() []byte {
	src, err := os.ReadFile("README.md")
	if err != nil {
		return nil
	}

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse(src)

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	return markdown.Render(doc, renderer)
}

// detectVersionFromDist pulls the version out of an archive name such as
// winnow_0.2.0_Linux_x86_64.tar.gz.
func detectVersionFromDist(distDir string) string {
	files, err := os.ReadDir(distDir)
	if err != nil {
		return "unknown"
	}

	re := regexp.MustCompile(`^winnow_([^_]+(?:-[^_]+)*)_(?:Darwin|Linux|Windows)_(?:arm64|x86_64)\.(?:tar\.gz|zip)$`)

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		matches := re.FindStringSubmatch(file.Name())
		if len(matches) >= 2 {
			return matches[1]
		}
	}
	return "unknown"
}

type platformArchive struct {
	Name    string
	Archive string
}

// archivePlatforms maps goreleaser archive names to display rows, keyed so
// the table sorts mac, linux, windows.
var archivePlatforms = []struct {
	needle  string
	alt     string
	key     string
	display string
}{
	{"Darwin_arm64", "darwin_arm64", "1-darwin-arm64", "macOS (Apple Silicon)"},
	{"Darwin_x86_64", "darwin_amd64", "1-darwin-amd64", "macOS (Intel)"},
	{"Linux_arm64", "linux_arm64", "2-linux-arm64", "Linux (ARM64)"},
	{"Linux_x86_64", "linux_amd64", "2-linux-amd64", "Linux (x86_64)"},
	{"Windows_arm64", "windows_arm64", "3-windows-arm64", "Windows (ARM64)"},
	{"Windows_x86_64", "windows_amd64", "3-windows-amd64", "Windows (x86_64)"},
}

// downloadsSection renders the download table for every archive in dist/,
// plus a link to the checksum file when goreleaser produced one.
func downloadsSection(distDir, version string) string {
	var sb strings.Builder

	sb.WriteString("  <section class=\"downloads\">\n")
	sb.WriteString(fmt.Sprintf("    <h2 id=\"downloads\">Downloads &middot; %s</h2>\n", version))
	sb.WriteString("    <table class=\"download-table\">\n")

	files, err := os.ReadDir(distDir)
	if err != nil {
		sb.WriteString("    </table>\n  </section>\n")
		return sb.String()
	}

	platforms := make(map[string]*platformArchive)
	checksums := ""

	for _, file := range files {
		name := file.Name()
		if strings.Contains(name, "checksums") && strings.HasSuffix(name, ".txt") {
			checksums = name
			continue
		}
		if !strings.HasSuffix(name, ".tar.gz") && !strings.HasSuffix(name, ".zip") {
			continue
		}
		for _, p := range archivePlatforms {
			if strings.Contains(name, p.needle) || strings.Contains(name, p.alt) {
				if platforms[p.key] == nil {
					platforms[p.key] = &platformArchive{Name: p.display, Archive: name}
				}
				break
			}
		}
	}

	keys := make([]string, 0, len(platforms))
	for k := range platforms {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		plat := platforms[key]
		// index.html sits next to the archives, so a bare filename works.
		sb.WriteString(fmt.Sprintf("      <tr><td class=\"platform-name\">%s</td><td><a href=\"%s\">%s</a></td></tr>\n",
			plat.Name, plat.Archive, plat.Archive))
	}

	sb.WriteString("    </table>\n")
	if checksums != "" {
		sb.WriteString(fmt.Sprintf("    <p class=\"checksums\">Verify with <a href=\"%s\">%s</a>.</p>\n", checksums, checksums))
	}
	sb.WriteString(`    <p>Unpack and drop the binary on your PATH:</p>
    <pre><code>tar -xzf winnow_*.tar.gz &amp;&amp; sudo install winnow /usr/local/bin/</code></pre>
    <p>On Windows, extract the .zip and add winnow.exe to your PATH.</p>
  </section>
`)

	return sb.String()
}

func writeHeader(w io.Writer) {
	fmt.Fprint(w, `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>winnow &mdash; filter catalogs from your terminal</title>
  <style>
    body { font-family: system-ui, -apple-system, sans-serif; max-width: 860px; margin: 40px auto; padding: 0 20px; line-height: 1.6; color: #1f2430; }
    h1 { color: #0f766e; margin-bottom: 4px; }
    h2 { color: #115e59; margin-top: 32px; border-bottom: 1px solid #ccfbf1; padding-bottom: 6px; }
    .tagline { color: #475569; font-size: 1.1em; margin-top: 0; }
    .features { margin: 18px 0; padding-left: 0; list-style: none; }
    .features li { padding: 3px 0 3px 26px; position: relative; }
    .features li::before { content: "\2713"; position: absolute; left: 4px; color: #0f766e; }
    code { background: #f0fdfa; padding: 2px 6px; border-radius: 3px; font-family: Monaco, Menlo, monospace; font-size: 0.9em; }
    pre { background: #134e4a; color: #ccfbf1; padding: 14px; border-radius: 6px; overflow-x: auto; }
    pre code { background: none; color: inherit; padding: 0; }
    .downloads { background: #f0fdfa; padding: 18px 20px; border-radius: 8px; margin: 24px 0; border-left: 4px solid #0f766e; }
    .downloads h2 { margin-top: 0; border: none; }
    .download-table { width: 100%; border-collapse: collapse; }
    .download-table td { padding: 6px 8px; border-bottom: 1px solid #ccfbf1; }
    .platform-name { font-weight: 500; color: #115e59; width: 220px; }
    .download-table a { color: #0f766e; text-decoration: none; }
    .download-table a:hover { text-decoration: underline; }
    .checksums { font-size: 0.9em; color: #475569; }
  </style>
</head>
<body>
`)
}

// writeHero prints the lead blurb so the page stands on its own even when
// the README body is absent from the build.
func writeHero(w io.Writer, version string) {
	fmt.Fprintf(w, `  <h1>winnow</h1>
  <p class="tagline">Type a few letters, keep the entries that match. A terminal filter for JSON, YAML, and TOML catalogs. Current release: %s.</p>
  <ul class="features">
    <li>Live narrowing as you type, with a match counter in the status bar</li>
    <li>Auto-detects the entry collection, or point it somewhere with <code>--collection</code></li>
    <li>List, table, and card views; themes; vim, emacs, and function-key maps</li>
    <li>One-shot mode pipes the filtered set out as JSON, YAML, TOML, or CSV</li>
    <li>CEL <code>--select</code> expressions for structured pre-filtering</li>
  </ul>
`, version)
}

func writeFooter(w io.Writer) {
	fmt.Fprint(w, `</body>
</html>
`)
}
