// Package media handles markdown image markup in model output: promoting
// bare URLs, extracting image references for structured responses, and
// rewriting internal object-storage hosts to their public form.
package media

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	markdownImagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	imageURLPattern      = regexp.MustCompile(`(?i)https?://[^\s<>"()]+(?:\.jpg|\.jpeg|\.png|\.gif|\.webp|\.svg)`)
	bareURLPattern       = regexp.MustCompile(`https?://[^\s<>")]+`)
)

// Image is one extracted image reference.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// URLRewriter maps the object store's internal host:port to the
// public-facing one. Zero value is a no-op rewriter.
type URLRewriter struct {
	InternalHost string
	PublicHost   string
}

// Rewrite replaces the internal host:port in url with the public one.
func (r URLRewriter) Rewrite(url string) string {
	if url == "" || r.InternalHost == "" || r.PublicHost == "" {
		return url
	}
	return strings.ReplaceAll(url, r.InternalHost, r.PublicHost)
}

// MarkdownImage renders a single markdown image reference.
func MarkdownImage(url, alt string) string {
	if alt == "" {
		alt = "Image"
	}
	return fmt.Sprintf("![%s](%s)", alt, url)
}

// PromoteBareURLs converts every URL that is not already part of markdown
// image markup into an explicit ![Image N](url) reference, so downstream
// synthesis treats all media uniformly. URLs inside existing markup are
// left byte-identical.
func PromoteBareURLs(text string) string {
	spans := markdownImagePattern.FindAllStringIndex(text, -1)

	var out strings.Builder
	label := 0
	prev := 0
	for _, span := range append(spans, []int{len(text), len(text)}) {
		segment := text[prev:span[0]]
		out.WriteString(bareURLPattern.ReplaceAllStringFunc(segment, func(url string) string {
			trimmed := strings.TrimRight(url, ".,;:!?")
			label++
			return MarkdownImage(trimmed, fmt.Sprintf("Image %d", label)) + url[len(trimmed):]
		}))
		if span[0] < len(text) {
			out.WriteString(text[span[0]:span[1]])
		}
		prev = span[1]
	}
	return out.String()
}

// ExtractImages pulls image references out of synthesized text. Markdown
// references come first, then bare URLs with an image extension found in
// the text with markdown markup removed. URLs are rewritten through rw and
// de-duplicated by URL.
func ExtractImages(text string, rw URLRewriter) []Image {
	images := []Image{}
	seen := make(map[string]bool)

	for _, m := range markdownImagePattern.FindAllStringSubmatch(text, -1) {
		alt, url := m[1], m[2]
		url = rw.Rewrite(url)
		if seen[url] {
			continue
		}
		if alt == "" {
			alt = "Image"
		}
		images = append(images, Image{URL: url, Alt: alt})
		seen[url] = true
	}

	stripped := markdownImagePattern.ReplaceAllString(text, "")
	for _, url := range imageURLPattern.FindAllString(stripped, -1) {
		url = rw.Rewrite(url)
		if seen[url] {
			continue
		}
		images = append(images, Image{URL: url, Alt: "Image"})
		seen[url] = true
	}

	return images
}
