// Package filetype maps file names to the categories files are grouped by.
package filetype

import (
	"path"
	"strings"
)

// Categories stored in a file document's type attribute.
const (
	Document = "document"
	Image    = "image"
	Video    = "video"
	Audio    = "audio"
	Other    = "other"
)

// All lists the categories in display order.
var All = []string{Document, Image, Video, Audio, Other}

var byExtension = func() map[string]string {
	m := map[string]string{}
	add := func(category string, exts ...string) {
		for _, e := range exts {
			m[e] = category
		}
	}
	add(Document, "pdf", "doc", "docx", "txt", "xls", "xlsx", "csv", "rtf", "ods", "ppt", "odp",
		"md", "html", "htm", "epub", "pages", "fig", "psd", "ai", "indd", "xd", "sketch", "afdesign", "afphoto")
	add(Image, "jpg", "jpeg", "png", "gif", "bmp", "svg", "webp")
	add(Video, "mp4", "avi", "mov", "mkv", "webm")
	add(Audio, "mp3", "wav", "ogg", "flac")
	return m
}()

// Classify returns the category and lower-cased extension (without the dot)
// of name. Names without an extension are Other with an empty extension.
func Classify(name string) (category, extension string) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext == "" {
		return Other, ""
	}
	if c, ok := byExtension[ext]; ok {
		return c, ext
	}
	return Other, ext
}

// Sections group categories the way the file browser pages do.
const (
	SectionDocuments = "documents"
	SectionImages    = "images"
	SectionMedia     = "media"
	SectionOthers    = "others"
)

// Sections lists the browser sections in display order.
var Sections = []string{SectionDocuments, SectionImages, SectionMedia, SectionOthers}

// TypesForSection returns the categories shown on a section page, or nil for
// an unknown section (no type filter).
func TypesForSection(section string) []string {
	switch strings.ToLower(section) {
	case SectionDocuments:
		return []string{Document}
	case SectionImages:
		return []string{Image}
	case SectionMedia:
		return []string{Video, Audio}
	case SectionOthers:
		return []string{Other}
	default:
		return nil
	}
}

// IsCategory reports whether c is a known category.
func IsCategory(c string) bool {
	for _, v := range All {
		if v == c {
			return true
		}
	}
	return false
}
