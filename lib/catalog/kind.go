// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import "fmt"

// Kind tags an asset's content format. Kinds are coarse categories,
// not MIME types: a "web" asset may hold HTML, a capture manifest, and
// image children. The catalog service assigns kinds at ingestion; the
// client never infers or rewrites them.
type Kind string

const (
	KindPDF     Kind = "pdf"
	KindCSV     Kind = "csv"
	KindImage   Kind = "image"
	KindVideo   Kind = "video"
	KindAudio   Kind = "audio"
	KindWeb     Kind = "web"
	KindMbox    Kind = "mbox"
	KindArticle Kind = "article"
	KindText    Kind = "text"
)

// kinds lists every valid kind. Order matters only for help text.
var kinds = []Kind{
	KindPDF, KindCSV, KindImage, KindVideo, KindAudio,
	KindWeb, KindMbox, KindArticle, KindText,
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// String returns the kind tag as stored by the catalog.
func (k Kind) String() string { return string(k) }

// ContentType returns the representative MIME type for the kind's
// primary content. Media kinds return their family's common container
// format; this is a display and transfer-encoding default, not a
// promise about the actual blob bytes.
func (k Kind) ContentType() string {
	switch k {
	case KindPDF:
		return "application/pdf"
	case KindCSV:
		return "text/csv"
	case KindImage:
		return "image/png"
	case KindVideo:
		return "video/mp4"
	case KindAudio:
		return "audio/mpeg"
	case KindWeb, KindArticle:
		return "text/html"
	case KindMbox:
		return "application/mbox"
	case KindText:
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// ParseKind parses a kind tag received from the catalog or from user
// input (CLI flags).
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown asset kind: %q", s)
	}
	return k, nil
}
