package photostore

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// sniffLen matches the header size mimetype inspects by default.
const sniffLen = 3072

var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// NewFileName returns a collision-free name that keeps the original
// extension in lower case.
func NewFileName(original string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(original))
}

// Sniffed is the result of inspecting an upload.
type Sniffed struct {
	ContentType string
	Accepted    bool
	// Body replays the inspected header followed by the rest of the stream.
	Body io.Reader
}

// Sniff detects the content type from the leading bytes of r rather than
// trusting the client-supplied header.
func Sniff(r io.Reader) (Sniffed, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Sniffed{}, err
	}
	head = head[:n]
	mt := mimetype.Detect(head)
	return Sniffed{
		ContentType: mt.String(),
		Accepted:    isAccepted(mt),
		Body:        io.MultiReader(bytes.NewReader(head), r),
	}, nil
}

func isAccepted(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if accepted[m.String()] {
			return true
		}
	}
	return false
}
