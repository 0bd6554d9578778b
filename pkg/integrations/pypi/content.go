package pypi

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"github.com/matzehuels/simpleindex/pkg/errors"
	"github.com/matzehuels/simpleindex/pkg/simple"
)

// Format is the representation an index served.
type Format int

const (
	FormatJSON Format = iota
	FormatHTML
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "html"
}

// UnsupportedMediaTypeError reports a response whose Content-Type is not one
// of the Simple API representations.
type UnsupportedMediaTypeError struct {
	ContentType string
}

func (e *UnsupportedMediaTypeError) Error() string {
	if e.ContentType == "" {
		return "unsupported media type: response has no Content-Type"
	}
	return fmt.Sprintf("unsupported media type %q", e.ContentType)
}

// Code returns [errors.ErrCodeUnsupportedMediaType].
func (e *UnsupportedMediaTypeError) Code() errors.Code { return errors.ErrCodeUnsupportedMediaType }

// BaseContentType returns the lowercase media type without parameters.
func BaseContentType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// DetectFormat maps a Content-Type header to the decoder that handles it.
func DetectFormat(contentType string) (Format, error) {
	switch BaseContentType(contentType) {
	case simple.MediaTypeJSONV1, simple.MediaTypeJSONLatest:
		return FormatJSON, nil
	case simple.MediaTypeHTMLV1, simple.MediaTypeHTML:
		return FormatHTML, nil
	}
	return 0, &UnsupportedMediaTypeError{ContentType: contentType}
}

// htmlText decodes an HTML body to UTF-8. An explicit charset parameter
// wins; otherwise valid UTF-8 is taken as is and anything else goes through
// the document's own declaration or the HTML5 default.
func htmlText(body []byte, contentType string) (string, error) {
	var r io.Reader
	_, params, _ := mime.ParseMediaType(contentType)
	switch label := strings.ToLower(params["charset"]); {
	case label != "" && label != "utf-8" && label != "utf8":
		cr, err := charset.NewReaderLabel(label, bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		r = cr
	case utf8.Valid(body):
		return string(body), nil
	default:
		cr, err := charset.NewReader(bytes.NewReader(body), contentType)
		if err != nil {
			return "", err
		}
		r = cr
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(text), nil
}
