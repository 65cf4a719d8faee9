package share

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

// DefaultBaseURL hosts the public result pages.
const DefaultBaseURL = "https://results.aiornot.com"

const defaultQRSize = 256

var (
	ErrEmptyResultID    = errors.New("share.empty_result_id")
	ErrGenerateQRCode   = errors.New("share.qrcode_failed")
	ErrInvalidShareBase = errors.New("share.invalid_base_url")
)

// Linker builds share links under a base URL.
type Linker struct {
	base string
}

// New returns a Linker for baseURL; an empty baseURL selects DefaultBaseURL.
func New(baseURL string) *Linker {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Linker{base: strings.TrimRight(baseURL, "/")}
}

// Validate checks that the base URL is absolute.
func (l *Linker) Validate() error {
	u, err := url.Parse(l.base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidShareBase
	}
	return nil
}

// Link returns the public page of resultID.
func (l *Linker) Link(resultID string) (string, error) {
	resultID = strings.TrimSpace(resultID)
	if resultID == "" {
		return "", ErrEmptyResultID
	}
	return l.base + "/aiornot/users/" + url.PathEscape(resultID), nil
}

// QRCode renders the link of resultID as a size x size PNG. size <= 0 uses 256.
func (l *Linker) QRCode(resultID string, size int) ([]byte, error) {
	link, err := l.Link(resultID)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = defaultQRSize
	}
	png, err := skipqrcode.Encode(link, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrGenerateQRCode, err)
	}
	return png, nil
}

// QRCodeDataURI is QRCode encoded as a data URI for <img src>.
func (l *Linker) QRCodeDataURI(resultID string, size int) (string, error) {
	png, err := l.QRCode(resultID, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
