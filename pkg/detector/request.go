package detector

import "strings"

// Kind tags a Request.
type Kind int

const (
	KindURL Kind = iota + 1
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Request is either an image URL or an uploaded binary.
type Request struct {
	Kind     Kind
	URL      string
	Data     []byte
	Filename string // optional, binary only
}

// URLRequest builds a request for a remote image.
func URLRequest(url string) Request {
	return Request{Kind: KindURL, URL: url}
}

// BinaryRequest builds a request for uploaded bytes.
func BinaryRequest(data []byte, filename string) Request {
	return Request{Kind: KindBinary, Data: data, Filename: filename}
}

func (r Request) validate() error {
	switch r.Kind {
	case KindURL:
		if strings.TrimSpace(r.URL) == "" {
			return ErrEmptyURL
		}
	case KindBinary:
		if len(r.Data) == 0 {
			return ErrEmptyBinary
		}
	default:
		return ErrUnknownKind
	}
	return nil
}
