package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
)

// Body is a request payload. Use JSON or Multipart to build one.
type Body interface {
	encode() (io.Reader, string, error)
}

type jsonBody struct {
	v any
}

// JSON returns a body that serializes v as JSON.
func JSON(v any) Body {
	return jsonBody{v: v}
}

func (b jsonBody) encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

type multipartBody struct {
	field    string
	filename string
	data     []byte
}

// Multipart returns a multipart/form-data body with a single file part.
func Multipart(field, filename string, data []byte) Body {
	return multipartBody{field: field, filename: filename, data: data}
}

func (b multipartBody) encode() (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	part, err := w.CreateFormFile(b.field, b.filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := part.Write(b.data); err != nil {
		return nil, "", fmt.Errorf("failed to write multipart part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
