package domain

// RawDocument represents opaque bytes read from a file or an upload.
// It is the input to a normaliser.
type RawDocument struct {
	// URI is the original location (file path or upload name).
	URI string

	// MIMEType is the content type, if known.
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
