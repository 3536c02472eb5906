package scene

// Texture holds an embedded image blob in its original encoded form
// (PNG, JPEG, ...). The scene owns the bytes; they are detached from
// the source asset during import.
type Texture struct {
	Data []byte

	// FormatHint is derived from the image MIME type: the subtype
	// truncated to at most three characters, with "jpeg" rewritten to
	// "jpg". Empty when the source carried no MIME type.
	FormatHint string
}
