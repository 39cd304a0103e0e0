package errors

// maxIdentifierLen bounds the identifier text handed to hosts. The
// terminating NUL is one byte on top.
const maxIdentifierLen = 25

// kinds lists the transform kinds in their stable numeric order.
var kinds = []Code{
	ErrCodeOutOfMemory,
	ErrCodeNoSpaceLeft,
	ErrCodeWrongHeader,
	ErrCodeUnknownBlock,
	ErrCodeUnknownExtensionBlock,
	ErrCodeMissingColorTable,
	ErrCodeBlockAndStreamEndMismatch,
}

// messages is the host-facing lookup table from kind to readable text.
var messages = map[Code]string{
	ErrCodeOutOfMemory:               "Out of memory",
	ErrCodeNoSpaceLeft:               "Output buffer is too small",
	ErrCodeWrongHeader:               "Not a GIF89a file",
	ErrCodeUnknownBlock:              "Unknown or truncated block in GIF stream",
	ErrCodeUnknownExtensionBlock:     "Unknown extension block in GIF stream",
	ErrCodeMissingColorTable:         "Image has no local or global color table",
	ErrCodeBlockAndStreamEndMismatch: "Image data runs past the end of the file",
}

// identifiers holds one static NUL-terminated copy per kind, built once.
var identifiers = func() map[Code][]byte {
	m := make(map[Code][]byte, len(kinds))
	for _, k := range kinds {
		if len(k) > maxIdentifierLen {
			panic("errors: kind identifier too long: " + string(k))
		}
		b := make([]byte, len(k)+1)
		copy(b, k)
		m[k] = b
	}
	return m
}()

// Kinds returns the closed set of transform kinds.
func Kinds() []Code {
	out := make([]Code, len(kinds))
	copy(out, kinds)
	return out
}

// IsKind reports whether code belongs to the closed transform vocabulary.
func IsKind(code Code) bool {
	_, ok := messages[code]
	return ok
}

// Identifier returns the static NUL-terminated ASCII identifier for code.
// Codes outside the kind vocabulary map to UnknownBlock, the generic
// structural failure. The returned slice must not be modified.
func Identifier(code Code) []byte {
	if b, ok := identifiers[code]; ok {
		return b
	}
	return identifiers[ErrCodeUnknownBlock]
}

// KindOf extracts the transform kind carried by err, defaulting to
// UnknownBlock for errors that carry none.
func KindOf(err error) Code {
	if code := GetCode(err); IsKind(code) {
		return code
	}
	return ErrCodeUnknownBlock
}

// MessageFor maps an identifier, with or without its trailing NUL, to the
// human-readable message. Unknown identifiers yield a generic message.
func MessageFor(identifier []byte) string {
	if n := len(identifier); n > 0 && identifier[n-1] == 0 {
		identifier = identifier[:n-1]
	}
	if msg, ok := messages[Code(identifier)]; ok {
		return msg
	}
	return "Unknown error"
}
