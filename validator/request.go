package validator

// ImageFile is a decoded upload: its raw bytes and declared MIME type.
type ImageFile struct {
	Bytes []byte
	MIME  string
}

// Request is a validated Pipeline Request: the Orchestrator only ever
// sees one of these, never a raw *http.Request.
type Request struct {
	BaseImage         ImageFile
	ReferenceImages   []ImageFile
	UserInstructions  string // already trimmed; empty means absent
	AspectRatio       string // already validated against the enum
}
