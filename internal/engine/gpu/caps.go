package gpu

// Caps describes what a context can do beyond the common baseline.
type Caps struct {
	// CubeFaceAttachment allows attaching a single cube map face as a color
	// attachment, so one framebuffer serves all six faces.
	CubeFaceAttachment bool
	// ArrayTextures exposes the 2D-array and 3D texture targets.
	ArrayTextures bool
	// FloatReadback allows reading depth attachments back as floats.
	FloatReadback bool
}

// Modern is the capability set of a full desktop/ES3-class context.
var Modern = Caps{
	CubeFaceAttachment: true,
	ArrayTextures:      true,
	FloatReadback:      true,
}

// Legacy is the ES2-class baseline.
var Legacy = Caps{}

// Name returns a short label for logs.
func (c Caps) Name() string {
	if c == Modern {
		return "modern"
	}
	if c == Legacy {
		return "legacy"
	}
	return "custom"
}
