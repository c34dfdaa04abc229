package gpu

// GL enum values used by the renderer. Values match the Khronos registry.
const (
	Framebuffer         uint32 = 0x8D40
	Renderbuffer        uint32 = 0x8D41
	ColorAttachment0    uint32 = 0x8CE0
	DepthAttachment     uint32 = 0x8D00
	FramebufferComplete uint32 = 0x8CD5

	FramebufferIncompleteAttachment        uint32 = 0x8CD6
	FramebufferIncompleteMissingAttachment uint32 = 0x8CD7
	FramebufferUnsupported                 uint32 = 0x8CDD

	Texture2D               uint32 = 0x0DE1
	Texture3D               uint32 = 0x806F
	Texture2DArray          uint32 = 0x8C1A
	TextureCubeMap          uint32 = 0x8513
	TextureCubeMapPositiveX uint32 = 0x8515
	Texture0                uint32 = 0x84C0

	TextureMinFilter uint32 = 0x2801
	TextureMagFilter uint32 = 0x2800
	TextureWrapS     uint32 = 0x2802
	TextureWrapT     uint32 = 0x2803
	TextureWrapR     uint32 = 0x8072
	Nearest          int32  = 0x2600
	ClampToEdge      int32  = 0x812F

	RGBA             uint32 = 0x1908
	RGBA8            int32  = 0x8058
	DepthComponent   uint32 = 0x1902
	DepthComponent16 uint32 = 0x81A5
	UnsignedByte     uint32 = 0x1401
	UnsignedInt      uint32 = 0x1405
	Float            uint32 = 0x1406

	ColorBufferBit uint32 = 0x00004000
	DepthTest      uint32 = 0x0B71
	CullFace       uint32 = 0x0B44
	DepthBufferBit uint32 = 0x00000100

	ArrayBuffer        uint32 = 0x8892
	ElementArrayBuffer uint32 = 0x8893
	StaticDraw         uint32 = 0x88E4
	DynamicDraw        uint32 = 0x88E8
	Triangles          uint32 = 0x0004

	VertexShader   uint32 = 0x8B31
	FragmentShader uint32 = 0x8B30
)

// CubeFace returns the texture target of cube map face i (0..5: +X,-X,+Y,-Y,+Z,-Z).
func CubeFace(i int) uint32 {
	return TextureCubeMapPositiveX + uint32(i)
}
