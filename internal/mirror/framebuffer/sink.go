package framebuffer

// MaxDimension is the largest frame width or height a sink accepts.
const MaxDimension = 0xFFFF

// Descriptor describes the stream a producer is about to push.
type Descriptor struct {
	Width  int
	Height int
	Format PixelFormat
}

// Sink receives frames from a producer. Open is called once before the first
// Push and Close once after the last one, all from the producer goroutine.
type Sink interface {
	Open(Descriptor) error
	Close()
	Push(*Frame) error
}
