package archive

// defaultCapacity is the initial size of buffers created by processors and
// the binary codec.
const defaultCapacity = 64

// Option configures archives, processors and the binary codec.
type Option func(*config)

type config struct {
	capacity int
}

// WithCapacity sets the initial capacity, in bytes, of embedded buffers.
// Negative values are ignored.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.capacity = n
		}
	}
}

func newConfig(opts []Option) config {
	c := config{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
