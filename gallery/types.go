package gallery

// Item is one media entry as published by the event API. Items are immutable;
// the gallery keeps them in arrival order.
type Item struct {
	Filename string `json:"filename"`
	ThumbURL string `json:"thumb_url"`
	FullURL  string `json:"full_url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// PackMode selects how ComputeLayout distributes items across columns.
type PackMode int

const (
	// PackMasonry keeps intrinsic aspect ratios and always fills the
	// currently shortest column.
	PackMasonry PackMode = iota
	// PackGrid places square cells row by row.
	PackGrid
)

// Config fixes the engine tuning at construction time. The zero value is
// usable; withDefaults fills in anything left unset.
type Config struct {
	MinColumns   int
	MaxColumns   int
	Columns      int // starting column count
	Gap          float32
	RenderBuffer float32 // extra margin kept mounted beyond the viewport
	Mode         PackMode
}

const (
	defaultMinColumns   = 2
	defaultMaxColumns   = 10
	defaultColumns      = 4
	defaultGap          = float32(6)
	defaultRenderBuffer = float32(300)
)

// Aspect ratio used when an item arrives without intrinsic dimensions
// (typically videos the server could not probe).
const (
	defaultAspectW = 800
	defaultAspectH = 600
)

func (c Config) withDefaults() Config {
	if c.MinColumns < 1 {
		c.MinColumns = defaultMinColumns
	}
	if c.MaxColumns < c.MinColumns {
		c.MaxColumns = defaultMaxColumns
		if c.MaxColumns < c.MinColumns {
			c.MaxColumns = c.MinColumns
		}
	}
	if c.Columns < c.MinColumns {
		c.Columns = defaultColumns
	}
	if c.Columns < c.MinColumns {
		c.Columns = c.MinColumns
	}
	if c.Columns > c.MaxColumns {
		c.Columns = c.MaxColumns
	}
	if c.Gap <= 0 {
		c.Gap = defaultGap
	}
	if c.RenderBuffer <= 0 {
		c.RenderBuffer = defaultRenderBuffer
	}
	return c
}

func clampColumns(cols, min, max int) int {
	if cols < min {
		return min
	}
	if cols > max {
		return max
	}
	return cols
}
