package tokens

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// Counter estimates prompt sizes with tiktoken. Loading the encoding can need
// network access on first use; until it succeeds the count falls back to
// one token per four characters.
type Counter struct {
	model string

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

func NewCounter(model string) *Counter {
	return &Counter{model: model}
}

func (c *Counter) load() {
	c.once.Do(func() {
		if c.model != "" {
			if enc, err := tiktoken.EncodingForModel(c.model); err == nil {
				c.enc = enc
				return
			}
		}
		c.enc, c.err = tiktoken.GetEncoding(defaultEncoding)
	})
}

func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	c.load()
	if c.enc == nil {
		return Estimate(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Err reports why the encoding could not be loaded, if it could not.
func (c *Counter) Err() error {
	c.load()
	return c.err
}

// Estimate is the character based approximation used without an encoding.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	if n < 4 {
		return 1
	}
	return n / 4
}
