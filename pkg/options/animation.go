package options

import (
	"fmt"
	"strconv"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// Sharding selects one slice of the animation frames.
type Sharding struct {
	Shard int `json:"shard" yaml:"shard" mapstructure:"shard"`
	Count int `json:"count" yaml:"count" mapstructure:"count"`
}

// AnimOptions is an image configuration plus the animation settings.
type AnimOptions struct {
	Image    ImageOptions `json:"image" yaml:"image" mapstructure:"image"`
	Frames   int          `json:"frames" yaml:"frames" mapstructure:"frames"`
	DelayMs  int          `json:"delay_ms" yaml:"delay_ms" mapstructure:"delay_ms"`
	Sharding *Sharding    `json:"sharding,omitempty" yaml:"sharding,omitempty" mapstructure:"sharding"`
}

// DefaultAnimOptions renders 50 frames shown 100ms each.
func DefaultAnimOptions() AnimOptions {
	return AnimOptions{Frames: 50, DelayMs: 100}
}

// WithShard returns a copy restricted to shard i of n.
func (o AnimOptions) WithShard(i, n int) AnimOptions {
	o.Sharding = &Sharding{Shard: i, Count: n}
	return o
}

// Flags renders the image flags followed by the animation flags.
func (o AnimOptions) Flags() string {
	var b flagBuilder
	b.raw(o.Image.Flags())
	b.add("--animate", strconv.Itoa(o.Frames))
	if o.Sharding != nil {
		b.add("--animate-sharding", strconv.Itoa(o.Sharding.Shard)+"/"+strconv.Itoa(o.Sharding.Count))
	}
	return b.String()
}

// Validate checks the image part, the frame count and the shard bounds.
func (o AnimOptions) Validate() error {
	if err := o.Image.Validate(); err != nil {
		return err
	}
	if o.Frames <= 0 {
		return fmt.Errorf("%w: frame count must be positive, got %d", domain.ErrInvalidInput, o.Frames)
	}
	if o.DelayMs < 0 {
		return fmt.Errorf("%w: frame delay must not be negative", domain.ErrInvalidInput)
	}
	if s := o.Sharding; s != nil {
		if s.Count <= 0 || s.Shard < 1 || s.Shard > s.Count {
			return fmt.Errorf("%w: invalid shard %d/%d", domain.ErrInvalidInput, s.Shard, s.Count)
		}
	}
	return nil
}
