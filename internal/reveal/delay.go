package reveal

import (
	"fmt"
	"strings"
	"time"
)

const DefaultSpeed = 15 * time.Millisecond

// DelayModel returns the pause before next is revealed.
type DelayModel interface {
	Delay(next rune) time.Duration
}

type ConstantDelay time.Duration

func (d ConstantDelay) Delay(rune) time.Duration {
	return time.Duration(d)
}

type DelayFunc func(next rune) time.Duration

func (f DelayFunc) Delay(next rune) time.Duration {
	return f(next)
}

// PunctuationDelay paces text like speech: long pauses at sentence ends,
// medium at clause breaks, short at whitespace.
type PunctuationDelay struct {
	Base     time.Duration
	Short    time.Duration
	Medium   time.Duration
	Sentence time.Duration
}

func NewPunctuationDelay(base time.Duration) PunctuationDelay {
	return PunctuationDelay{
		Base:     base,
		Short:    base / 3,
		Medium:   base * 4,
		Sentence: base * 10,
	}
}

func (p PunctuationDelay) Delay(next rune) time.Duration {
	switch next {
	case '.', '!', '?':
		return p.Sentence
	case ',', ';':
		return p.Medium
	case ' ', '\n':
		return p.Short
	default:
		return p.Base
	}
}

// ParseMode turns a reveal mode name into a delay model. The "off" mode
// returns active=false so text is shown at once.
func ParseMode(mode string, speed time.Duration) (model DelayModel, active bool, err error) {
	if speed <= 0 {
		speed = DefaultSpeed
	}

	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "constant":
		return ConstantDelay(speed), true, nil
	case "punctuation":
		return NewPunctuationDelay(speed), true, nil
	case "off", "none":
		return ConstantDelay(speed), false, nil
	default:
		return nil, false, fmt.Errorf("unknown reveal mode %q", mode)
	}
}
