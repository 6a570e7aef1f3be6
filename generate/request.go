package generate

import (
	"errors"
	"fmt"
)

type Mode string

const (
	ModeExpand    Mode = "expand"
	ModeSummarize Mode = "summarize"
)

var (
	ErrEmptyShorthand = errors.New("shorthand is empty")
	ErrInvalidMode    = errors.New("invalid mode")
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeExpand, ModeSummarize:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q (use expand or summarize)", ErrInvalidMode, s)
}

// Title is the heading shown above a note produced in this mode.
func (m Mode) Title() string {
	if m == ModeExpand {
		return "Expanded Patient Note"
	}
	return "Summarized Patient Note"
}

// Action is the label of the button that starts a generation in this mode.
func (m Mode) Action() string {
	if m == ModeExpand {
		return "Expand Note"
	}
	return "Summarize Note"
}

// Request is the body sent to the generation endpoint. Trimming the
// shorthand is left to the caller.
type Request struct {
	Shorthand string `json:"shorthand"`
	Mode      Mode   `json:"mode"`
}

func (r Request) Validate() error {
	if r.Shorthand == "" {
		return ErrEmptyShorthand
	}
	if _, err := ParseMode(string(r.Mode)); err != nil {
		return err
	}
	return nil
}
