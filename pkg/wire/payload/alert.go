package payload

import (
	"io"

	"github.com/goldrelay/goldrelay/pkg/wire/command"
)

// Alert is carried opaquely: the legacy alert system is deprecated
// upstream and spec.md §4.3 on_alert only asks that it be logged and
// discarded, never parsed.
type Alert struct {
	Raw []byte
}

// Command implements Message.
func (*Alert) Command() command.Type { return command.Alert }

// Encode implements Message.
func (a *Alert) Encode(w io.Writer) error {
	_, err := w.Write(a.Raw)
	return err
}

// Decode implements Message.
func (a *Alert) Decode(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	a.Raw = b
	return nil
}
