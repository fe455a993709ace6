package views

import (
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// htmlBuf accumulates markup. Text and attribute values are escaped; raw
// strings must already be safe.
type htmlBuf struct {
	bytes.Buffer
}

func (b *htmlBuf) raw(s string) *htmlBuf {
	b.WriteString(s)
	return b
}

func (b *htmlBuf) text(s string) *htmlBuf {
	b.WriteString(templ.EscapeString(s))
	return b
}

func (b *htmlBuf) attr(name, value string) *htmlBuf {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(templ.EscapeString(value))
	b.WriteByte('"')
	return b
}

func (b *htmlBuf) href(name, u string) *htmlBuf {
	return b.attr(name, string(templ.URL(u)))
}

func (b *htmlBuf) intAttr(name string, v int) *htmlBuf {
	return b.attr(name, strconv.Itoa(v))
}

// component renders fn into a buffer and writes it in one call.
func component(fn func(ctx context.Context, b *htmlBuf) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b htmlBuf
		if err := fn(ctx, &b); err != nil {
			return err
		}
		_, err := w.Write(b.Bytes())
		return err
	})
}

func renderInto(ctx context.Context, b *htmlBuf, c templ.Component) error {
	return c.Render(ctx, &b.Buffer)
}
