package export

import (
	"bytes"
	"fmt"
	"io"
	"time"
)

// WriterSurface writes the report to a stream, such as an HTTP response or a file.
// Printing is requested by a script that runs once the document has settled.
type WriterSurface struct {
	w io.Writer

	// tail is the closing markup held back until the script is in place
	tail []byte
}

// NewWriterSurface creates a surface over w
func NewWriterSurface(w io.Writer) *WriterSurface {
	return &WriterSurface{w: w}
}

// WriteDocument writes the report document up to its closing body tag
func (s *WriterSurface) WriteDocument(doc []byte) error {
	s.tail = nil
	if i := bytes.LastIndex(doc, []byte("</body>")); i >= 0 {
		doc, s.tail = doc[:i], doc[i:]
	}
	_, err := s.w.Write(doc)
	return err
}

// Print injects the auto-print script at the end of the body and closes the document
func (s *WriterSurface) Print(delay time.Duration) error {
	if _, err := fmt.Fprintf(s.w, printScript, delay.Milliseconds()); err != nil {
		return err
	}
	_, err := s.w.Write(s.tail)
	s.tail = nil
	return err
}

const printScript = `<script>
window.addEventListener("load", function () {
  setTimeout(function () { window.focus(); window.print(); }, %d);
});
</script>
`
