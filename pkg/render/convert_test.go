package render

import (
	"bytes"
	"testing"

	"github.com/matzehuels/subarch/pkg/errors"
)

const tinySVG = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`

func TestConvert(t *testing.T) {
	if !Available() {
		_, err := ToPDF([]byte(tinySVG))
		if !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Errorf("ToPDF() without librsvg = %v, want UNSUPPORTED", err)
		}
		t.Skip("rsvg-convert not installed")
	}

	pdf, err := ToPDF([]byte(tinySVG))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("ToPDF() output starts with %q", pdf[:min(8, len(pdf))])
	}

	png, err := ToPNG([]byte(tinySVG), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("ToPNG() output is not a PNG")
	}
}
