package render

import (
	"fmt"
	"os"

	rpdf "rsc.io/pdf"
)

// Info describes an exported PDF.
type Info struct {
	Pages  int
	Width  float64
	Height float64
	Title  string
}

// Inspect reads the page count and first page size (in points) of a PDF file.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return Info{}, err
	}
	doc, err := rpdf.NewReader(f, st.Size())
	if err != nil {
		return Info{}, fmt.Errorf("read pdf %s: %w", path, err)
	}
	info := Info{Pages: doc.NumPage()}
	if t := doc.Trailer().Key("Info").Key("Title"); t.Kind() == rpdf.String {
		info.Title = t.Text()
	}
	if info.Pages > 0 {
		box := doc.Page(1).V.Key("MediaBox")
		if box.Kind() != rpdf.Array {
			box = doc.Page(1).V.Key("Parent").Key("MediaBox")
		}
		if box.Kind() == rpdf.Array && box.Len() == 4 {
			info.Width = box.Index(2).Float64() - box.Index(0).Float64()
			info.Height = box.Index(3).Float64() - box.Index(1).Float64()
		}
	}
	return info, nil
}
