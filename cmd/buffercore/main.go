// Command buffercore is a minimal terminal demo of the buffer core: it
// loads a file, renders it with internal/render.Iterator, and lets you
// scroll with the arrow keys. It exists to exercise the core end to end,
// not as an editor.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/keystorm-labs/buffercore/internal/config"
	"github.com/keystorm-labs/buffercore/internal/document"
	"github.com/keystorm-labs/buffercore/internal/render"
	"github.com/keystorm-labs/buffercore/internal/renderer"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	if len(opts.Files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: buffercore requires a file argument")
		flag.Usage()
		return 1
	}
	path := opts.Files[0]

	docOpts, err := config.LoadOptions(opts.ConfigPath)
	if err != nil {
		log.Printf("config: %v, falling back to defaults", err)
		docOpts = document.DefaultOptions()
	}
	if opts.ForceLarge {
		docOpts.ForceLarge = true
	}

	doc, err := document.Load(path, docOpts, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load %s: %v\n", path, err)
		return 1
	}
	log.Printf("loaded %s: %d bytes, large=%v", path, doc.TotalBytes(), doc.IsLargeFile())

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init terminal: %v\n", err)
		return 1
	}
	defer screen.Fini()

	it := render.NewIterator(doc)
	top := uint32(1)
	draw(screen, it, top)

	for {
		ev := screen.PollEvent()
		switch e := ev.(type) {
		case *tcell.EventKey:
			switch e.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return 0
			case tcell.KeyRune:
				if e.Rune() == 'q' {
					return 0
				}
			case tcell.KeyDown:
				if lc := doc.LineCount(); int64(top) < lc {
					top++
				}
			case tcell.KeyUp:
				if top > 1 {
					top--
				}
			}
			draw(screen, it, top)
		case *tcell.EventResize:
			screen.Sync()
			draw(screen, it, top)
		}
	}
}

func draw(screen tcell.Screen, it *render.Iterator, top uint32) {
	screen.Clear()
	_, height := screen.Size()
	for row := 0; row < height; row++ {
		line, err := it.Line(top + uint32(row))
		if err != nil {
			break
		}
		col := 0
		for _, cell := range line.Cells {
			screen.SetContent(col, row, cell.Rune, nil, toTcellStyle(cell.Style))
			col += cell.Width
		}
	}
	screen.Show()
}

func toTcellStyle(s renderer.Style) tcell.Style {
	style := tcell.StyleDefault
	if !s.Foreground.IsDefault() {
		r, g, b := s.Foreground.R, s.Foreground.G, s.Foreground.B
		style = style.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	}
	if !s.Background.IsDefault() {
		r, g, b := s.Background.R, s.Background.G, s.Background.B
		style = style.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	}
	style = style.
		Bold(s.Attributes.Has(renderer.AttrBold)).
		Italic(s.Attributes.Has(renderer.AttrItalic)).
		Underline(s.Attributes.Has(renderer.AttrUnderline)).
		StrikeThrough(s.Attributes.Has(renderer.AttrStrikethrough)).
		Reverse(s.Attributes.Has(renderer.AttrReverse)).
		Dim(s.Attributes.Has(renderer.AttrDim)).
		Blink(s.Attributes.Has(renderer.AttrBlink))
	return style
}

type flagOptions struct {
	ConfigPath string
	ForceLarge bool
	Files      []string
}

func parseFlags() flagOptions {
	var opts flagOptions
	flag.StringVar(&opts.ConfigPath, "config", "", "Path to a TOML config file's [buffer] table")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to config file (shorthand)")
	flag.BoolVar(&opts.ForceLarge, "force-large", false, "Force large-file mode regardless of file size")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "buffercore - buffer core demo viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: buffercore [options] <file>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	opts.Files = flag.Args()
	return opts
}
