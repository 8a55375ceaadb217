package main

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// progress draws a bar on stderr while a directory is ingested. A nil
// *progress is valid and draws nothing.
type progress struct {
	bar *progressbar.ProgressBar
}

func progressEnabled() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func newProgress(enabled bool, total int) *progress {
	if !enabled || total <= 0 {
		return nil
	}
	return &progress{bar: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("ingesting"),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)}
}

func (p *progress) Increment() {
	if p == nil {
		return
	}
	_ = p.bar.Add(1)
}

func (p *progress) Finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
}
