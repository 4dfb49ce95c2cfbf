package main

import (
	_ "embed"
	"fmt"
)

//go:embed chatmark.guide.md
var guideContent string

// GuideCmd prints the syntax guide to stdout.
type GuideCmd struct {
	Render bool `help:"Render the guide as styled markdown."`
}

func (cmd *GuideCmd) Run(globals *Globals) error {
	if cmd.Render && !globals.JSON {
		fmt.Print(renderMarkdown(guideContent, 80))
		return nil
	}
	fmt.Print(guideContent)
	return nil
}
