//go:build ignore

// gen_names writes names_gen.go: the primary short name of every emoji in
// goldmark-emoji's GitHub definition, in definition order. The definition
// package only supports lookups by short name, so the reverse index needs
// this list.
package main

import (
	"bytes"
	"fmt"
	"go/format"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var shortName = regexp.MustCompile(`ShortNames: \[\]string\{"([^"]+)"`)

func main() {
	out, err := exec.Command("go", "list", "-m", "-f", "{{.Dir}}", "github.com/yuin/goldmark-emoji").Output()
	if err != nil {
		log.Fatalf("locate goldmark-emoji: %v", err)
	}
	src, err := os.ReadFile(filepath.Join(strings.TrimSpace(string(out)), "definition", "github.go"))
	if err != nil {
		log.Fatalf("read definitions: %v", err)
	}

	var buf bytes.Buffer
	buf.WriteString("// Code generated by gen_names.go. DO NOT EDIT.\n\npackage emoji\n\n")
	buf.WriteString("var githubNames = []string{\n")
	for _, m := range shortName.FindAllSubmatch(src, -1) {
		fmt.Fprintf(&buf, "\t%q,\n", m[1])
	}
	buf.WriteString("}\n")

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		log.Fatalf("format: %v", err)
	}
	if err := os.WriteFile("names_gen.go", formatted, 0o644); err != nil { //nolint:gosec // generated source
		log.Fatalf("write: %v", err)
	}
}
