package main

import (
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
)

func findCommand(t *testing.T, app *cli.Command, name string) *cli.Command {
	t.Helper()
	for _, c := range app.Commands {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("command %s not found", name)
	return nil
}

func TestParseHelp_DescribesPlaceholders(t *testing.T) {
	help := findCommand(t, newApp(), "parse").CustomHelpTemplate

	for _, want := range []string{`"#text..."`, `"#element..."`, "data-attribute", "data-logo", `id "bg"`, "package.zip"} {
		if !strings.Contains(help, want) {
			t.Errorf("parse help does not mention %s", want)
		}
	}
	for _, wrong := range []string{`"#logo"`, "body background"} {
		if strings.Contains(help, wrong) {
			t.Errorf("parse help mentions %s which is not how placeholders are marked", wrong)
		}
	}
}

func TestCommands_Flags(t *testing.T) {
	app := newApp()
	for cmd, flags := range map[string][]string{
		"parse":      {"output", "base-url", "force-cp", "overwrite"},
		"preview":    {"output", "logo", "template", "width", "height", "overwrite"},
		"dumpconfig": {"default"},
	} {
		c := findCommand(t, app, cmd)
		names := make(map[string]bool)
		for _, f := range c.Flags {
			for _, n := range f.Names() {
				names[n] = true
			}
		}
		for _, f := range flags {
			if !names[f] {
				t.Errorf("%s has no --%s flag", cmd, f)
			}
		}
	}
}
