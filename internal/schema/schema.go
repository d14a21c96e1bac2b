// Package schema renders the machine-readable surface an automated caller
// needs to drive the engine: the command tree plus the intent catalog.
package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ggonzalez94/solagent/internal/intent"
)

// Surface is the full introspection document. The intent catalog is only
// attached at the root; a scoped build describes just that command.
type Surface struct {
	Command Command      `json:"command"`
	Intents []IntentInfo `json:"intents,omitempty"`
}

type Command struct {
	Path        string    `json:"path"`
	Use         string    `json:"use"`
	Short       string    `json:"short"`
	Aliases     []string  `json:"aliases,omitempty"`
	Flags       []Flag    `json:"flags,omitempty"`
	Subcommands []Command `json:"subcommands,omitempty"`
}

type Flag struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Type      string `json:"type"`
	Usage     string `json:"usage"`
	Default   string `json:"default,omitempty"`
}

// IntentInfo describes one canonical action kind.
type IntentInfo struct {
	Kind     string `json:"kind"`
	Readonly bool   `json:"readonly"`
	// ConfirmOnMainnet marks kinds whose broadcast on the primary network
	// is gated behind the replay-safe confirmation token.
	ConfirmOnMainnet bool `json:"confirmOnMainnet"`
}

// Build walks the command tree down commandPath and serializes the command
// found there. An empty path yields the whole tree plus the intent catalog.
func Build(root *cobra.Command, commandPath string) (Surface, error) {
	cmd := root
	path := strings.TrimSpace(commandPath)
	if path != "" {
		for _, part := range strings.Fields(path) {
			next := findCommand(cmd, part)
			if next == nil {
				return Surface{}, fmt.Errorf("command not found: %s", commandPath)
			}
			cmd = next
		}
		return Surface{Command: serialize(cmd)}, nil
	}
	return Surface{Command: serialize(cmd), Intents: intentCatalog()}, nil
}

func findCommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name || slices.Contains(c.Aliases, name) {
			return c
		}
	}
	return nil
}

func serialize(cmd *cobra.Command) Command {
	out := Command{
		Path:    strings.TrimSpace(cmd.CommandPath()),
		Use:     cmd.Use,
		Short:   cmd.Short,
		Aliases: cmd.Aliases,
		Flags:   collectFlags(cmd),
	}
	for _, sub := range cmd.Commands() {
		if sub.Hidden {
			continue
		}
		out.Subcommands = append(out.Subcommands, serialize(sub))
	}
	return out
}

func collectFlags(cmd *cobra.Command) []Flag {
	flags := []Flag{}
	cmd.NonInheritedFlags().VisitAll(func(f *pflag.Flag) {
		flags = append(flags, Flag{
			Name:      f.Name,
			Shorthand: f.Shorthand,
			Type:      f.Value.Type(),
			Usage:     f.Usage,
			Default:   f.DefValue,
		})
	})
	return flags
}

func intentCatalog() []IntentInfo {
	kinds := intent.Kinds()
	out := make([]IntentInfo, 0, len(kinds))
	for _, k := range kinds {
		readonly := intent.ReadonlyKind(k)
		out = append(out, IntentInfo{
			Kind:             string(k),
			Readonly:         readonly,
			ConfirmOnMainnet: !readonly,
		})
	}
	return out
}
