package schema

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/ggonzalez94/solagent/internal/intent"
)

func testRoot() *cobra.Command {
	root := &cobra.Command{Use: "solagent"}
	analyze := &cobra.Command{Use: "analyze", Short: "Resolve an intent without touching the chain", Aliases: []string{"an"}}
	analyze.Flags().String("text", "", "free-text request")
	hidden := &cobra.Command{Use: "debug", Hidden: true}
	root.AddCommand(analyze, hidden)
	return root
}

func TestBuildRootIncludesIntentCatalog(t *testing.T) {
	s, err := Build(testRoot(), "")
	if err != nil {
		t.Fatal(err)
	}
	if s.Command.Path != "solagent" {
		t.Fatalf("path = %q", s.Command.Path)
	}
	if len(s.Command.Subcommands) != 1 {
		t.Fatalf("hidden commands must be omitted, got %+v", s.Command.Subcommands)
	}
	if len(s.Intents) != len(intent.Kinds()) {
		t.Fatalf("intent catalog has %d entries", len(s.Intents))
	}

	byKind := map[string]IntentInfo{}
	for _, info := range s.Intents {
		byKind[info.Kind] = info
	}
	transfer, ok := byKind[string(intent.KindTransferNative)]
	if !ok || transfer.Readonly || !transfer.ConfirmOnMainnet {
		t.Fatalf("transfer entry = %+v", transfer)
	}
	balance, ok := byKind[string(intent.KindReadBalance)]
	if !ok || !balance.Readonly || balance.ConfirmOnMainnet {
		t.Fatalf("balance entry = %+v", balance)
	}
}

func TestBuildScopedCommand(t *testing.T) {
	s, err := Build(testRoot(), "an")
	if err != nil {
		t.Fatal(err)
	}
	if s.Command.Path != "solagent analyze" {
		t.Fatalf("path = %q", s.Command.Path)
	}
	if len(s.Command.Flags) != 1 || s.Command.Flags[0].Name != "text" {
		t.Fatalf("flags = %+v", s.Command.Flags)
	}
	if s.Intents != nil {
		t.Fatal("scoped schema must not carry the intent catalog")
	}
}

func TestBuildUnknownPath(t *testing.T) {
	if _, err := Build(testRoot(), "nonsense"); err == nil {
		t.Fatal("expected error")
	}
}
