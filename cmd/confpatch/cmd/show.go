package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bianoble/confpatch/internal/codec"
	"github.com/bianoble/confpatch/internal/platform"
	"github.com/bianoble/confpatch/pkg/confpatch"
)

var (
	showOnly []string
	showJSON bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show each component's resolved target and effective values",
	Long: `Resolves the manifest for this platform without touching any file and prints,
per component, the target file and the effective override values. Array
elements are grouped under their array; blank values leave the file
untouched and are shown as (unchanged).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(0)
		if err != nil {
			return err
		}

		planned, err := client.Plan(showOnly)
		if err != nil {
			return err
		}

		if showJSON {
			return writePlanJSON(stdout, planned)
		}

		info("Platform: %s (%s)", client.Platform(), platform.Describe(client.Platform()))
		for _, p := range planned {
			info("")
			info("%s [%s]", color.New(color.Bold).Sprint(p.Component.DisplayName()), p.Component.ID)
			if p.Err != nil {
				errorf("%s: %s", p.Component.ID, p.Err)
				continue
			}
			info("  target: %s (%s, %s)", p.Spec.TargetPath, p.Spec.Format, p.Spec.Mode)
			if !quiet {
				renderFields(stdout, p.Values, "  ")
			}
		}
		return nil
	},
}

// renderFields prints flat grouped the way the configuration wizard laid
// out its text boxes: plain keys as one labelled line, array elements
// under an "[Item n]" heading below their array.
func renderFields(w io.Writer, flat *codec.FlatMap, indent string) {
	lastArray, lastIndex := "", -1
	flat.Range(func(key, text string) bool {
		shown := text
		if codec.IsBlank(text) {
			shown = color.HiBlackString("(unchanged)")
		}

		array, index, ok := codec.ArrayGroup(key)
		if !ok {
			lastArray, lastIndex = "", -1
			fmt.Fprintf(w, "%s%s = %s\n", indent, codec.HierarchicalDisplay(key, ""), shown)
			return true
		}

		if array != lastArray {
			label := array
			if label == "" {
				label = "(root)"
			} else {
				label = codec.HierarchicalDisplay(array, "")
			}
			fmt.Fprintf(w, "%s%s\n", indent, label)
			lastArray, lastIndex = array, -1
		}
		if index != lastIndex {
			fmt.Fprintf(w, "%s  [Item %d]\n", indent, index)
			lastIndex = index
		}

		rest := strings.TrimPrefix(strings.TrimPrefix(key, fmt.Sprintf("%s[%d]", array, index)), ".")
		if rest == "" {
			rest = "value"
		} else {
			rest = codec.HierarchicalDisplay(rest, "")
		}
		fmt.Fprintf(w, "%s    %s = %s\n", indent, rest, shown)
		return true
	})
}

type planJSON struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Target    string         `json:"target,omitempty"`
	Format    string         `json:"format,omitempty"`
	Mode      string         `json:"mode,omitempty"`
	Overrides *codec.FlatMap `json:"overrides,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func writePlanJSON(w io.Writer, planned []confpatch.Planned) error {
	out := make([]planJSON, 0, len(planned))
	for _, p := range planned {
		entry := planJSON{ID: p.Component.ID, Name: p.Component.DisplayName()}
		if p.Err != nil {
			entry.Error = p.Err.Error()
		} else {
			entry.Target = p.Spec.TargetPath
			entry.Format = string(p.Spec.Format)
			entry.Mode = string(p.Spec.Mode)
			entry.Overrides = p.Values
		}
		out = append(out, entry)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func init() {
	showCmd.Flags().StringArrayVar(&showOnly, "only", nil, "component id glob to show (repeatable)")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the resolved plan as JSON")
	rootCmd.AddCommand(showCmd)
}
