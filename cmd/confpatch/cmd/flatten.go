package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/bianoble/confpatch/internal/codec"
	"github.com/bianoble/confpatch/internal/value"
)

var (
	flattenJSON     bool
	flattenComments bool
)

var flattenCmd = &cobra.Command{
	Use:   "flatten <file.json>",
	Short: "Print the key paths and leaf values of a JSON file",
	Long: `Flattens a JSON document into one "key.path[0].leaf=value" line per leaf, in
document order. These key paths are what manifest values address. With
--json the flat map is printed as a JSON object instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		if flattenComments {
			data = jsonc.ToJSON(data)
		}

		tree, err := value.Decode(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}
		flat, err := codec.Flatten(tree)
		if err != nil {
			return err
		}
		return writeFlat(stdout, flat, flattenJSON)
	},
}

var unflattenCmd = &cobra.Command{
	Use:   "unflatten [file]",
	Short: "Build a JSON document from key paths",
	Long: `Reads "key.path=value" lines, or a JSON object of key paths to values, from
a file or stdin and prints the JSON document they describe. Values are
typed the way apply types them: true/false, numbers and JSON literals keep
their type, anything else becomes a string.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()
			in = f
		}

		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		flat, err := parseFlat(data)
		if err != nil {
			return err
		}

		tree, err := codec.Unflatten(flat)
		if err != nil {
			return err
		}
		_, err = stdout.Write(value.Encode(tree))
		return err
	},
}

func writeFlat(w io.Writer, flat *codec.FlatMap, asJSON bool) error {
	if asJSON {
		data, err := flat.MarshalJSON()
		if err != nil {
			return err
		}
		tree, err := value.Decode(data)
		if err != nil {
			return err
		}
		_, err = w.Write(value.Encode(tree))
		return err
	}

	flat.Range(func(key, text string) bool {
		fmt.Fprintf(w, "%s=%s\n", key, text)
		return true
	})
	return nil
}

// parseFlat reads a JSON object of key paths, or key=value lines. Blank
// lines and lines starting with '#' are skipped.
func parseFlat(data []byte) (*codec.FlatMap, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		obj, err := value.Decode(trimmed)
		if err != nil {
			return nil, fmt.Errorf("parsing input: %w", err)
		}
		if obj.Kind() != value.KindObject {
			return nil, fmt.Errorf("parsing input: expected a JSON object of key paths")
		}
		flat := codec.NewFlatMap()
		for _, m := range obj.Members() {
			if m.Value.IsContainer() {
				return nil, fmt.Errorf("value for '%s' must be a scalar", m.Key)
			}
			flat.Set(m.Key, m.Value.Text())
		}
		return flat, nil
	}

	flat := codec.NewFlatMap()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, val, ok := strings.Cut(text, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected key=value", line)
		}
		flat.Set(strings.TrimSpace(key), strings.TrimSpace(val))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return flat, nil
}

func init() {
	flattenCmd.Flags().BoolVar(&flattenJSON, "json", false, "print a JSON object instead of key=value lines")
	flattenCmd.Flags().BoolVar(&flattenComments, "allow-comments", false, "accept comments and trailing commas")
	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(unflattenCmd)
}
