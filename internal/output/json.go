package output

import (
	"encoding/json"
	"os"
)

// JSONPrinter prints machine-readable JSON to stdout.
type JSONPrinter struct{}

// Print encodes the result directly to stdout, one document per command.
func (JSONPrinter) Print(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
