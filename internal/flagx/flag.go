// Package flagx holds command-line helpers shared by the server and slothctl.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs keeps only the flags named in names, together with their values.
// Names are given without dashes; both -name and --name spellings match, in
// either "-name value" or "-name=value" form. Everything else is dropped, so
// the result can be parsed by a FlagSet that only knows those flags.
func FilterArgs(args []string, names ...string) []string {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[strings.TrimLeft(n, "-")] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if _, ok := allowed[name]; !ok {
			continue
		}

		out = append(out, arg)
		if hasValue {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigPath extracts the JSON config file path given via -c or -config.
// Other arguments are ignored. The last occurrence wins; an empty string
// means no config file was requested.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, "c", "config"))

	return path
}
