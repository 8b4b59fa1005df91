package main

import "strings"

// normalizeArgs accepts the single-dash "-url" spelling, which pflag would
// otherwise read as a cluster of short flags.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		switch {
		case arg == "--":
			copy(out[i:], args[i:])
			return out
		case arg == "-url":
			out[i] = "--url"
		case strings.HasPrefix(arg, "-url="):
			out[i] = "-" + arg
		default:
			out[i] = arg
		}
	}
	return out
}
