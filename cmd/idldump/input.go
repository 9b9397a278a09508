package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// readInput returns the message bytes from the positional argument, the
// file, or stdin, in that order of preference.
func readInput(arg, file string, stdin io.Reader) ([]byte, error) {
	switch {
	case arg != "" && file != "":
		return nil, fmt.Errorf("give either a HEX argument or --file, not both")
	case arg != "":
		return parseHex(arg)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		return maybeHex(data)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return maybeHex(data)
}

// maybeHex decodes data as hex text when it is not already a binary message.
func maybeHex(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, []byte("DIDL")) {
		return data, nil
	}
	return parseHex(string(data))
}

// parseHex accepts hex digits with optional 0x prefix and any whitespace.
func parseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return out, nil
}
