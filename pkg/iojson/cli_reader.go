package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader decodes a JSON value of type T from the file named by its flag,
// or from stdin when the flag is unset.
type FileReader[T any] struct {
	// Name is the flag name. Defaults to "file".
	Name  string
	Usage string

	fileFlagValue string
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	name, usage := fr.Name, fr.Usage
	if name == "" {
		name = "file"
	}
	if usage == "" {
		usage = "path to JSON file (reads from stdin if not provided)"
	}

	return &cli.StringFlag{
		Name:        name,
		Usage:       usage,
		Destination: &fr.fileFlagValue,
	}
}

// Set reports whether the flag was given a path.
func (fr *FileReader[T]) Set() bool {
	return fr.fileFlagValue != ""
}

// Read decodes from the flag's file, or from stdin. A terminal stdin is an
// error since nothing would be piped in.
func (fr *FileReader[T]) Read() (T, error) {
	var input T

	if fr.fileFlagValue != "" && fr.fileFlagValue != "-" {
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return Decode[T](f)
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return input, fmt.Errorf("no input provided (stdin is a terminal); pass a file path or pipe JSON input")
	}
	return Decode[T](os.Stdin)
}

// Decode reads a single JSON value of type T from r.
func Decode[T any](r io.Reader) (T, error) {
	var input T
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}
	return input, nil
}
