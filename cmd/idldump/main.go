// idldump inspects a serialized message: its type table, the wire type of
// every argument and the decoded values.
//
// Usage:
//
//	idldump [flags] [HEX]
//
// The message is taken from the HEX argument, from --file (raw bytes or hex
// text) or from standard input.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	candid "github.com/wippyai/candid-go"
	"github.com/wippyai/candid-go/config"
	"github.com/wippyai/candid-go/export"
	"github.com/wippyai/candid-go/values"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	file        string
	configPath  string
	format      string
	verbose     bool
	interactive bool
}

func run(argv []string, stdin io.Reader, stdout *os.File) error {
	var opts options
	flags := pflag.NewFlagSet("idldump", pflag.ContinueOnError)
	flags.StringVarP(&opts.file, "file", "f", "", "read the message from a file (raw bytes or hex)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "decoder limits file (.yaml or .jsonc); defaults to $"+config.EnvVar)
	flags.StringVar(&opts.format, "format", "text", "output format: text, json, cbor or msgpack")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log decoder events to stderr")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "browse the arguments in a TUI")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: idldump [flags] [HEX]")
		flags.PrintDefaults()
	}
	if err := flags.Parse(argv); err != nil {
		return err
	}
	if flags.NArg() > 1 {
		return fmt.Errorf("unexpected argument: %s", flags.Arg(1))
	}

	if opts.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
		candid.SetLogger(logger)
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	data, err := readInput(flags.Arg(0), opts.file, stdin)
	if err != nil {
		return err
	}

	msg, err := inspect(data, cfg)
	if err != nil {
		return err
	}

	if opts.interactive {
		if !term.IsTerminal(int(stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(msg)
	}

	tty := term.IsTerminal(int(stdout.Fd()))
	if opts.format == "text" {
		st := plainStyles()
		if tty {
			st = colorStyles()
		}
		_, err := io.WriteString(stdout, msg.report(st))
		return err
	}

	exp, err := export.New(opts.format)
	if err != nil {
		return err
	}
	out, err := exp.Export(values.Vec(msg.values))
	if err != nil {
		return err
	}
	if tty && opts.format != "json" {
		// Binary documents are shown as hex on a terminal.
		_, err = fmt.Fprintf(stdout, "%x\n", out)
		return err
	}
	_, err = stdout.Write(out)
	return err
}

func loadConfig(path string) (candid.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FromEnv()
}
