// Command abi-inspect prints context table layouts, their fingerprints and
// the JSON schemas of host documents, checks extension manifests, and loads
// the extensions listed in a host configuration. With -json, a failing
// command writes its error to stderr as a JSON error detail.
//
// Usage:
//
//	abi-inspect [-json] <command> ...
//	abi-inspect layout [-version N] [-cbor]
//	abi-inspect fingerprint [-version N]
//	abi-inspect schema manifest|config
//	abi-inspect check [-version N] extension.yaml
//	abi-inspect run [-config abi-host.toml]
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/application/config"
	"github.com/reglet-dev/reglet-abi/application/schema"
	abierrors "github.com/reglet-dev/reglet-abi/domain/errors"
	_ "github.com/reglet-dev/reglet-abi/examples/pairs" // registers the "pairs" Go extension
	"github.com/reglet-dev/reglet-abi/host"
	"github.com/reglet-dev/reglet-abi/wireformat"
)

const usage = `usage: abi-inspect [-json] <command> [flags]

commands:
  layout       print the context table layout
  fingerprint  print the layout fingerprint
  schema       print the JSON schema of a document (manifest, config)
  check        validate an extension manifest against a context version
  run          load the extensions of a host configuration
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	asJSON := len(args) > 0 && args[0] == "-json"
	if asJSON {
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "layout":
		err = layoutCmd(args[1:], stdout, stderr)
	case "fingerprint":
		err = fingerprintCmd(args[1:], stdout, stderr)
	case "schema":
		err = schemaCmd(args[1:], stdout)
	case "check":
		err = checkCmd(args[1:], stdout, stderr)
	case "run":
		err = runCmd(args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "abi-inspect: unknown command %q\n%s", args[0], usage)
		return 2
	}
	if err != nil {
		reportError(stderr, args[0], err, asJSON)
		return 1
	}
	return 0
}

func reportError(stderr io.Writer, cmd string, err error, asJSON bool) {
	if asJSON {
		data, jerr := json.MarshalIndent(abierrors.ToErrorDetail(err), "", "  ")
		if jerr == nil {
			fmt.Fprintln(stderr, string(data))
			return
		}
	}
	fmt.Fprintf(stderr, "abi-inspect %s: %v\n", cmd, err)
}

func flags(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func layoutCmd(args []string, stdout, stderr io.Writer) error {
	fs := flags("layout", stderr)
	version := fs.Int("version", abi.CurrentVersion, "context version")
	asCBOR := fs.Bool("cbor", false, "print the canonical CBOR encoding as hex")
	if err := fs.Parse(args); err != nil {
		return err
	}

	l, err := wireformat.Layout(*version)
	if err != nil {
		return err
	}
	if *asCBOR {
		data, err := wireformat.MarshalCBOR(l)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, hex.EncodeToString(data))
		return nil
	}
	data, err := wireformat.MarshalJSON(l)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}

func fingerprintCmd(args []string, stdout, stderr io.Writer) error {
	fs := flags("fingerprint", stderr)
	version := fs.Int("version", abi.CurrentVersion, "context version")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fp, err := wireformat.Fingerprint(*version)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, fp)
	return nil
}

func schemaCmd(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("want one document name, one of %v", schema.Names())
	}
	data, err := schema.Generate(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}

func checkCmd(args []string, stdout, stderr io.Writer) error {
	fs := flags("check", stderr)
	version := fs.Int("version", abi.CurrentVersion, "context version to check against")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("want one manifest path")
	}

	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	m, err := host.NewLoader(host.WithContextVersion(*version)).LoadManifest(raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %s extension, context v%d..v%d ok\n", m.Name, m.Kind, m.MinCtxVersion, *version)
	return nil
}

func runCmd(args []string, stdout, stderr io.Writer) error {
	fs := flags("run", stderr)
	path := fs.String("config", config.FileName, "host configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(stderr)

	ctx := context.Background()
	e, err := host.NewExecutor(ctx, cfg.ExecutorOptions(logger)...)
	if err != nil {
		return err
	}

	for _, manifest := range cfg.ManifestPaths() {
		if _, err := e.LoadManifest(ctx, manifest); err != nil {
			_ = e.Close(ctx)
			return err
		}
	}
	abiCtx := e.Context()
	fmt.Fprintf(stdout, "context %s v%d (%s)\n", abiCtx.Name, abiCtx.Version, abiCtx.ID)
	for _, name := range e.Modules() {
		fmt.Fprintf(stdout, "  module %s\n", name)
	}
	return e.Close(ctx)
}
