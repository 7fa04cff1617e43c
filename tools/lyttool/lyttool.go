package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mogaika/joker_tool/config"
	"github.com/mogaika/joker_tool/pack"
	"github.com/mogaika/joker_tool/pack/layout"
	_ "github.com/mogaika/joker_tool/pack/mfpj"
	_ "github.com/mogaika/joker_tool/pack/mfpk"
	"github.com/mogaika/joker_tool/utils"
)

// formatName returns name with extension of requested type, taken
// from flag or from the first suffix of file name
func formatName(path, typ string) (string, error) {
	if typ == "" {
		base := filepath.Base(path)
		i := strings.IndexByte(base, '.')
		if i < 0 {
			return "", errors.Errorf("Cannot detect type of '%s', use -type", path)
		}
		typ = base[i+1:]
		if j := strings.IndexByte(typ, '.'); j >= 0 {
			typ = typ[:j]
		}
	}
	return "file." + strings.ToLower(typ), nil
}

func isDocument(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yml" || ext == ".yaml"
}

func convert(path, typ string, dump bool) ([]byte, error) {
	name, err := formatName(path, typ)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if isDocument(path) {
		doc, err := pack.DecodeYAML(name, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return pack.Encode(name, doc)
	}

	doc, err := pack.Decode(name, data)
	if err != nil {
		return nil, err
	}
	if dump {
		return []byte(utils.SDump(doc)), nil
	}
	return pack.MarshalYAML(doc)
}

// newLayout returns template layout with root, one rect pane and widget showing it
func newLayout() *layout.Layout {
	var rng utils.RandomNameGenerator
	pane := &layout.Pane{Name: rng.RandomName(), Shape: &layout.PaneRect{Width: 64, Height: 64}}
	return &layout.Layout{
		Name:  rng.RandomName(),
		Panes: []*layout.Pane{pane},
		Root: &layout.Widget{
			Name: rng.RandomName(),
			Kind: layout.WidgetLayout,
			Transform: layout.Transform{
				Scale: mgl32.Vec3{1, 1, 1},
				Color: mgl32.Vec4{1, 1, 1, 1},
			},
			Widgets: []*layout.Widget{{
				Name: rng.RandomName(),
				Kind: layout.WidgetPane,
				Pane: pane.Name,
				Transform: layout.Transform{
					Scale: mgl32.Vec3{1, 1, 1},
					Color: mgl32.Vec4{1, 1, 1, 1},
				},
			}},
		},
	}
}

// writeOutput writes data to file path, "-" means stdout.
// File is closed before returning so write errors are not lost.
func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrapf(err, "Failed to write '%s'", path)
	}
	return f.Close()
}

func main() {
	var typ, out, configPath, logLevel string
	var dump, create bool
	flag.StringVar(&typ, "type", "", "File type (mfl, mfpk, mfpj), detected from the first file suffix by default")
	flag.StringVar(&out, "o", "-", "Output file")
	flag.BoolVar(&dump, "dump", false, "Print decoded structure instead of yaml")
	flag.BoolVar(&create, "new", false, "Print template layout document")
	flag.StringVar(&configPath, "config", "", "Path to toml config")
	flag.StringVar(&logLevel, "log", "", "Log level, overrides config")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] file\n"+
			"Binary files are converted to yaml, *.yml files are converted to binary.\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if _, err := utils.InitLogger("lyttool", cfg.Log.Level); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Apply(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	var result []byte
	if create {
		result, err = pack.MarshalYAML(newLayout())
	} else {
		if flag.NArg() != 1 {
			flag.Usage()
			os.Exit(2)
		}
		result, err = convert(flag.Arg(0), typ, dump)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Conversion failed")
	}

	if err := writeOutput(out, os.Stdout, result); err != nil {
		log.Fatal().Err(err).Str("output", out).Msg("Write failed")
	}
}
