package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mogaika/joker_tool/config"
	"github.com/mogaika/joker_tool/pack/gar"
	"github.com/mogaika/joker_tool/utils"
)

const listFileName = "__list__.txt"

func openArchive(path string) (*gar.Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return gar.Open(data)
}

func list(out io.Writer, path string, nameOnly bool) error {
	a, err := openArchive(path)
	if err != nil {
		return err
	}
	for _, f := range a.Files() {
		if nameOnly {
			fmt.Fprintln(out, f.Name)
		} else {
			fmt.Fprintf(out, "%s [0x%x bytes] @ 0x%x\n", f.Name, len(f.Data), f.Offset)
		}
	}
	return nil
}

// extractPath joins archive member name to dir, refusing names leaving dir
func extractPath(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("Refusing to extract '%s' outside of '%s'", name, dir)
	}
	return target, nil
}

// extract unpacks archive next to it into directory named by archive stem
func extract(out io.Writer, path string) (string, error) {
	a, err := openArchive(path)
	if err != nil {
		return "", err
	}
	base := filepath.Base(path)
	dir := filepath.Join(filepath.Dir(path), strings.TrimSuffix(base, filepath.Ext(base)))
	if err := os.MkdirAll(dir, 0777); err != nil {
		return "", err
	}
	for _, f := range a.Files() {
		target, err := extractPath(dir, f.Name)
		if err != nil {
			return "", err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0777); err != nil {
			return "", err
		}
		if err := os.WriteFile(target, f.Data, 0666); err != nil {
			return "", err
		}
		fmt.Fprintln(out, target)
	}
	listing := strings.Join(a.Names(), "\n")
	if err := os.WriteFile(filepath.Join(dir, listFileName), []byte(listing), 0666); err != nil {
		return "", err
	}
	log.Info().Str("archive", path).Str("dir", dir).Int("files", len(a.Files())).Msg("Extracted")
	return dir, nil
}

// create packs files named in list file of dir, keeping list order
func create(dir, dest string, alignment int) error {
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return errors.Errorf("%s is not a directory. Did you mix up the argument order? "+
			"(directory that should be archived first, then the target archive)", dir)
	}
	listing, err := os.ReadFile(filepath.Join(dir, listFileName))
	if err != nil {
		return err
	}
	w := gar.NewWriter()
	if err := w.SetAlignment(alignment); err != nil {
		return err
	}
	for _, name := range strings.Split(string(listing), "\n") {
		name = strings.TrimRight(name, "\r")
		if name == "" {
			continue
		}
		path, err := extractPath(dir, name)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := w.Add(name, data); err != nil {
			return err
		}
	}

	var n int64
	if dest == "-" {
		n, err = w.WriteTo(os.Stdout)
	} else {
		var f *os.File
		if f, err = os.Create(dest); err != nil {
			return err
		}
		n, err = w.WriteTo(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return errors.Wrapf(err, "Failed to write '%s'", dest)
	}
	log.Info().Str("archive", dest).Int64("size", n).Int("alignment", alignment).Msg("Created")
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-config file] [-log level] command args\n"+
		"Commands:\n"+
		"  list|l [-name-only] archive.gar\n"+
		"  extract|x archive.gar\n"+
		"  create|c [-n alignment] dir dest.gar\n", os.Args[0])
}

func run(args []string, cfg *config.Config) error {
	if len(args) == 0 {
		usage()
		return errors.New("No command")
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "list", "l":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		nameOnly := fs.Bool("name-only", false, "Show only file names")
		fs.Parse(args)
		if fs.NArg() != 1 {
			return errors.New("list needs archive path")
		}
		return list(os.Stdout, fs.Arg(0), *nameOnly)
	case "extract", "x":
		fs := flag.NewFlagSet("extract", flag.ExitOnError)
		fs.Parse(args)
		if fs.NArg() != 1 {
			return errors.New("extract needs archive path")
		}
		_, err := extract(os.Stdout, fs.Arg(0))
		return err
	case "create", "c":
		fs := flag.NewFlagSet("create", flag.ExitOnError)
		alignment := fs.String("n", strconv.Itoa(cfg.Gar.Alignment), "Default alignment for files (0x prefix for hex)")
		fs.Parse(args)
		if fs.NArg() != 2 {
			return errors.New("create needs directory and destination archive")
		}
		align, err := strconv.ParseInt(*alignment, 0, 32)
		if err != nil {
			return errors.Wrapf(err, "Invalid alignment '%s'", *alignment)
		}
		return create(fs.Arg(0), fs.Arg(1), int(align))
	}
	usage()
	return errors.Errorf("Unknown command '%s'", cmd)
}

func main() {
	var configPath, logLevel string
	flag.StringVar(&configPath, "config", "", "Path to toml config")
	flag.StringVar(&logLevel, "log", "", "Log level, overrides config")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if _, err := utils.InitLogger("gartool", cfg.Log.Level); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Apply(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	if err := run(flag.Args(), &cfg); err != nil {
		log.Fatal().Err(err).Msg("gartool failed")
	}
}
