package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/mogaika/joker_tool/config"
	"github.com/mogaika/joker_tool/utils"
	"github.com/mogaika/joker_tool/vfs"
	"github.com/mogaika/joker_tool/web"

	_ "github.com/mogaika/joker_tool/pack/gar"
	_ "github.com/mogaika/joker_tool/pack/layout"
	_ "github.com/mogaika/joker_tool/pack/mfpj"
	_ "github.com/mogaika/joker_tool/pack/mfpk"
)

func main() {
	var addr, dir, configPath, logLevel string
	flag.StringVar(&addr, "i", "", "Address of server, overrides config")
	flag.StringVar(&dir, "dir", "", "Path to directory with archives and layouts, overrides config")
	flag.StringVar(&configPath, "config", "", "Path to toml config")
	flag.StringVar(&logLevel, "log", "", "Log level, overrides config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if addr != "" {
		cfg.Web.Addr = addr
	}
	if dir != "" {
		cfg.Web.Dir = dir
	}
	if _, err := utils.InitLogger("joker_tool", cfg.Log.Level); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Apply(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	if cfg.Web.Dir == "" {
		flag.PrintDefaults()
		return
	}
	if st, err := os.Stat(cfg.Web.Dir); err != nil || !st.IsDir() {
		log.Fatal().Str("dir", cfg.Web.Dir).Msg("Not a directory")
	}

	if err := web.StartServer(cfg.Web.Addr, vfs.NewDirectoryDriver(cfg.Web.Dir), cfg.Web.Data); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
