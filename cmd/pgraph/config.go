package main

import (
	"errors"
	"fmt"

	"github.com/matsen/papergraph/internal/config"
	"github.com/spf13/cobra"
)

var configGlobal bool

func init() {
	configCmd.Flags().BoolVar(&configGlobal, "global", false, "Read or write ~/.config/pgraph/config.yml (keys: library-path, log-mode)")
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  pgraph config                          # Show all config
  pgraph config listen-addr              # Get specific value
  pgraph config listen-addr :9000        # Set value
  pgraph config --global library-path ~/papers

Keys:
  listen-addr        Address for 'pgraph serve' (host:port)
  log-mode           dev or prod
  max-pdf-pages      Pages of text read from each PDF
  arxiv-max-results  Default result count for 'pgraph arxiv search'

PGRAPH_LISTEN_ADDR and PGRAPH_LOG_MODE override the stored values at run time.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configGlobal {
		return runGlobalConfig(args)
	}

	repoRoot := mustFindRepository()
	// Stored values only; env overrides are not written back.
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	if len(args) == 0 {
		if humanOutput {
			for _, k := range config.Keys {
				v, _ := cfg.Get(k)
				fmt.Printf("%-18s %s\n", k+":", v)
			}
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := config.NormalizeKey(args[0])
	if len(args) == 1 {
		v, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(v)
		} else {
			outputJSON(map[string]string{key: v})
		}
		return nil
	}

	if err := cfg.Set(key, args[1]); err != nil {
		code := ExitConfigError
		if errors.Is(err, config.ErrUnknownKey) {
			code = ExitError
		}
		exitWithError(code, "%v", err)
	}
	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	value, _ := cfg.Get(key)
	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

func runGlobalConfig(args []string) error {
	g, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("config file:   %s\n", config.GlobalConfigPath())
			fmt.Printf("library-path:  %s\n", g.LibraryPath)
			fmt.Printf("log-mode:      %s\n", g.LogMode)
		} else {
			outputJSON(map[string]string{
				"path":         config.GlobalConfigPath(),
				"library_path": g.LibraryPath,
				"log_mode":     g.LogMode,
			})
		}
		return nil
	}

	key := config.NormalizeKey(args[0])
	var value string
	switch key {
	case "library-path":
		value = g.LibraryPath
	case "log-mode":
		value = g.LogMode
	default:
		exitWithError(ExitError, "unknown global configuration key: %s", args[0])
	}

	if len(args) == 1 {
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{key: value})
		}
		return nil
	}

	updated := *g
	value = args[1]
	switch key {
	case "library-path":
		value = config.ExpandPath(value)
		if !config.IsRepository(value) {
			exitWithError(ExitConfigError, "%v: %s", config.ErrLibraryPathNotExist, value)
		}
		updated.LibraryPath = value
	case "log-mode":
		if err := config.ValidateLogMode(value); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		updated.LogMode = value
	}
	if err := config.SaveGlobalConfig(&updated); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Set %s = %s in %s\n", key, value, config.GlobalConfigPath())
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}
