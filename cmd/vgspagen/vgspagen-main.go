package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vugu/vgspa/rgen"
)

type config struct {
	Package   string `mapstructure:"package"`
	Recursive bool   `mapstructure:"recursive"`
	Quiet     bool   `mapstructure:"quiet"`
}

func main() {

	cfg, dirs, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewNop()
	if !cfg.Quiet {
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Error creating logger: %v", err)
		}
	}
	defer logger.Sync() //nolint:errcheck

	for _, arg := range dirs {

		dir, err := filepath.Abs(arg)
		if err != nil {
			log.Fatalf("Error converting %q to absolute path: %v", arg, err)
		}

		logger.Info("processing pages", zap.String("dir", arg))

		err = rgen.New().
			SetDir(dir).
			SetPackageName(cfg.Package).
			SetRecursive(cfg.Recursive).
			SetLogger(logger).
			Generate()
		if err != nil {
			log.Fatal(err)
		}

	}

}

// parseArgs returns the configuration and the directories to process.
// Flags given on the command line win over the environment, which wins over
// the config file.
func parseArgs(args []string) (config, []string, error) {

	fs := flag.NewFlagSet("vgspagen", flag.ContinueOnError)
	configPath := fs.String("config", "", "Config file (yaml).  Defaults to .vgspagen.yml in the current directory if present")
	packageName := fs.String("p", "", "The package name to use.  If unspecified the directory name is used")
	recursive := fs.Bool("r", false, "Specify to recursively process subdirectories")
	q := fs.Bool("q", false, "Only print information upon error (quiet mode)")

	if err := fs.Parse(args); err != nil {
		return config{}, nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("error loading config: %w", err)
	}
	if set["p"] {
		cfg.Package = *packageName
	}
	if set["r"] {
		cfg.Recursive = *recursive
	}
	if set["q"] {
		cfg.Quiet = *q
	}

	dirs := fs.Args()
	if len(dirs) == 0 {
		dirs = []string{"."} // default to current dir
	}

	if cfg.Package != "" && len(dirs) > 1 {
		return cfg, nil, errors.New("-p is only valid with a single directory, either don't use -p or only specify one dir")
	}

	return cfg, dirs, nil
}

func loadConfig(configPath string) (config, error) {
	var cfg config

	v := viper.New()
	v.SetEnvPrefix("VGSPAGEN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("package", "")
	v.SetDefault("recursive", false)
	v.SetDefault("quiet", false)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(".vgspagen.yml")
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if configPath != "" || (!errors.As(err, &configFileNotFound) && !os.IsNotExist(err)) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
