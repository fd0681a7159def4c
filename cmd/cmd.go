package main

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dosco/lookahead/serv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// These variables are set using -ldflags
	version string
	commit  string
	date    string
)

var (
	log   *zap.SugaredLogger
	conf  *serv.Config
	cpath string
)

// Cmd is the entry point for the CLI
func Cmd() {
	log = newLogger(false).Sugar()

	cobra.EnableCommandSorting = false
	rootCmd := &cobra.Command{
		Use:   "lookahead",
		Short: BuildDetails(),
	}

	rootCmd.PersistentFlags().StringVar(&cpath,
		"path", "./config", "path to config files")

	rootCmd.AddCommand(compileCmd())
	rootCmd.AddCommand(execCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%s", err)
	}
}

// setup is a helper function to read the config file
func setup(cpath string) {
	if conf != nil {
		return
	}

	cp, err := filepath.Abs(cpath)
	if err != nil {
		log.Fatal(err)
	}

	cn := serv.GetConfigName()

	// Only a missing config directory gets the default files, an existing
	// directory with a missing config file is reported by ReadInConfig.
	if _, err := os.Stat(cp); os.IsNotExist(err) {
		cwd, err := os.Getwd()
		if err != nil {
			log.Fatal(err)
		}
		if err := initConfigDir(cp, cn, filepath.Base(cwd)); err != nil {
			log.Fatalf("Failed to create default config: %s", err)
		}
		log.Infof("Created default config: %s", filepath.Join(cp, cn+".yml"))
	}

	if conf, err = serv.ReadInConfig(path.Join(cp, cn)); err != nil {
		log.Fatal(err)
	}

	// switch to the configured log format once the config is known
	log = serv.NewLogger(conf).Sugar()
}

// initConfigDir creates the config directory with a default config and
// an example schema.
func initConfigDir(cp, configName, dirName string) error {
	if err := os.MkdirAll(cp, os.ModePerm); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	appNameSlug := strings.ToLower(dirName)
	en := cases.Title(language.English)

	tmpl := newTempl(map[string]any{
		"AppName":     en.String(strings.NewReplacer("-", " ", "_", " ").Replace(appNameSlug)),
		"AppNameSlug": appNameSlug,
	})

	files := map[string]string{
		configName + ".yml": "dev.yml",
		"schema.graphql":    "schema.graphql",
	}
	for dst, src := range files {
		v, err := tmpl.get(src)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(cp, dst), v, 0o600); err != nil {
			return errors.Wrapf(err, "writing %s", dst)
		}
	}
	return nil
}

// newService creates the service from the loaded config
func newService() *serv.Service {
	s, err := serv.NewService(conf, log.Desugar(), nil)
	if err != nil {
		log.Fatalf("Failed to initialize: %s", err)
	}
	return s
}

// newLogger creates a new logger
func newLogger(json bool) *zap.Logger {
	return newLoggerWithOutput(json, os.Stderr)
}

// newLoggerWithOutput creates a new logger with a custom output
func newLoggerWithOutput(json bool, output zapcore.WriteSyncer) *zap.Logger {
	econf := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var core zapcore.Core

	if json {
		core = zapcore.NewCore(zapcore.NewJSONEncoder(econf), output, zap.DebugLevel)
	} else {
		econf.EncodeLevel = zapcore.CapitalColorLevelEncoder
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(econf), output, zap.DebugLevel)
	}
	return zap.New(core)
}
