package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "RQLITE"
	configFileName = ".rqlite-query.yaml"
)

// options is the resolved CLI configuration.
type options struct {
	URL      string
	Username string
	Password string
	Level    string
	Timeout  time.Duration
	NoColor  bool
	Debug    bool
}

// bindFlags registers the connection flags shared by every command.
func bindFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (default $HOME/"+configFileName+")")
	flags.String("url", "http://localhost:4001", "rqlite node URL")
	flags.String("username", "", "basic auth username")
	flags.String("password", "", "basic auth password")
	flags.String("level", "", "read consistency level: none, weak, linearizable or strong")
	flags.Duration("timeout", 10*time.Second, "request timeout")
	flags.Bool("no-color", false, "disable colored output")
	flags.Bool("debug", false, "log requests to stderr")
}

// loadConfig resolves options with precedence flags > environment > .env >
// config file > defaults.
func loadConfig(fsys afero.Fs, flags *pflag.FlagSet) (options, error) {
	v := viper.New()
	v.SetFs(fsys)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return options{}, err
	}

	path, explicit := v.GetString("config"), true
	if path == "" {
		explicit = false
		home, err := homedir.Dir()
		if err != nil {
			return options{}, fmt.Errorf("locate home directory: %w", err)
		}
		path = filepath.Join(home, configFileName)
	}

	if _, err := fsys.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return options{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, fs.ErrNotExist) {
		return options{}, fmt.Errorf("read config %s: %w", path, err)
	}

	dotenv, err := readDotEnv(fsys, ".env")
	if err != nil {
		return options{}, err
	}
	if len(dotenv) > 0 {
		if err := v.MergeConfigMap(dotenv); err != nil {
			return options{}, err
		}
	}

	return options{
		URL:      v.GetString("url"),
		Username: v.GetString("username"),
		Password: v.GetString("password"),
		Level:    v.GetString("level"),
		Timeout:  v.GetDuration("timeout"),
		NoColor:  v.GetBool("no-color"),
		Debug:    v.GetBool("debug"),
	}, nil
}

// readDotEnv returns the RQLITE_ entries of a .env file keyed like the
// flags, e.g. RQLITE_NO_COLOR becomes no-color. A missing file is empty.
func readDotEnv(fsys afero.Fs, name string) (map[string]any, error) {
	b, err := afero.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	env, err := godotenv.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	out := make(map[string]any, len(env))
	for k, val := range env {
		key, ok := strings.CutPrefix(k, envPrefix+"_")
		if !ok {
			continue
		}
		out[strings.ReplaceAll(strings.ToLower(key), "_", "-")] = val
	}
	return out, nil
}
