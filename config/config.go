// Package config resolves the geomap configuration from defaults, a
// geomap.yaml file, GEOMAP_* environment variables and command flags,
// in ascending order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mlounello/alcohol-origins-geomap-staging/style"
)

// Sheets locates the spreadsheet and the worksheets the pipeline reads
// and writes.
type Sheets struct {
	URL         string `mapstructure:"url" yaml:"url"`
	Range       string `mapstructure:"range" yaml:"range"`
	Credentials string `mapstructure:"credentials" yaml:"credentials"`
	Log         string `mapstructure:"log" yaml:"log"`
	Report      string `mapstructure:"report" yaml:"report"`
}

// Site is the rendered output.
type Site struct {
	Out string `mapstructure:"out" yaml:"out"`
}

// Publish is the target branch and the committer identity.
type Publish struct {
	URL       string `mapstructure:"url" yaml:"url"`
	Branch    string `mapstructure:"branch" yaml:"branch"`
	Author    string `mapstructure:"author" yaml:"author"`
	Email     string `mapstructure:"email" yaml:"email"`
	Username  string `mapstructure:"username" yaml:"username"`
	Token     string `mapstructure:"token" yaml:"token"`
	Retention uint   `mapstructure:"log-retention" yaml:"log-retention"`
}

// Watch is the interval between pipeline runs in watch mode.
type Watch struct {
	Every time.Duration `mapstructure:"every" yaml:"every"`
}

// MarshalYAML writes the interval as a duration string rather than
// nanoseconds.
func (w Watch) MarshalYAML() (any, error) {
	return map[string]string{"every": w.Every.String()}, nil
}

// Serve is the preview server address.
type Serve struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Config is the full geomap configuration.
type Config struct {
	Sheets  Sheets      `mapstructure:"sheets" yaml:"sheets"`
	Site    Site        `mapstructure:"site" yaml:"site"`
	Style   style.Style `mapstructure:"style" yaml:"style"`
	Publish Publish     `mapstructure:"publish" yaml:"publish"`
	Watch   Watch       `mapstructure:"watch" yaml:"watch"`
	Serve   Serve       `mapstructure:"serve" yaml:"serve"`
}

// Default returns the configuration with every built-in default
// applied. The style defaults are the original map's hard-coded values.
func Default() Config {
	return Config{
		Sheets: Sheets{
			Range:  "Data!A1:K",
			Log:    "Log!A1:F",
			Report: "Report!A1:C",
		},
		Site: Site{
			Out: "docs",
		},
		Style: style.Default(),
		Publish: Publish{
			Branch:    "gh-pages",
			Author:    "geomap",
			Email:     "geomap@users.noreply.github.com",
			Retention: 30,
		},
		Watch: Watch{
			Every: time.Hour,
		},
		Serve: Serve{
			Addr: "localhost:8080",
		},
	}
}

// Defaults flattens Default into viper keys. Every key is listed, with
// or without a built-in default, so that environment variables resolve
// on unmarshalling. Tile layers are flattened per field so a config file
// can override a single attribute; the groups list is overridden
// wholesale.
func Defaults() map[string]any {
	d := Default()

	return map[string]any{
		"sheets.url":         d.Sheets.URL,
		"sheets.range":       d.Sheets.Range,
		"sheets.credentials": d.Sheets.Credentials,
		"sheets.log":         d.Sheets.Log,
		"sheets.report":      d.Sheets.Report,

		"site.out": d.Site.Out,

		"style.title":  d.Style.Title,
		"style.zoom":   d.Style.Zoom,
		"style.groups": d.Style.Groups,

		"style.street.name":        d.Style.Street.Name,
		"style.street.url":         d.Style.Street.URL,
		"style.street.attribution": d.Style.Street.Attribution,

		"style.satellite.name":        d.Style.Satellite.Name,
		"style.satellite.url":         d.Style.Satellite.URL,
		"style.satellite.attribution": d.Style.Satellite.Attribution,

		"style.labels.name":        d.Style.Labels.Name,
		"style.labels.url":         d.Style.Labels.URL,
		"style.labels.attribution": d.Style.Labels.Attribution,

		"publish.url":           d.Publish.URL,
		"publish.branch":        d.Publish.Branch,
		"publish.author":        d.Publish.Author,
		"publish.email":         d.Publish.Email,
		"publish.username":      d.Publish.Username,
		"publish.token":         d.Publish.Token,
		"publish.log-retention": d.Publish.Retention,

		"watch.every": d.Watch.Every,

		"serve.addr": d.Serve.Addr,
	}
}

// flag names that map onto configuration keys
var bindings = map[string]string{
	"url":           "sheets.url",
	"range":         "sheets.range",
	"credentials":   "sheets.credentials",
	"log-range":     "sheets.log",
	"report-range":  "sheets.report",
	"out":           "site.out",
	"remote":        "publish.url",
	"branch":        "publish.branch",
	"log-retention": "publish.log-retention",
	"every":         "watch.every",
	"addr":          "serve.addr",
}

// Load resolves the configuration. An empty file argument searches
// geomap.yaml in the current directory, the user config directory and
// /etc/geomap; a non-empty one is read or the load fails. Flags listed
// in bindings override their keys when set on the command.
func Load(cmd *cobra.Command, file string) (Config, error) {
	var c Config

	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName("geomap")
	v.SetConfigType("yaml")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")

		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "geomap"))
		}

		v.AddConfigPath("/etc/geomap")
	}

	if err := v.ReadInConfig(); err != nil {
		var notfound viper.ConfigFileNotFoundError
		if !errors.As(err, &notfound) {
			return c, fmt.Errorf("unable to read configuration (%v)", err)
		}
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("geomap")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if cmd != nil {
		for name, key := range bindings {
			if flag := cmd.Flags().Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return c, err
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("invalid configuration (%v)", err)
	}

	return c, nil
}

var comments = yaml.CommentMap{
	"$.sheets":             {yaml.HeadComment(" source spreadsheet: full URL or bare ID, plus worksheet ranges")},
	"$.sheets.credentials": {yaml.LineComment(" service account JSON file; GEOMAP_CREDENTIALS env overrides")},
	"$.site":               {yaml.HeadComment(" rendered site")},
	"$.style":              {yaml.HeadComment(" map style; omit to keep the defaults below")},
	"$.publish":            {yaml.HeadComment(" publish branch and committer identity")},
	"$.publish.token":      {yaml.LineComment(" prefer GEOMAP_TOKEN or GITHUB_TOKEN env")},
	"$.watch":              {yaml.HeadComment(" interval between runs in watch mode")},
	"$.serve":              {yaml.HeadComment(" preview server")},
}

// WriteFile writes a commented default configuration file. Refuses to
// overwrite an existing file.
func WriteFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	c := Default()

	data, err := yaml.MarshalWithOptions(&c, yaml.WithComment(comments))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0600)
}
