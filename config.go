package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"text/template"

	"github.com/goccy/go-yaml"
)

// Config holds all applications configuration settings.
type Config struct {
	Global    Global                      `yaml:"global"`
	Providers map[string]ProviderOverride `yaml:"providers"`
}

// Global holds defaults for the installation prompts.
type Global struct {
	InstallDir  string `yaml:"installDir"`
	Memory      int    `yaml:"memory"`
	VendorFlags *bool  `yaml:"vendorFlags"`
	Session     *bool  `yaml:"session"`
	UserAgent   string `yaml:"userAgent"`
}

// ProviderOverride is either a base url or a partial ProviderSpec.
type ProviderOverride struct {
	String *string
	Spec   *ProviderSpec
}

func init() {
	yaml.RegisterCustomUnmarshaler(func(t *ProviderOverride, b []byte) error {
		var (
			v   any
			err error
		)
		if err = yaml.Unmarshal(b, &v); err != nil {
			return err
		}
		switch vv := v.(type) {
		case string:
			t.String = &vv
		case map[string]any:
			var tt ProviderSpec
			if err = yaml.Unmarshal(b, &tt); err == nil {
				t.Spec = &tt
			}
		default:
			err = fmt.Errorf("invalid type: %v", reflect.TypeOf(v))
		}
		return err
	})
}

// LoadConfig reads the configuration from a reader into `cfg`.
func LoadConfig(r io.Reader, cfg *Config) error {
	if r == nil {
		return nil
	}
	err := yaml.NewDecoder(r).Decode(cfg)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// LoadConfigFile reads the configuration a file into `cfg`.
// A missing file leaves `cfg` untouched.
func LoadConfigFile(name string, cfg *Config) error {
	file, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()
	return LoadConfig(file, cfg)
}

func renderTemplate(tmpl string, data any) (string, error) {
	tpl := template.New("")

	tpl = tpl.Funcs(template.FuncMap{
		"trimPrefix": func(prefix string, s string) string {
			return strings.TrimPrefix(s, prefix)
		},
	})

	tpl, err := tpl.Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var w bytes.Buffer
	if err := tpl.Execute(&w, data); err != nil {
		return "", err
	}

	return w.String(), nil
}
