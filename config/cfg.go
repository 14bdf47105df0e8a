package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/maruel/natural"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	ServerConfig struct {
		Listen       string   `yaml:"listen" validate:"required,hostname_port"`
		ReadTimeout  Duration `yaml:"read_timeout"`
		WriteTimeout Duration `yaml:"write_timeout"`
		TemplateRoot string   `yaml:"template_root,omitempty" sanitize:"path_clean"`
	}

	// BaseConfig describes a route's base fragment. All fields are
	// optional: a sourceless base resolves to the route's default
	// template file under the server template root.
	BaseConfig struct {
		URL    string `yaml:"url,omitempty"`
		File   string `yaml:"file,omitempty"`
		Inline string `yaml:"inline,omitempty"`
	}

	FragmentConfig struct {
		Name           string   `yaml:"name" validate:"required"`
		URL            string   `yaml:"url,omitempty"`
		File           string   `yaml:"file,omitempty"`
		Inline         string   `yaml:"inline,omitempty"`
		Type           BodyKind `yaml:"type,omitempty"`
		Required       bool     `yaml:"required,omitempty"`
		Models         []string `yaml:"models,omitempty" validate:"dive,required"`
		MissingMessage string   `yaml:"missing_message,omitempty"`
		ErrorMessage   string   `yaml:"error_message,omitempty"`
	}

	RouteConfig struct {
		Name      string           `yaml:"name" validate:"required"`
		Path      string           `yaml:"path,omitempty"`
		Base      BaseConfig       `yaml:"base,omitempty"`
		Fragments []FragmentConfig `yaml:"fragments,omitempty" validate:"dive"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Server    ServerConfig   `yaml:"server"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
		Routes    []RouteConfig  `yaml:"routes" validate:"dive"`
	}
)

// Fields that may carry template or marker syntax and must never be expanded
// while the configuration template is processed.
var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField("inline"),
	gencfg.WithDoNotExpandField("missing_message"),
	gencfg.WithDoNotExpandField("error_message"),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if haveFile {
		// overwrite cfg values with values from the file
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		cfg, err = unmarshalConfig(data, cfg, haveFile)
		if err != nil {
			return nil, fmt.Errorf("failed to process configuration file: %w", err)
		}
	}
	if err := cfg.checkRoutes(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkRoutes enforces the constraints the struct tags cannot express:
// route and fragment names must be unique, a named fragment needs exactly
// one content source.
func (c *Config) checkRoutes() error {
	routes := make(map[string]struct{}, len(c.Routes))
	for _, rt := range c.Routes {
		if _, dup := routes[rt.Name]; dup {
			return fmt.Errorf("duplicate route name %q", rt.Name)
		}
		routes[rt.Name] = struct{}{}

		frags := make(map[string]struct{}, len(rt.Fragments))
		for _, fc := range rt.Fragments {
			if _, dup := frags[fc.Name]; dup {
				return fmt.Errorf("route %q: duplicate fragment name %q", rt.Name, fc.Name)
			}
			frags[fc.Name] = struct{}{}

			sources := 0
			for _, s := range []string{fc.URL, fc.File, fc.Inline} {
				if len(s) > 0 {
					sources++
				}
			}
			if sources != 1 {
				return fmt.Errorf("route %q: fragment %q must have exactly one of url, file or inline", rt.Name, fc.Name)
			}
		}
	}
	return nil
}

// FragmentNames returns names of the route's fragments in natural sort
// order, for logs and diagnostics.
func (rt *RouteConfig) FragmentNames() []string {
	names := make([]string, 0, len(rt.Fragments))
	for i := range rt.Fragments {
		names = append(names, rt.Fragments[i].Name)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// Prepare generates configuration file from template and returns it as a
// byte slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
