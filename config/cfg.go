package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	ExtractConfig struct {
		BaseURL       string `yaml:"base_url" validate:"omitempty,url"`
		WarnUnmatched bool   `yaml:"warn_unmatched"`
	}

	FontsConfig struct {
		Download bool `yaml:"download"`
	}

	ImagesConfig struct {
		UseBroken   bool    `yaml:"use_broken"`
		ScaleFactor float64 `yaml:"scale_factor" validate:"gte=0.0,lte=8.0"`
		JPEGQuality int     `yaml:"jpeg_quality" validate:"min=40,max=100"`
	}

	PreviewConfig struct {
		TemplatePath string        `yaml:"template_path" sanitize:"assure_file_access"`
		Logo         string        `yaml:"logo" validate:"required"`
		Width        int           `yaml:"width" validate:"min=1,max=16384"`
		Height       int           `yaml:"height" validate:"min=1,max=16384"`
		Unit         string        `yaml:"unit" validate:"oneof=px % em rem pt vh vw"`
		FetchTimeout time.Duration `yaml:"fetch_timeout" validate:"gte=0"`
		Fonts        FontsConfig   `yaml:"fonts"`
		Images       ImagesConfig  `yaml:"images"`
	}

	DocumentConfig struct {
		Extract ExtractConfig `yaml:"extract"`
		Preview PreviewConfig `yaml:"preview"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
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
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
