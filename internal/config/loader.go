package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".domainscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// fileConfig mirrors the YAML layout. Timeouts are whole seconds in the
// file; booleans use pointers so an omitted module keeps its default
// instead of being forced off.
type fileConfig struct {
	Modules struct {
		Subdomains    *bool `yaml:"subdomains"`
		Whois         *bool `yaml:"whois"`
		DNS           *bool `yaml:"dns"`
		PassiveEmails *bool `yaml:"passive_emails"`
		Crawler       *bool `yaml:"crawler"`
		Wayback       *bool `yaml:"wayback"`
		JSParsing     *bool `yaml:"js_parsing"`
		Scraping      *bool `yaml:"scraping"`
	} `yaml:"modules"`

	Limits struct {
		MaxDNS       *int `yaml:"max_dns"`
		MaxPages     *int `yaml:"max_pages"`
		MaxScripts   *int `yaml:"max_scripts"`
		WaybackURLs  *int `yaml:"wayback_urls"`
		WaybackPages *int `yaml:"wayback_pages"`
	} `yaml:"limits"`

	Timeouts struct {
		HTTP       *int `yaml:"http"`
		DNS        *int `yaml:"dns"`
		Whois      *int `yaml:"whois"`
		Subdomains *int `yaml:"subdomains"`
		Wayback    *int `yaml:"wayback"`
		Render     *int `yaml:"render"`
	} `yaml:"timeouts"`

	BatchSize   *int   `yaml:"batch_size"`
	UserAgent   string `yaml:"user_agent"`
	MaxBodySize *int64 `yaml:"max_body_size"`
	DBDir       string `yaml:"db_dir"`
}

// LoadConfigFile merges settings from a YAML file into cfg. Values not
// present in the file keep their current (default) values. If the file
// does not exist, ErrConfigNotFound is returned; callers decide whether
// that is fatal based on whether the path was explicit.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return ErrConfigNotFound
		}
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	applyBool(&cfg.Modules.Subdomains, fc.Modules.Subdomains)
	applyBool(&cfg.Modules.Whois, fc.Modules.Whois)
	applyBool(&cfg.Modules.DNS, fc.Modules.DNS)
	applyBool(&cfg.Modules.PassiveEmails, fc.Modules.PassiveEmails)
	applyBool(&cfg.Modules.Crawler, fc.Modules.Crawler)
	applyBool(&cfg.Modules.Wayback, fc.Modules.Wayback)
	applyBool(&cfg.Modules.JSParsing, fc.Modules.JSParsing)
	applyBool(&cfg.Modules.Scraping, fc.Modules.Scraping)

	applyInt(&cfg.Limits.MaxDNS, fc.Limits.MaxDNS)
	applyInt(&cfg.Limits.MaxPages, fc.Limits.MaxPages)
	applyInt(&cfg.Limits.MaxScripts, fc.Limits.MaxScripts)
	applyInt(&cfg.Limits.WaybackURLs, fc.Limits.WaybackURLs)
	applyInt(&cfg.Limits.WaybackPages, fc.Limits.WaybackPages)

	applySeconds(&cfg.Timeouts.HTTP, fc.Timeouts.HTTP)
	applySeconds(&cfg.Timeouts.DNS, fc.Timeouts.DNS)
	applySeconds(&cfg.Timeouts.Whois, fc.Timeouts.Whois)
	applySeconds(&cfg.Timeouts.Subdomains, fc.Timeouts.Subdomains)
	applySeconds(&cfg.Timeouts.Wayback, fc.Timeouts.Wayback)
	applySeconds(&cfg.Timeouts.Render, fc.Timeouts.Render)

	applyInt(&cfg.BatchSize, fc.BatchSize)
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.MaxBodySize != nil {
		cfg.MaxBodySize = *fc.MaxBodySize
	}
	if fc.DBDir != "" {
		cfg.DBDir = fc.DBDir
	}

	return nil
}

// FindConfigFile searches for the configuration file:
// 1. the explicit path when specified
// 2. .domainscan in the current directory
// 3. .domainscan in the user's home directory
//
// Returns the path if found, or empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func applyInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func applySeconds(dst *time.Duration, src *int) {
	if src != nil {
		*dst = time.Duration(*src) * time.Second
	}
}
