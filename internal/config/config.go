package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type SourceConfig struct {
	Name            string   `yaml:"name"`
	StartURLs       []string `yaml:"start_urls"`
	FollowPatterns  []string `yaml:"follow_patterns"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	MaxArticles     int      `yaml:"max_articles"`
	Enabled         bool     `yaml:"enabled"`
}

type DBConfig struct {
	Connection  string `yaml:"connection"`
	Database    string `yaml:"database"`
	Collections struct {
		Documents string `yaml:"documents"`
		PageCache string `yaml:"page_cache"`
		Reports   string `yaml:"reports"`
	} `yaml:"collections"`
}

type LogicConfig struct {
	DelayMS              int    `yaml:"delay_ms"`
	TimeoutSec           int    `yaml:"timeout_sec"`
	MaxConcurrentWorkers int    `yaml:"max_concurrent_workers"`
	CacheTTLHours        int    `yaml:"cache_ttl_hours"`
	MinTextLength        int    `yaml:"min_text_length"`
	UserAgent            string `yaml:"user_agent"`
}

type ReportConfig struct {
	TopN     int    `yaml:"top_n"`
	Schedule string `yaml:"schedule"`
}

type MinerConfig struct {
	DB      DBConfig                `yaml:"db"`
	Logic   LogicConfig             `yaml:"logic"`
	Report  ReportConfig            `yaml:"report"`
	Sources map[string]SourceConfig `yaml:"sources"`
}

func LoadConfig(path string) (*MinerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg MinerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("config %s: at least one source is required", path)
	}
	return &cfg, nil
}

func (c *MinerConfig) applyDefaults() {
	if c.Logic.TimeoutSec <= 0 {
		c.Logic.TimeoutSec = 30
	}
	if c.Logic.MaxConcurrentWorkers <= 0 {
		c.Logic.MaxConcurrentWorkers = 1
	}
	if c.Logic.CacheTTLHours <= 0 {
		c.Logic.CacheTTLHours = 24
	}
	if c.Logic.MinTextLength <= 0 {
		c.Logic.MinTextLength = 100
	}
	if c.Logic.UserAgent == "" {
		c.Logic.UserAgent = "Mozilla/5.0 (NewsMiner/1.0)"
	}
	if c.Report.TopN <= 0 {
		c.Report.TopN = 25
	}
	for name, src := range c.Sources {
		if src.MaxArticles <= 0 {
			src.MaxArticles = 50
		}
		if src.Name == "" {
			src.Name = name
		}
		c.Sources[name] = src
	}
}
