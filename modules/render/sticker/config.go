package sticker

import (
	"fmt"
	"os"
)

// Config holds the sticker render module configuration.
type Config struct {
	// AssetsDir overrides the application assets directory holding the
	// fonts and base icons. Empty uses the application default.
	AssetsDir string `yaml:"assets_dir"`

	// HanSuffix replaces the default 社会信用 caption suffix.
	HanSuffix string `yaml:"han_suffix"`

	// LatinSuffixFull replaces the default "Social Credit" suffix.
	LatinSuffixFull string `yaml:"latin_suffix_full"`

	// LatinSuffixShort replaces the abbreviated suffix used when the Latin
	// caption would otherwise crowd the sticker.
	LatinSuffixShort string `yaml:"latin_suffix_short"`
}

func (c *Config) validate() error {
	if c.AssetsDir == "" {
		return nil
	}
	info, err := os.Stat(c.AssetsDir)
	if err != nil {
		return fmt.Errorf("render.sticker: assets_dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("render.sticker: assets_dir %s is not a directory", c.AssetsDir)
	}
	return nil
}
