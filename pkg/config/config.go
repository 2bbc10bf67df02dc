// Package config loads the video description file.
package config

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"time"

	"github.com/user/yuvplay/pkg/pipeline"
	"github.com/user/yuvplay/pkg/ports"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "video.yaml"

// Access modes select the frame store implementation.
const (
	AccessRandom  = "random"
	AccessStream  = "stream"
	AccessPreload = "preload"
)

// Display names select the display sink.
const (
	DisplayTerminal = "terminal"
	DisplayPNG      = "png"
	DisplayNull     = "null"
)

// Color ranges for the I420 converter.
const (
	RangeLimited = "limited"
	RangeFull    = "full"
)

// Trailing byte policies.
const (
	TrailingIgnore = "ignore"
	TrailingWarn   = "warn"
)

// Settings holds the optional keys. Zero values are never used directly;
// Defaults fills them in.
type Settings struct {
	AccessMode    string
	Display       string
	OutputDir     string
	Prefetch      bool
	ColorRange    string
	TrailingBytes string

	// Pace overrides the inter-frame delay. Negative means 1/FrameRate.
	Pace time.Duration
}

// Config is the loaded configuration.
type Config struct {
	Source pipeline.VideoSource
	Settings
}

// fileConfig mirrors the YAML document. Required keys are pointers so a
// missing key can be told apart from a zero value.
type fileConfig struct {
	InputFile *string    `yaml:"InputFile"`
	Width     *strictInt `yaml:"Width"`
	Height    *strictInt `yaml:"Height"`
	FrameRate *float64   `yaml:"FrameRate"`

	AccessMode    *string `yaml:"AccessMode"`
	Display       *string `yaml:"Display"`
	OutputDir     *string `yaml:"OutputDir"`
	Prefetch      *bool   `yaml:"Prefetch"`
	ColorRange    *string `yaml:"ColorRange"`
	TrailingBytes *string `yaml:"TrailingBytes"`
	Pace          *string `yaml:"Pace"`
}

// strictInt accepts only YAML integers. yaml.v3 would otherwise truncate
// a float such as 2.5 into an int field.
type strictInt int

func (i *strictInt) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!int" {
		return fmt.Errorf("line %d: expected an integer, got %q", node.Line, node.Value)
	}
	var v int
	if err := node.Decode(&v); err != nil {
		return err
	}
	*i = strictInt(v)
	return nil
}

// Defaults returns the optional settings used when a key is absent.
func Defaults() Settings {
	return Settings{
		AccessMode:    AccessRandom,
		Display:       DisplayTerminal,
		OutputDir:     "./frames",
		Prefetch:      false,
		ColorRange:    RangeLimited,
		TrailingBytes: TrailingIgnore,
		Pace:          -1,
	}
}

// Load reads the configuration at path and derives the video source from
// the size of the referenced raw file. A relative InputFile is resolved
// against the directory of the configuration file.
func Load(fs ports.FileSystem, path string) (Config, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", pipeline.ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", pipeline.ErrConfigMalformed, path, err)
	}

	if err := fc.checkRequired(); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", pipeline.ErrConfigMalformed, path, err)
	}

	geometry := pipeline.Geometry{Width: int(*fc.Width), Height: int(*fc.Height)}
	if err := geometry.Validate(); err != nil {
		return Config{}, err
	}

	if *fc.FrameRate <= 0 {
		return Config{}, fmt.Errorf("%w: %s: FrameRate must be positive, got %g",
			pipeline.ErrConfigMalformed, path, *fc.FrameRate)
	}

	settings, err := fc.settings()
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", pipeline.ErrConfigMalformed, path, err)
	}

	input := *fc.InputFile
	if !filepath.IsAbs(input) {
		input = filepath.Join(filepath.Dir(path), input)
	}

	size, err := fs.Size(input)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", pipeline.ErrInputFileNotFound, input)
		}
		return Config{}, fmt.Errorf("stat input file: %w", err)
	}

	source, err := pipeline.NewVideoSource(input, geometry, *fc.FrameRate, size)
	if err != nil {
		return Config{}, err
	}

	return Config{Source: source, Settings: settings}, nil
}

func (fc fileConfig) checkRequired() error {
	var missing []string
	if fc.InputFile == nil || *fc.InputFile == "" {
		missing = append(missing, "InputFile")
	}
	if fc.Width == nil {
		missing = append(missing, "Width")
	}
	if fc.Height == nil {
		missing = append(missing, "Height")
	}
	if fc.FrameRate == nil {
		missing = append(missing, "FrameRate")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required keys %v", missing)
	}
	return nil
}

func (fc fileConfig) settings() (Settings, error) {
	s := Defaults()

	if fc.AccessMode != nil {
		s.AccessMode = *fc.AccessMode
	}
	if fc.Display != nil {
		s.Display = *fc.Display
	}
	if fc.OutputDir != nil {
		s.OutputDir = *fc.OutputDir
	}
	if fc.Prefetch != nil {
		s.Prefetch = *fc.Prefetch
	}
	if fc.ColorRange != nil {
		s.ColorRange = *fc.ColorRange
	}
	if fc.TrailingBytes != nil {
		s.TrailingBytes = *fc.TrailingBytes
	}
	if fc.Pace != nil {
		d, err := time.ParseDuration(*fc.Pace)
		if err != nil {
			return s, fmt.Errorf("invalid Pace: %v", err)
		}
		if d < 0 {
			return s, fmt.Errorf("Pace must not be negative, got %s", d)
		}
		s.Pace = d
	}

	return s, s.validate()
}

func (s Settings) validate() error {
	if err := oneOf("AccessMode", s.AccessMode, AccessRandom, AccessStream, AccessPreload); err != nil {
		return err
	}
	if err := oneOf("Display", s.Display, DisplayTerminal, DisplayPNG, DisplayNull); err != nil {
		return err
	}
	if err := oneOf("ColorRange", s.ColorRange, RangeLimited, RangeFull); err != nil {
		return err
	}
	return oneOf("TrailingBytes", s.TrailingBytes, TrailingIgnore, TrailingWarn)
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q", key, value)
}

// Overrides holds command-line values that replace file settings.
// Nil fields keep the file value.
type Overrides struct {
	AccessMode *string
	Display    *string
	OutputDir  *string
	Prefetch   *bool
	Pace       *time.Duration
}

// Apply replaces settings with the non-nil overrides. On error c is left
// unchanged.
func (c *Config) Apply(o Overrides) error {
	s := c.Settings
	if o.AccessMode != nil {
		s.AccessMode = *o.AccessMode
	}
	if o.Display != nil {
		s.Display = *o.Display
	}
	if o.OutputDir != nil {
		s.OutputDir = *o.OutputDir
	}
	if o.Prefetch != nil {
		s.Prefetch = *o.Prefetch
	}
	if o.Pace != nil {
		if *o.Pace < 0 {
			return fmt.Errorf("pace must not be negative, got %s", *o.Pace)
		}
		s.Pace = *o.Pace
	}
	if err := s.validate(); err != nil {
		return err
	}
	c.Settings = s
	return nil
}

// PlaybackPace returns the configured pace, or one frame interval at the
// declared frame rate when no pace was set.
func (c Config) PlaybackPace() time.Duration {
	if c.Pace >= 0 {
		return c.Pace
	}
	return c.Source.FrameInterval()
}

// LogSummary prints the configuration banner and, under the warn policy,
// reports an incomplete trailing frame.
func LogSummary(log ports.Logger, c Config) {
	src := c.Source
	log.Info("== Configuration =====================================")
	log.Info(" Input File   : %s", src.Path)
	log.Info(" Width        : %d", src.Geometry.Width)
	log.Info(" Height       : %d", src.Geometry.Height)
	log.Info(" Frame Rate   : %g", src.FrameRate)
	log.Info(" Frame Number : %d", src.FrameCount)
	log.Info(" Access Mode  : %s", c.AccessMode)
	log.Info("=======================================================")

	if c.TrailingBytes == TrailingWarn {
		if n := src.TrailingBytes(); n > 0 {
			log.Warn("Ignoring %d trailing bytes after frame %d", n, src.FrameCount)
		}
	}
}
