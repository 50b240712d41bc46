package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/spotdemo4/quick-coach/internal/llm"
	"github.com/spotdemo4/quick-coach/internal/reveal"
	"github.com/spotdemo4/quick-coach/internal/tui"
)

const appName = "quick-coach"

var defaultURLs = map[string]string{
	"ollama": "http://localhost:11434",
}

var defaultModels = map[string]string{
	"gemini": llm.DefaultGeminiModel,
	"openai": "gpt-4o-mini",
}

type config struct {
	llm llm.Config

	db      string
	log     string
	verbose bool
	profile string
	mode    string

	delay   reveal.DelayModel
	animate bool
}

// loadEnv loads <config dir>/quick-coach.env into the environment.
func loadEnv() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		tui.PrintWarn("warning: could not get config dir: %v", err)
		return
	}

	path := filepath.Join(configDir, appName+".env")
	err = godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		tui.PrintWarn("warning: could not load %s: %v", path, err)
	}
}

// getConfig reads QC_* environment variables, then applies any flags that
// were set on the command line.
func getConfig(flags *pflag.FlagSet) (c config, err error) {
	env := func(name string) string {
		if flags != nil {
			if f := flags.Lookup(name); f != nil && f.Changed {
				return f.Value.String()
			}
		}
		return os.Getenv("QC_" + strings.ToUpper(name))
	}

	// Get provider
	c.llm.Provider = strings.ToLower(env("provider"))
	if c.llm.Provider == "" {
		c.llm.Provider = "ollama"
	}

	// Get url
	urlStr := env("url")
	if urlStr == "" {
		urlStr = defaultURLs[c.llm.Provider]
	}
	if urlStr != "" {
		c.llm.URL, err = url.Parse(urlStr)
		if err != nil {
			return c, fmt.Errorf("could not parse url: %w", err)
		}
	}

	c.llm.Model = env("model")
	if c.llm.Model == "" {
		c.llm.Model = defaultModels[c.llm.Provider]
	}
	c.llm.APIKey = os.Getenv("QC_API_KEY")

	// Get headers and options
	c.llm.Headers = map[string]string{}
	c.llm.Options = map[string]any{}
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "QC_HEADER_") {
			kv := strings.SplitN(e, "=", 2)
			if len(kv) != 2 {
				continue
			}

			c.llm.Headers[strings.TrimPrefix(kv[0], "QC_HEADER_")] = kv[1]
			continue
		}

		if strings.HasPrefix(e, "QC_OPTION_") {
			kv := strings.SplitN(e, "=", 2)
			if len(kv) != 2 {
				continue
			}

			opt := strings.ToLower(strings.TrimPrefix(kv[0], "QC_OPTION_"))

			if opt == "temperature" {
				float, err := strconv.ParseFloat(kv[1], 32)
				if err != nil {
					tui.PrintWarn("warning: invalid value for 'QC_OPTION_TEMPERATURE': %v", err)
					continue
				}

				c.llm.Options[opt] = float32(float)
				continue
			}

			c.llm.Options[opt] = kv[1]
			continue
		}
	}

	// Get timeout
	if s := env("timeout"); s != "" {
		c.llm.Timeout, err = time.ParseDuration(s)
		if err != nil {
			return c, fmt.Errorf("invalid timeout: %w", err)
		}
	}

	// Get reveal
	speed := reveal.DefaultSpeed
	if s := env("speed"); s != "" {
		speed, err = time.ParseDuration(s)
		if err != nil {
			return c, fmt.Errorf("invalid speed: %w", err)
		}
	}
	c.delay, c.animate, err = reveal.ParseMode(env("reveal"), speed)
	if err != nil {
		return c, err
	}

	// Get storage & logging
	c.db = env("db")
	if c.db == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return c, fmt.Errorf("could not get config dir: %w", err)
		}
		c.db = filepath.Join(configDir, appName, "coach.db")
	}
	c.log = env("log")
	c.verbose = env("verbose") == "true"
	c.profile = env("profile")
	c.mode = env("mode")

	return c, nil
}
