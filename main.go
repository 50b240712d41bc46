package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spotdemo4/quick-coach/internal/coach"
	"github.com/spotdemo4/quick-coach/internal/llm"
	"github.com/spotdemo4/quick-coach/internal/profile"
	"github.com/spotdemo4/quick-coach/internal/store"
	"github.com/spotdemo4/quick-coach/internal/tui"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "AI career and startup coach",
	Long: `quick-coach recommends a career path or startup idea for your profile
and answers follow-up questions about it.

Configuration is read from <config dir>/quick-coach.env, then QC_*
environment variables, then flags.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTui,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("provider", "", "llm provider: ollama, gemini or openai (QC_PROVIDER)")
	flags.String("url", "", "provider url (QC_URL)")
	flags.String("model", "", "model name (QC_MODEL)")
	flags.String("timeout", "", "request timeout, e.g. 2m (QC_TIMEOUT)")
	flags.String("db", "", "path to the sqlite database (QC_DB)")
	flags.String("log", "", "log file, logging is off when empty (QC_LOG)")
	flags.Bool("verbose", false, "log debug messages (QC_VERBOSE)")
	flags.String("reveal", "", "reveal mode: constant, punctuation or off (QC_REVEAL)")
	flags.String("speed", "", "delay per character, e.g. 15ms (QC_SPEED)")
	flags.StringP("profile", "p", "", "profile yaml to use instead of the saved one (QC_PROFILE)")
	flags.StringP("mode", "m", "", "coach mode: career or startup (QC_MODE)")

	rootCmd.AddCommand(askCmd, recommendCmd, profileCmd, historyCmd)
}

func main() {
	loadEnv()

	if err := rootCmd.Execute(); err != nil {
		tui.PrintErr("error: %v", err)
		os.Exit(1)
	}
}

// app holds what every command needs.
type app struct {
	config config
	log    *zap.Logger
	store  *store.Store
}

func newApp(cmd *cobra.Command) (*app, error) {
	c, err := getConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}

	log, err := newLogger(c.log, c.verbose)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(c.db)
	if err != nil {
		return nil, err
	}

	log.Debug("config loaded",
		zap.String("provider", c.llm.Provider),
		zap.String("model", c.llm.Model),
		zap.String("db", c.db),
	)

	return &app{config: c, log: log, store: s}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("could not close store", zap.Error(err))
	}
	_ = a.log.Sync()
}

func (a *app) coach(ctx context.Context) (*coach.Service, error) {
	c := a.config.llm
	c.Log = a.log.Named("llm")

	provider, err := llm.New(ctx, c)
	if err != nil {
		return nil, err
	}
	a.log.Info("provider ready", zap.String("provider", provider.Name()))

	return coach.New(provider, a.log.Named("coach"), coach.WithTracker(a.store)), nil
}

// profile returns the --profile file when given, otherwise the saved one.
func (a *app) profile(ctx context.Context) (profile.UserProfile, error) {
	if a.config.profile != "" {
		return profile.Load(a.config.profile)
	}

	p, err := a.store.LoadProfile(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return p, fmt.Errorf("no profile: run '%s profile set <file>'", appName)
	}

	return p, err
}

func (a *app) mode() (coach.Mode, error) {
	if a.config.mode == "" {
		return coach.ModeCareer, nil
	}

	return coach.ParseMode(a.config.mode)
}

func runTui(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	// Check the preset mode before starting
	if a.config.mode != "" {
		if _, err := a.mode(); err != nil {
			return err
		}
	}

	// Create context
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	wg := sync.WaitGroup{}

	p, err := a.profile(ctx)
	if err != nil {
		return err
	}
	svc, err := a.coach(ctx)
	if err != nil {
		return err
	}

	// Create channels
	requests := make(chan string, 10)
	output := make(chan tui.Msg, 10)

	modes := make([]string, 0, len(coach.Modes))
	for _, m := range coach.Modes {
		modes = append(modes, string(m))
	}

	// Create tea
	model := tui.New(tui.Options{
		Version: version,
		Modes:   modes,
		Mode:    a.config.mode,
		Delay:   a.config.delay,
		Animate: a.config.animate,
	}, requests, output)
	t := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Start tea
	wg.Add(1)
	var teaErr error
	go func() {
		defer wg.Done()

		_, err := t.Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, tea.ErrInterrupted) {
			teaErr = err
		}

		// If context not yet cancelled
		if ctx.Err() == nil {
			cancel()
		}
	}()

	// Start coach
	wg.Add(1)
	var coachErr error
	go func() {
		defer wg.Done()

		w := worker{
			coach:   svc,
			store:   a.store,
			profile: p,
			log:     a.log.Named("worker"),
		}
		coachErr = w.run(ctx, requests, output)
		if coachErr != nil {
			a.log.Error("coach stopped", zap.Error(coachErr))
			t.Quit()
		}
	}()

	// Wait for both tea & coach
	wg.Wait()

	return errors.Join(teaErr, coachErr)
}
