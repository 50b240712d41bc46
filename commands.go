package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spotdemo4/quick-coach/internal/chat"
	"github.com/spotdemo4/quick-coach/internal/coach"
	"github.com/spotdemo4/quick-coach/internal/markup"
	"github.com/spotdemo4/quick-coach/internal/profile"
	"github.com/spotdemo4/quick-coach/internal/reveal"
	"github.com/spotdemo4/quick-coach/internal/store"
	"github.com/spotdemo4/quick-coach/internal/tui"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a follow-up question about your latest recommendation",
	Long: `Answers a question using the latest saved recommendation for the mode.
A recommendation is generated first if none was saved yet.

The answer is revealed character by character unless QC_REVEAL=off.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Generate a recommendation for your profile",
	Args:  cobra.NoArgs,
	RunE:  runRecommend,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or replace the saved profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved profile as yaml",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileSetCmd = &cobra.Command{
	Use:   "set [file]",
	Short: "Validate a profile yaml and save it",
	Long: `Reads a profile like:

  name: Ada
  skills: [go, sql]
  interests: [data]
  experience_level: intermediate
  goals: employment
  industry: fintech
  years_experience: 4`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileSet,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past sessions, or the messages of one session",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	profileCmd.AddCommand(profileShowCmd, profileSetCmd)

	historyCmd.Flags().StringP("session", "s", "", "session id to show")
	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of rows")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	question := strings.Join(args, " ")

	mode, err := a.mode()
	if err != nil {
		return err
	}
	svc, err := a.coach(ctx)
	if err != nil {
		return err
	}

	rec, err := latestRecommendation(ctx, a.store, mode)
	if errors.Is(err, store.ErrNotFound) {
		p, err := a.profile(ctx)
		if err != nil {
			return err
		}
		rec = svc.Recommend(ctx, mode, p)
	} else if err != nil {
		return err
	}

	sessionID, err := a.store.NewSession(ctx, string(mode))
	if err != nil {
		return err
	}
	if err := a.store.SaveRecommendation(ctx, sessionID, string(mode), rec); err != nil {
		a.log.Warn("could not save recommendation", zap.Error(err))
	}

	conv := chat.New()
	asked := conv.AddUser(question)

	answer, err := svc.FollowUp(ctx, question, coach.Context(rec), mode)
	if err != nil {
		tui.PrintWarn("warning: %v", err)
	}

	reply := conv.BeginAssistant(answer)
	_ = conv.Finish(reply.ID)
	for _, m := range []chat.Message{asked, reply} {
		if err := a.store.AppendMessage(ctx, sessionID, m); err != nil {
			a.log.Warn("could not save message", zap.Error(err))
		}
	}

	return writeAnswer(ctx, cmd.OutOrStdout(), answer, a.config.delay, a.config.animate)
}

// writeAnswer prints answer without markup, revealing it when animate is set.
func writeAnswer(ctx context.Context, w io.Writer, answer string, delay reveal.DelayModel, animate bool) error {
	text := markup.Plain(markup.Parse(answer))

	if !animate {
		_, err := fmt.Fprintln(w, text)
		return err
	}

	if err := reveal.Write(ctx, w, text, delay); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func latestRecommendation(ctx context.Context, s *store.Store, mode coach.Mode) (coach.Recommendation, error) {
	switch mode {
	case coach.ModeStartup:
		var rec coach.StartupRecommendation
		if err := s.LatestRecommendation(ctx, string(mode), &rec); err != nil {
			return nil, err
		}
		return rec, nil
	default:
		var rec coach.CareerRecommendation
		if err := s.LatestRecommendation(ctx, string(mode), &rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
}

func runRecommend(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	mode, err := a.mode()
	if err != nil {
		return err
	}
	p, err := a.profile(ctx)
	if err != nil {
		return err
	}
	svc, err := a.coach(ctx)
	if err != nil {
		return err
	}

	rec := svc.Recommend(ctx, mode, p)

	sessionID, err := a.store.NewSession(ctx, string(mode))
	if err != nil {
		return err
	}
	if err := a.store.SaveRecommendation(ctx, sessionID, string(mode), rec); err != nil {
		return err
	}

	tui.PrintMarkup(rec.Markdown())
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.profile(cmd.Context())
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := profile.Load(args[0])
	if err != nil {
		return err
	}
	if err := a.store.SaveProfile(cmd.Context(), p); err != nil {
		return err
	}

	tui.Print("saved profile for %s", p.Name)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	sessionID, _ := cmd.Flags().GetString("session")
	limit, _ := cmd.Flags().GetInt("limit")
	out := cmd.OutOrStdout()

	if sessionID == "" {
		sessions, err := a.store.Sessions(ctx, limit)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			tui.Print("no sessions yet")
			return nil
		}

		for _, s := range sessions {
			fmt.Fprintf(out, "%s  %-7s  %s  %d messages\n",
				s.ID, s.Mode, s.CreatedAt.Format("2006-01-02 15:04"), s.Messages)
		}
		return nil
	}

	msgs, err := a.store.History(ctx, sessionID, limit)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		switch m.Role {
		case chat.RoleUser:
			fmt.Fprintln(out, tui.AccentTextStyle.Render("› "+m.Content))
		default:
			fmt.Fprintln(out, markup.Render(markup.Parse(m.Content), tui.MarkupStyles))
		}
		fmt.Fprintln(out)
	}

	return nil
}
