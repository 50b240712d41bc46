package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spotdemo4/quick-coach/internal/chat"
	"github.com/spotdemo4/quick-coach/internal/coach"
	"github.com/spotdemo4/quick-coach/internal/ctxutil"
	"github.com/spotdemo4/quick-coach/internal/profile"
	"github.com/spotdemo4/quick-coach/internal/store"
	"github.com/spotdemo4/quick-coach/internal/tui"
)

// worker answers the TUI. The first request names the mode, every request
// after that is a question.
type worker struct {
	coach   *coach.Service
	store   *store.Store
	profile profile.UserProfile
	log     *zap.Logger
}

func (w worker) run(ctx context.Context, requests <-chan string, output chan<- tui.Msg) error {
	// Wait for mode
	name, ok := ctxutil.Next(ctx, requests)
	if !ok {
		return nil
	}
	mode, err := coach.ParseMode(name)
	if err != nil {
		return err
	}

	if !ctxutil.Send(ctx, output, tui.Msg{Type: tui.MsgLoading}) {
		return nil
	}

	rec := w.coach.Recommend(ctx, mode, w.profile)
	if err := ctx.Err(); err != nil {
		return nil
	}

	sessionID, err := w.store.NewSession(ctx, string(mode))
	if err != nil {
		return err
	}
	if err := w.store.SaveRecommendation(ctx, sessionID, string(mode), rec); err != nil {
		w.log.Warn("could not save recommendation", zap.Error(err))
	}
	w.log.Info("session started", zap.String("session", sessionID), zap.String("mode", string(mode)))

	if !ctxutil.Send(ctx, output, tui.Msg{Type: tui.MsgRecommendation, Text: rec.Markdown()}) {
		return nil
	}

	conv := chat.New()
	previous := coach.Context(rec)
	for {
		question, ok := ctxutil.Next(ctx, requests)
		if !ok {
			return nil
		}

		w.save(ctx, sessionID, conv.AddUser(question))

		if !ctxutil.Send(ctx, output, tui.Msg{Type: tui.MsgLoading}) {
			return nil
		}

		kind := tui.MsgAnswer
		answer, err := w.coach.FollowUp(ctx, question, previous, mode)
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			kind = tui.MsgError
			if answer == "" {
				answer = chat.Apology
			}
		}

		reply := conv.BeginAssistant(answer)
		_ = conv.Finish(reply.ID)
		w.save(ctx, sessionID, reply)

		if !ctxutil.Send(ctx, output, tui.Msg{Type: kind, Text: answer}) {
			return nil
		}
	}
}

func (w worker) save(ctx context.Context, sessionID string, m chat.Message) {
	if err := w.store.AppendMessage(ctx, sessionID, m); err != nil {
		w.log.Warn("could not save message", zap.String("role", string(m.Role)), zap.Error(err))
	}
}
