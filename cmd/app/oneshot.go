package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"celestialview/internal/reading"
	"celestialview/internal/session"
)

func newFortuneCmd() *cobra.Command {
	var birthdate, topic string

	cmd := &cobra.Command{
		Use:   "fortune",
		Short: "Read a fortune for a birthdate and topic, print JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := reading.ParseTopic(topic)
			if err != nil {
				return err
			}
			req := reading.FortuneRequest{Birthdate: birthdate, Topic: t}
			if err := req.Validate(); err != nil {
				return err
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			c := a.newController(reading.KindFortune)
			pending, err := c.SubmitFortune(cmd.Context(), req)
			return printOutcome(cmd.Context(), cmd.OutOrStdout(), c, pending, err)
		},
	}

	cmd.Flags().StringVar(&birthdate, "birthdate", "", "birthdate, YYYY-MM-DD")
	cmd.Flags().StringVar(&topic, "topic", string(reading.TopicGeneral), "Love, Career, Wealth, Health, Family or General")
	_ = cmd.MarkFlagRequired("birthdate")
	return cmd
}

func newTarotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tarot",
		Short: "Draw one tarot card for today, print JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			c := a.newController(reading.KindTarot)
			pending, err := c.DrawTarot(cmd.Context())
			return printOutcome(cmd.Context(), cmd.OutOrStdout(), c, pending, err)
		},
	}
}

var errReadingFailed = errors.New("reading failed")

// printOutcome waits for the reading and prints the snapshot. A failed
// reading is still printed; the command then exits non-zero.
func printOutcome(ctx context.Context, out io.Writer, c *session.Controller, pending *session.Pending, err error) error {
	if err != nil {
		return err
	}
	select {
	case <-pending.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	snap := c.Snapshot()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if snap.Phase == session.PhaseFailed {
		fmt.Fprintln(os.Stderr, *snap.Error)
		return errReadingFailed
	}
	return nil
}
