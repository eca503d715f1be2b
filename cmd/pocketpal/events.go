package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pocketpal/internal/amqp"
)

func newEventsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect ledger change events",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "tail",
		Short: "Print ledger events from the AMQP relay queue until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.RelayEnabled() {
				return errors.New("AMQP_URL is not set; the event relay is disabled")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := amqp.NewClientWithRetry(ctx, a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue, 5)
			if err != nil {
				return err
			}
			defer client.Close()

			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			err = client.ConsumeLedgerEvents(ctx, func(msg *amqp.LedgerEventMessage) error {
				_, err := fmt.Fprintf(out, "%s\t%s\t%s\n",
					msg.OccurredAt.In(loc).Format(time.RFC3339), msg.Event, msg.ID)
				return err
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	})

	return cmd
}
