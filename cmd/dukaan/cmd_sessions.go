package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukaan-pos/dukaan/app/jobs"
	"github.com/dukaan-pos/dukaan/app/repositories"
	"github.com/dukaan-pos/dukaan/internal/daemon"
	"github.com/dukaan-pos/dukaan/pkg/event"
)

// dukaan sessions:close — force-close all open cash sessions right now,
// outside the scheduled end-of-day boundary.
var sessionsCloseCmd = &cobra.Command{
	Use:   "sessions:close",
	Short: "Force-close every open cash session on the remote store",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := daemon.OpenRemote()
		if err != nil {
			return fmt.Errorf("remote store unreachable: %w", err)
		}

		job := jobs.NewSessionClosureJob(repositories.NewSessions(db))
		runner := jobs.NewRunner(event.NewBus())
		return runner.Dispatch(cmd.Context(), job)
	},
}
