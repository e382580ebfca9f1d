package main

import (
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/dashboard"
	"github.com/2beens/fittrack/internal/settings"
	"github.com/2beens/fittrack/internal/users"
	"github.com/2beens/fittrack/internal/workouts"
	"github.com/2beens/fittrack/pkg"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var snapshotCmdFlags struct {
	Username string
	Date     string
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the dashboard numbers of a user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		location, err := cfg.Location()
		if err != nil {
			return err
		}

		today := pkg.Today(location)
		if snapshotCmdFlags.Date != "" {
			today, err = pkg.ParseDate(snapshotCmdFlags.Date)
			if err != nil {
				return err
			}
		}

		dbPool, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer dbPool.Close()

		user, err := users.NewRepo(dbPool).ByUsername(ctx, snapshotCmdFlags.Username)
		if err != nil {
			return fmt.Errorf("get user [%s]: %w", snapshotCmdFlags.Username, err)
		}

		workoutsRepo := workouts.NewRepo(dbPool)
		service := dashboard.NewService(workoutsRepo, settings.NewRepo(dbPool), dashboard.ServiceParams{
			MaxLookbackDays: cfg.StreakMaxLookbackDays,
		})
		snapshot, err := service.Snapshot(ctx, user.ID, today)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}

		lastWorkout := "never"
		last, err := workoutsRepo.MostRecentDate(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("last workout: %w", err)
		}
		if last != nil {
			lastWorkout = fmt.Sprintf("%s (%s)", pkg.FormatDate(*last), humanize.RelTime(*last, today.Add(time.Second), "ago", "from now"))
		}

		fmt.Printf("user:        %s [%d]\n", user.Username, user.ID)
		fmt.Printf("date:        %s\n", pkg.FormatDate(today))
		fmt.Printf("streak:      %d days\n", snapshot.Streak)
		fmt.Printf("sessions 7d: %d\n", snapshot.Sessions7d)
		fmt.Printf("volume 7d:   %s kg\n", humanize.CommafWithDigits(snapshot.Volume7d, 1))
		fmt.Printf("trend:       %s\n", snapshot.TrendLabel)
		fmt.Printf("last:        %s, %s\n", snapshot.LastLabel, lastWorkout)
		fmt.Printf("today:       %s, %s\n", snapshot.DayChip, snapshot.ActionTitle)
		fmt.Printf("next step:   %s\n", snapshot.NextStep)
		return nil
	},
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotCmdFlags.Username, "user", "u", "", "username")
	snapshotCmd.Flags().StringVarP(&snapshotCmdFlags.Date, "date", "d", "", "day to compute the dashboard for, YYYY-MM-DD (default today)")
	_ = snapshotCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(snapshotCmd)
}
