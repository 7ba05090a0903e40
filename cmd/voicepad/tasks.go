package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"voicepad/internal/database"
	"voicepad/internal/logger"
	"voicepad/internal/sounds"
	"voicepad/internal/storage"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			logger.Info("migrations applied")
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return database.Seed(cmd.Context(), db)
		},
	}
}

func newReconcileCmd(a *app) *cobra.Command {
	var (
		deleteOrphans bool
		grace         time.Duration
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Report stored files without a sound and sounds without a file",
		Long: `Compares the asset store with the sounds table. Orphaned files are only
reported unless --delete is given; files younger than --grace are never
removed because their upload may still be committing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			files, err := storage.Open(ctx, a.cfg)
			if err != nil {
				return err
			}
			// Deleting files never touches cached listings.
			mgr := sounds.NewManager(a.deps(db, files, nil))

			report, err := mgr.Reconcile(ctx, deleteOrphans, grace)
			if err != nil {
				return err
			}
			logger.Info("reconcile finished",
				zap.Int("orphans", len(report.Orphans)),
				zap.Int("missing", len(report.Missing)),
				zap.Int("skipped", len(report.Skipped)),
				zap.Int("deleted", len(report.Deleted)),
			)
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&deleteOrphans, "delete", false, "delete orphaned files older than the grace period")
	cmd.Flags().DurationVar(&grace, "grace", sounds.DefaultOrphanGrace, "minimum age of an orphan before it may be deleted")
	return cmd
}

func printReport(w io.Writer, r sounds.ReconcileReport) {
	section := func(title string, keys []string) {
		if len(keys) == 0 {
			return
		}
		fmt.Fprintf(w, "%s (%d):\n", title, len(keys))
		for _, k := range keys {
			fmt.Fprintf(w, "  %s\n", k)
		}
	}
	section("orphaned files", r.Orphans)
	section("missing files", r.Missing)
	section("skipped (too recent)", r.Skipped)
	section("deleted", r.Deleted)
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Long:  "Hashes the password given as argument, or the first line of stdin when omitted.",
		Args:  cobra.MaximumNArgs(1),
		// Needs neither configuration nor logging.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return fmt.Errorf("password is empty")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}
