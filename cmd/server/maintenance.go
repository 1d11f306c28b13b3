package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/application"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/photostore"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/repository"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(*cobra.Command, []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			_, err = openDatabase(cfg, log)
			return err
		},
	}
}

// discardPublisher drops events; the sweep command publishes none.
type discardPublisher struct{}

func (discardPublisher) PublishEvent(context.Context, string, kafka.CloudEvent) error { return nil }

// sweepPhotosCommand repairs photo rows whose file has gone missing.
func sweepPhotosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-photos",
		Short: "Reset photo rows with missing files to the placeholder photo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			photos, err := photostore.Open(cmd.Context(), cfg.PhotoConfig)
			if err != nil {
				return err
			}

			svc := application.NewAnimalService(repository.NewGateway(db), photos, discardPublisher{},
				metrics.New(prometheus.NewRegistry()), application.AnimalServiceOptions{}, log)
			report, err := svc.SweepPhotos(cmd.Context())
			if err != nil {
				return err
			}
			log.Info("photo sweep finished", zap.Int("checked", report.Checked), zap.Int("repaired", report.Repaired))
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d photos, repaired %d\n", report.Checked, report.Repaired)
			return nil
		},
	}
}

// tokenCommand issues a session token for operators, e.g. the first admin.
func tokenCommand() *cobra.Command {
	var (
		email string
		role  string
		id    string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			r := auth.Role(role)
			if r != auth.RoleAdmin && r != auth.RoleBreeder {
				return fmt.Errorf("unknown role %q", role)
			}
			userID := uuid.New()
			if id != "" {
				if userID, err = uuid.Parse(id); err != nil {
					return fmt.Errorf("invalid --id: %w", err)
				}
			}
			token, expiresAt, err := auth.NewJWTManager(cfg.JWTConfig.Secret, ttl, ttl).Generate(userID, email, r, false)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nexpires %s\n", token, expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleAdmin), "role claim (admin|breeder)")
	cmd.Flags().StringVar(&id, "id", "", "account id claim; random when empty")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
