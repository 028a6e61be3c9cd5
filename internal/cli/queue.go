package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/imcoderdev/emergency-backend/internal/config"
	"github.com/imcoderdev/emergency-backend/internal/models"
	"github.com/imcoderdev/emergency-backend/internal/observability"
	"github.com/imcoderdev/emergency-backend/internal/repository"
	"github.com/imcoderdev/emergency-backend/internal/service"
	"github.com/imcoderdev/emergency-backend/pkg/logger"
	"github.com/imcoderdev/emergency-backend/pkg/postgres"
)

// QueueCmd returns the queue command
func QueueCmd() *cobra.Command {
	var (
		lat, lon float64
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Print the live response queue",
		Long: `Rank active incidents from the database by priority at the current moment.
Pass --lat and --lon together to apply the responder distance penalty.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			responder, err := responderFromFlags(cmd, lat, lon)
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log := logger.NewConsole(cfg.LogLevel, os.Stderr)

			ctx := cmd.Context()
			dbpool, err := postgres.NewPostgresDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer dbpool.Close()

			// Кеш не нужен: очередь всегда читается из бд
			repo := repository.NewIncidentRepository(dbpool, nil, cfg.IncidentCacheTTL)
			svc := service.NewIncidentService(repo, nil, nil, log, cfg, observability.NewMetrics(), clockwork.NewRealClock())

			queue, err := svc.GetQueue(ctx, responder, limit)
			if err != nil {
				return err
			}

			renderQueue(cmd.OutOrStdout(), queue)
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Responder latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Responder longitude")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of entries (default from QUEUE_DEFAULT_LIMIT)")

	return cmd
}

func renderQueue(w io.Writer, queue []models.QueueEntry) {
	if len(queue) == 0 {
		fmt.Fprintln(w, "No active incidents.")
		return
	}

	for i, entry := range queue {
		distance := ""
		if entry.DistanceMeters != nil {
			distance = fmt.Sprintf("  %.1f km", *entry.DistanceMeters/1000)
		}
		fmt.Fprintf(w, "%3d. %3d %-8s %-14s %s  x%d%s\n",
			i+1,
			entry.Score,
			labelText(entry.Label),
			entry.Incident.Category,
			entry.Incident.ID,
			entry.Incident.CorroborationCount,
			distance,
		)
		if entry.Incident.Description != "" {
			fmt.Fprintf(w, "     %s\n", entry.Incident.Description)
		}
	}
}
