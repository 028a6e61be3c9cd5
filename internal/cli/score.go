package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/imcoderdev/emergency-backend/internal/geo"
	"github.com/imcoderdev/emergency-backend/internal/models"
	"github.com/imcoderdev/emergency-backend/internal/priority"
)

// ScoreCmd returns the score command
func ScoreCmd() *cobra.Command {
	var (
		file     string
		lat, lon float64
		at       string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Explain the priority of a single incident",
		Long: `Read an incident from a JSON file and print every term of its priority score.
Works offline: no database or network access is needed.

Pass --lat and --lon together to include the responder distance penalty.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			incident, err := readIncident(file)
			if err != nil {
				return err
			}

			responder, err := responderFromFlags(cmd, lat, lon)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			if at != "" {
				now, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at value: %w", err)
				}
			}

			renderBreakdown(cmd.OutOrStdout(), incident, priority.Compute(incident, responder, now))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to incident JSON")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Responder latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Responder longitude")
	cmd.Flags().StringVar(&at, "at", "", "Evaluation time (RFC3339), defaults to now")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readIncident(path string) (*models.Incident, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read incident file: %w", err)
	}
	incident := &models.Incident{}
	if err := json.Unmarshal(raw, incident); err != nil {
		return nil, fmt.Errorf("failed to parse incident file: %w", err)
	}
	return incident, nil
}

// responderFromFlags возвращает nil, если координаты не заданы
func responderFromFlags(cmd *cobra.Command, lat, lon float64) (*geo.Point, error) {
	latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
	if latSet != lonSet {
		return nil, fmt.Errorf("--lat and --lon must be provided together")
	}
	if !latSet {
		return nil, nil
	}
	p := &geo.Point{Latitude: lat, Longitude: lon}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func renderBreakdown(w io.Writer, incident *models.Incident, b priority.Breakdown) {
	fmt.Fprintf(w, "Incident %s [%s, %s, %s]\n", incident.ID, incident.Category, incident.Severity, incident.Status)
	fmt.Fprintf(w, "  %-22s %+d\n", "severity base", b.SeverityBase)
	fmt.Fprintf(w, "  %-22s %+d\n", "time decay", b.TimeDecay)
	fmt.Fprintf(w, "  %-22s %+d\n", "corroboration boost", b.CorroborationBoost)
	fmt.Fprintf(w, "  %-22s %+d\n", "verification bonus", b.VerificationBonus)
	fmt.Fprintf(w, "  %-22s %+d\n", "status adjustment", b.StatusAdjustment)
	fmt.Fprintf(w, "  %-22s %+d\n", "category bonus", b.CategoryBonus)
	fmt.Fprintf(w, "  %-22s -%.1f\n", "distance penalty", b.DistancePenalty)
	fmt.Fprintf(w, "  %-22s %d %s\n", "total", b.Total, labelText(priority.Label(b.Total)))
}

func labelText(label models.PriorityLabel) string {
	switch label {
	case models.PriorityCritical:
		return color.New(color.FgRed, color.Bold).Sprint(label)
	case models.PriorityHigh:
		return color.New(color.FgYellow).Sprint(label)
	case models.PriorityMedium:
		return color.New(color.FgCyan).Sprint(label)
	default:
		return color.New(color.FgGreen).Sprint(label)
	}
}
