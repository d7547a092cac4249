package export

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/shrimpsizemoose/trekker/logger"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/avolkhin/sqlarena/internal/app"
	"github.com/avolkhin/sqlarena/internal/rank"
	"github.com/avolkhin/sqlarena/internal/store"
)

// GSheetExporter pushes competition standings into a spreadsheet on a cron
// schedule, one job per configured export.
type GSheetExporter struct {
	config        *app.Config
	store         store.MetadataStore
	scheduler     *gocron.Scheduler
	sheetsService *sheets.Service
}

func NewGSheetExporter(config *app.Config, metaStore store.MetadataStore) (*GSheetExporter, error) {
	ctx := context.Background()

	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(config.GSheet.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	e := &GSheetExporter{
		config:        config,
		store:         metaStore,
		scheduler:     gocron.NewScheduler(time.UTC),
		sheetsService: svc,
	}

	for _, cfg := range config.GSheet.Exports {
		cfg := cfg
		_, err := e.scheduler.Cron(cfg.Schedule).Do(func() {
			if err := e.Export(cfg); err != nil {
				logger.Error.Printf("Export of competition %d failed: %v", cfg.CompetitionID, err)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to schedule export: %w", err)
		}
	}

	e.scheduler.StartAsync()
	return e, nil
}

func (e *GSheetExporter) Stop() {
	e.scheduler.Stop()
}

// Export rewrites the standings block of one sheet from scratch.
func (e *GSheetExporter) Export(cfg app.GSheetExport) error {
	standings, err := e.store.FetchStandings(cfg.CompetitionID)
	if err != nil {
		return fmt.Errorf("failed to fetch standings: %w", err)
	}
	placed := rank.AssignPlaces(standings)

	values := [][]interface{}{
		{"place", "user_id", "total_score", "last_time"},
	}
	for _, s := range placed {
		values = append(values, []interface{}{
			s.Place,
			s.UserID,
			s.TotalScore,
			time.Unix(s.LastTime, 0).UTC().Format("2006-01-02 15:04:05"),
		})
	}
	values = append(values, []interface{}{
		fmt.Sprintf("UPD: %s", time.Now().UTC().Format("2 January 15:04")),
	})

	writeRange := fmt.Sprintf("%s!A1", cfg.SheetName)
	_, err = e.sheetsService.Spreadsheets.Values.Update(cfg.SheetID, writeRange,
		&sheets.ValueRange{Values: values}).ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("failed to update sheet: %w", err)
	}

	return nil
}
