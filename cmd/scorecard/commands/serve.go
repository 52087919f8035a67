package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/scorecard/internal/api"
	"github.com/wonny/scorecard/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "스코어카드 API 서버 실행",
	Long: `스코어카드 조회용 HTTP API 서버를 실행합니다.

Endpoints:
  GET /health
  GET /api/scorecards/{code}?name=삼성전자
  GET /api/results?source=postgres:2026-03-02
  GET /api/bands

Examples:
  go run ./cmd/scorecard serve
  PORT=9000 go run ./cmd/scorecard serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	handler := handlers.NewScorecardHandler(a.runner, a.store, a.table, a.cfg.Scorecard.Output, a.log)
	server := api.New(a.cfg, a.log, api.NewRouter(handler, a.log))

	fmt.Printf("✅ API server listening on :%s\n", a.cfg.Port)
	if err := server.Run(ctx); err != nil {
		return err
	}

	fmt.Println("Server exited")
	return nil
}
