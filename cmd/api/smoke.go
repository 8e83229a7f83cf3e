package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/telar-erp/internal/smoke"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

func newSmokeCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Recorre los flujos principales contra una API en ejecución",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(logger.Config{Env: "development", Level: "info", Output: cmd.ErrOrStderr()})
			rep := smoke.NewClient(baseURL, timeout, log).Run(cmd.Context())
			out := cmd.OutOrStdout()
			for _, s := range rep.Steps {
				mark := "OK  "
				if s.Err != nil {
					mark = "FAIL"
				}
				fmt.Fprintf(out, "%s %-14s %3d %s\n", mark, s.Name, s.Status, s.Elapsed.Round(time.Millisecond))
			}
			if !rep.OK() {
				return fmt.Errorf("smoke test falló")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "URL base de la API")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "timeout por petición")
	return cmd
}
