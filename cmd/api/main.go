// Command api es la CLI de Telar ERP: servidor HTTP, migraciones, datos demo y smoke test.
//
// @title                       Telar ERP API
// @version                     1.0
// @description                 ERP multiempresa para la industria textil.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "telar",
		Short:         "Telar ERP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd(), newSmokeCmd())
	return root
}
