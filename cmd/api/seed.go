package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/telar-erp/internal/seed"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Carga la empresa de demostración",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			res, err := seed.New(rt.svc, rt.log.Component("seed")).Demo(cmd.Context())
			if errors.Is(err, seed.ErrAlreadySeeded) {
				fmt.Fprintln(cmd.OutOrStdout(), "la empresa demo ya existe")
				return nil
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "empresa: %s\n", res.CompanyID)
			fmt.Fprintf(out, "usuario: %s / %s\n", seed.DemoEmail, seed.DemoPassword)
			fmt.Fprintf(out, "productos: %d\n", len(res.Products))
			return nil
		},
	}
}
