/*
main.go - Administration CLI

COMMANDS:
  historial  Extend every contract's ledger up to a month (--hasta)
  mes        Print the monthly payment file for a reference month
  recibo     Print the tenant receipt for a recorded property-month
  liquidacion Print the owner settlement for a recorded property-month

Shares the server's configuration (environment / .env), so it operates
on the same database.
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/darioabadie/inmo/config"
	"github.com/darioabadie/inmo/contract"
	"github.com/darioabadie/inmo/indices"
	"github.com/darioabadie/inmo/ledger"
	"github.com/darioabadie/inmo/pricing"
	"github.com/darioabadie/inmo/receipt"
	"github.com/darioabadie/inmo/store/sqlite"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "inmo",
		Short: "Rent administration engine",
	}

	rootCmd.AddCommand(
		historialCmd(),
		mesCmd(),
		reciboCmd(),
		liquidacionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openEngine wires the store, resolver and manager from the shared
// configuration. The caller must Close the returned store.
func openEngine() (*sqlite.Store, *ledger.Manager, error) {
	cfg := config.New()
	log := cfg.Logger()

	st, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	resolver := pricing.NewResolver(
		indices.NewInflationClient(cfg.InflationURL, log),
		indices.NewLaborCostClient(cfg.LaborCostURL, log),
		log,
	)
	return st, ledger.NewManager(st, resolver, nil, log), nil
}

func parseMonthFlag(s string) (contract.Month, error) {
	if s == "" {
		return contract.CurrentMonth(), nil
	}
	return contract.ParseMonth(s)
}

func historialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "historial",
		Short: "Extend every contract's ledger up to a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			hasta, _ := cmd.Flags().GetString("hasta")
			until, err := parseMonthFlag(hasta)
			if err != nil {
				return err
			}

			st, manager, err := openEngine()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()
			records, err := st.Contracts(ctx)
			if err != nil {
				return fmt.Errorf("failed to list contracts: %w", err)
			}

			summary := manager.Run(ctx, records, until)
			fmt.Printf("Historial extendido hasta %s\n", summary.Until)
			fmt.Printf("  procesadas: %d  omitidas: %d  registros nuevos: %d\n",
				summary.Processed, summary.Skipped, summary.Appended)
			for _, w := range summary.Warnings {
				fmt.Printf("  aviso [%s]: %s\n", w.Property, w.Reason)
			}
			return nil
		},
	}
	cmd.Flags().String("hasta", "", "Target month (YYYY-MM, default: current month)")
	return cmd
}

func mesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mes",
		Short: "Print the monthly payment file for a reference month",
		RunE: func(cmd *cobra.Command, args []string) error {
			mes, _ := cmd.Flags().GetString("mes")
			month, err := parseMonthFlag(mes)
			if err != nil {
				return err
			}

			st, manager, err := openEngine()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()
			records, err := st.Contracts(ctx)
			if err != nil {
				return fmt.Errorf("failed to list contracts: %w", err)
			}

			entries, warnings := manager.ComputeMonth(ctx, records, month)
			fmt.Printf("Pagos %s\n", month)
			fmt.Printf("%-28s  %-20s  %14s  %14s  %14s\n",
				"Inmueble", "Inquilino", "Precio final", "Comisión", "Pago prop.")
			for _, e := range entries {
				fmt.Printf("%-28s  %-20s  %14s  %14s  %14s\n",
					e.Property, e.Tenant,
					receipt.Amount(e.FinalPrice, receipt.DefaultCurrency),
					receipt.Amount(e.Commission, receipt.DefaultCurrency),
					receipt.Amount(e.OwnerPayout, receipt.DefaultCurrency))
			}
			for _, w := range warnings {
				fmt.Printf("aviso [%s]: %s\n", w.Property, w.Reason)
			}
			return nil
		},
	}
	cmd.Flags().String("mes", "", "Reference month (YYYY-MM, default: current month)")
	return cmd
}

func reciboCmd() *cobra.Command {
	return renderCmd("recibo", "Print the tenant receipt for a recorded property-month", receipt.Render)
}

func liquidacionCmd() *cobra.Command {
	return renderCmd("liquidacion", "Print the owner settlement for a recorded property-month", receipt.RenderOwner)
}

func renderCmd(use, short string, render func(ledger.Entry) string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <inmueble>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mes, _ := cmd.Flags().GetString("mes")
			month, err := parseMonthFlag(mes)
			if err != nil {
				return err
			}

			st, _, err := openEngine()
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.Entries(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to read ledger: %w", err)
			}
			for _, e := range entries {
				if e.Month.Equal(month) {
					fmt.Print(render(e))
					return nil
				}
			}
			return fmt.Errorf("no hay registro de %s para %s", args[0], month)
		},
	}
	cmd.Flags().String("mes", "", "Recorded month (YYYY-MM, default: current month)")
	return cmd
}
