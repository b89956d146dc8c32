package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/davehub/parc-manager/internal/client"
	"github.com/davehub/parc-manager/internal/routeguard"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func maintenanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Browse and append maintenance history",
	}
	cmd.AddCommand(maintenanceListCmd())
	cmd.AddCommand(maintenanceAddCmd())
	return cmd
}

func maintenanceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <equipment-id>",
		Short: "Show the maintenance history of one equipment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(current, routeguard.Any); err != nil {
				return err
			}

			records, err := current.repo.ListMaintenance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("Aucune intervention enregistrée pour cet équipement.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tDESCRIPTION\tPAR\tCOÛT")
			for _, r := range records {
				performer := ""
				if r.PerformedBy != nil {
					performer = r.PerformedBy.Username
				}
				cost := ""
				if r.Cost != nil {
					cost = fmt.Sprintf("%.2f €", *r.Cost)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					r.MaintenanceDate.Format("2006-01-02"), r.Description, performer, cost)
			}
			return w.Flush()
		},
	}
}

func maintenanceAddCmd() *cobra.Command {
	var date, description, notes string
	var cost float64

	cmd := &cobra.Command{
		Use:   "add <equipment-id>",
		Short: "Append a maintenance record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(current, routeguard.Any); err != nil {
				return err
			}
			if description == "" {
				return fmt.Errorf("--description is required")
			}
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}

			input := client.MaintenanceInput{
				EquipmentID:     args[0],
				MaintenanceDate: date,
				Description:     description,
			}
			if cmd.Flags().Changed("cost") {
				input.Cost = &cost
			}
			if notes != "" {
				input.Notes = &notes
			}

			record, err := current.repo.AddMaintenance(cmd.Context(), input)
			if err != nil {
				return err
			}
			color.Green("Intervention enregistrée (%s)", record.MaintenanceDate.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "maintenance date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&description, "description", "", "what was done")
	cmd.Flags().Float64Var(&cost, "cost", 0, "cost in euros")
	cmd.Flags().StringVar(&notes, "notes", "", "additional notes")
	return cmd
}
