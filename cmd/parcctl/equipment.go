package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/davehub/parc-manager/internal/client"
	"github.com/davehub/parc-manager/internal/controller"
	"github.com/davehub/parc-manager/internal/routeguard"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// statusBadge colors a status the way the web UI did: green in service,
// red broken, yellow anything else.
func statusBadge(status string) string {
	switch status {
	case "En service":
		return color.GreenString(status)
	case "En panne":
		return color.RedString(status)
	default:
		return color.YellowString(status)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func assignedName(e *client.Equipment) string {
	if e.AssignedTo == nil {
		return "Non attribué"
	}
	return e.AssignedTo.Username
}

func equipmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equipments",
		Short: "Browse and manage the equipment fleet",
	}
	cmd.AddCommand(equipmentsListCmd())
	cmd.AddCommand(equipmentsGetCmd())
	cmd.AddCommand(equipmentsCreateCmd())
	cmd.AddCommand(equipmentsUpdateCmd())
	cmd.AddCommand(equipmentsDeleteCmd())
	return cmd
}

func equipmentsListCmd() *cobra.Command {
	var search, eqType, status, assignedTo string
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List equipment with filters and pagination",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(current, routeguard.Any); err != nil {
				return err
			}

			list := controller.NewEquipmentList(current.repo, current.guard, current.cfg.App.PageSize)
			list.SetSearch(search)
			list.SetType(eqType)
			list.SetStatus(status)
			list.SetAssignedTo(assignedTo)
			if page > 1 {
				list.SetPage(page)
			}

			if err := list.Load(cmd.Context()); err != nil {
				if msg := list.Message(); msg != "" {
					fmt.Fprintln(os.Stderr, msg)
				}
				return err
			}

			if list.Empty() {
				fmt.Println("Aucun équipement trouvé.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNOM\tTYPE\tN° SÉRIE\tSTATUT\tATTRIBUÉ À\tLOCALISATION")
			for _, e := range list.Items() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Name, e.Type, e.SerialNumber,
					statusBadge(e.Status), assignedName(&e), e.Location)
			}
			w.Flush()

			fmt.Printf("page %d/%d — %d équipement(s)\n",
				list.CurrentPage(), list.TotalPages(), list.TotalCount())
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "free-text search")
	cmd.Flags().StringVar(&eqType, "type", "", "type filter (Ordinateur, Imprimante, Serveur, Réseau, Autre)")
	cmd.Flags().StringVar(&status, "status", "", "status filter (En service, En panne, En maintenance, Hors service)")
	cmd.Flags().StringVar(&assignedTo, "assigned-to", "", "assigned user id filter (admin)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func equipmentsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one equipment record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(current, routeguard.Any); err != nil {
				return err
			}

			e, err := current.repo.GetEquipment(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Nom:           %s\n", e.Name)
			fmt.Printf("Type:          %s\n", e.Type)
			fmt.Printf("N° série:      %s\n", e.SerialNumber)
			fmt.Printf("Fabricant:     %s\n", deref(e.Manufacturer))
			fmt.Printf("Modèle:        %s\n", deref(e.Model))
			if e.PurchaseDate != nil {
				fmt.Printf("Date d'achat:  %s\n", e.PurchaseDate.Format("2006-01-02"))
			}
			if e.WarrantyEndDate != nil {
				fmt.Printf("Fin garantie:  %s\n", e.WarrantyEndDate.Format("2006-01-02"))
			}
			fmt.Printf("Statut:        %s\n", statusBadge(e.Status))
			fmt.Printf("Attribué à:    %s\n", assignedName(e))
			fmt.Printf("Localisation:  %s\n", e.Location)
			if e.Notes != nil {
				fmt.Printf("Notes:         %s\n", *e.Notes)
			}
			return nil
		},
	}
}

// equipmentFlags binds the shared create/update flags onto a form.
func equipmentFlags(cmd *cobra.Command, form *controller.EquipmentForm) {
	cmd.Flags().StringVar(&form.Name, "name", form.Name, "equipment name")
	cmd.Flags().StringVar(&form.Type, "type", form.Type, "equipment type")
	cmd.Flags().StringVar(&form.SerialNumber, "serial", form.SerialNumber, "serial number")
	cmd.Flags().StringVar(&form.Manufacturer, "manufacturer", form.Manufacturer, "manufacturer")
	cmd.Flags().StringVar(&form.Model, "model", form.Model, "model")
	cmd.Flags().StringVar(&form.PurchaseDate, "purchase-date", form.PurchaseDate, "purchase date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&form.WarrantyEndDate, "warranty-end", form.WarrantyEndDate, "warranty end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&form.Status, "status", form.Status, "status")
	cmd.Flags().StringVar(&form.AssignedTo, "assigned-to", form.AssignedTo, "assigned user id (empty to clear)")
	cmd.Flags().StringVar(&form.Location, "location", form.Location, "location")
	cmd.Flags().StringVar(&form.Notes, "notes", form.Notes, "notes")
}

func equipmentsCreateCmd() *cobra.Command {
	form := controller.NewEquipmentForm(nil)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new equipment (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(current, routeguard.AdminOnly); err != nil {
				return err
			}

			input, err := form.Submit()
			if err != nil {
				return err
			}
			created, err := current.repo.CreateEquipment(cmd.Context(), *input)
			if err != nil {
				return err
			}
			color.Green("Équipement créé: %s (%s)", created.Name, created.ID)
			return nil
		},
	}

	equipmentFlags(cmd, form)
	return cmd
}

func equipmentsUpdateCmd() *cobra.Command {
	form := &controller.EquipmentForm{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit an equipment (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(current, routeguard.AdminOnly); err != nil {
				return err
			}

			// start from the stored record so unset flags keep their value
			existing, err := current.repo.GetEquipment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			base := controller.NewEquipmentForm(existing)
			applyChanged(cmd, form, base)

			input, err := base.Submit()
			if err != nil {
				return err
			}
			updated, err := current.repo.UpdateEquipment(cmd.Context(), args[0], *input)
			if err != nil {
				return err
			}
			color.Green("Équipement mis à jour: %s", updated.Name)
			return nil
		},
	}

	equipmentFlags(cmd, form)
	return cmd
}

// applyChanged copies only the flags the user actually set onto the base form.
func applyChanged(cmd *cobra.Command, flags, base *controller.EquipmentForm) {
	set := func(name string, dst *string, src string) {
		if cmd.Flags().Changed(name) {
			*dst = src
		}
	}
	set("name", &base.Name, flags.Name)
	set("type", &base.Type, flags.Type)
	set("serial", &base.SerialNumber, flags.SerialNumber)
	set("manufacturer", &base.Manufacturer, flags.Manufacturer)
	set("model", &base.Model, flags.Model)
	set("purchase-date", &base.PurchaseDate, flags.PurchaseDate)
	set("warranty-end", &base.WarrantyEndDate, flags.WarrantyEndDate)
	set("status", &base.Status, flags.Status)
	set("assigned-to", &base.AssignedTo, flags.AssignedTo)
	set("location", &base.Location, flags.Location)
	set("notes", &base.Notes, flags.Notes)
}

func equipmentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an equipment (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(current, routeguard.AdminOnly); err != nil {
				return err
			}
			if err := current.repo.DeleteEquipment(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Équipement supprimé.")
			return nil
		},
	}
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your assigned equipment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(current, routeguard.Any); err != nil {
				return err
			}

			user := current.guard.User()
			fmt.Printf("Bienvenue, %s !\n\n", user.Username)

			list := controller.NewEquipmentList(current.repo, current.guard, current.cfg.App.PageSize)
			if err := list.Load(cmd.Context()); err != nil {
				if msg := list.Message(); msg != "" {
					fmt.Fprintln(os.Stderr, msg)
				}
				return err
			}

			if list.Empty() {
				fmt.Println("Aucun équipement ne vous est actuellement attribué.")
				return nil
			}

			for _, e := range list.Items() {
				fmt.Printf("- %s (%s) — %s — %s\n", e.Name, e.Type, statusBadge(e.Status), e.Location)
			}
			return nil
		},
	}
}
