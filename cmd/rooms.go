package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func roomsCmd() *cobra.Command {
	var availableOnly bool

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms, err := client.ListRooms(context.Background())
			if err != nil {
				return err
			}
			sort.Slice(rooms, func(i, j int) bool {
				return strings.ToLower(rooms[i].Name) < strings.ToLower(rooms[j].Name)
			})
			if availableOnly {
				filtered := rooms[:0]
				for _, room := range rooms {
					if room.Available() {
						filtered = append(filtered, room)
					}
				}
				rooms = filtered
			}

			if outputJSON {
				return writeJSON(rooms)
			}
			if len(rooms) == 0 {
				fmt.Println("No rooms found.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
			if !outputCompact {
				fmt.Fprintln(writer, "ID\tNAME\tALIAS\tCAPACITY\tLOCATION\tSTATUS")
			}
			for _, room := range rooms {
				status := room.Status
				if status == "" {
					status = "available"
				}
				fmt.Fprintf(writer, "%d\t%s\t%s\t%d\t%s\t%s\n", room.ID, room.Name, roomAlias(room.ID), room.Capacity, room.Location, status)
			}
			return writer.Flush()
		},
	}

	cmd.Flags().BoolVar(&availableOnly, "available", false, "Hide rooms under maintenance")
	return cmd
}

func companiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "companies",
		Short: "List companies for specific-company visibility",
		RunE: func(cmd *cobra.Command, args []string) error {
			companies, err := client.ListCompanies(context.Background())
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(companies)
			}
			if len(companies) == 0 {
				fmt.Println("No companies found.")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
			if !outputCompact {
				fmt.Fprintln(writer, "ID\tNAME\tDOMAIN")
			}
			for _, company := range companies {
				fmt.Fprintf(writer, "%d\t%s\t%s\n", company.ID, company.Name, company.Domain)
			}
			return writer.Flush()
		},
	}
	return cmd
}

func whoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the user the session belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := client.CurrentUser(context.Background())
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(user)
			}
			role := user.Role
			if user.IsAdmin() {
				role += " (admin)"
			}
			fmt.Printf("%s <%s>\n", user.Name, user.Email)
			if !outputCompact {
				fmt.Printf("Role: %s\n", role)
				if user.CompanyName != "" {
					fmt.Printf("Company: %s\n", user.CompanyName)
				}
			}
			return nil
		},
	}
	return cmd
}
