package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/itinerary-architect/internal/render"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <pdf>",
		Short: "Print the page count and page size of an exported brochure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := render.Inspect(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if info.Title != "" {
				fmt.Fprintf(out, "title: %s\n", info.Title)
			}
			fmt.Fprintf(out, "pages: %d\n", info.Pages)
			fmt.Fprintf(out, "size:  %.0f x %.0f pt\n", info.Width, info.Height)
			return nil
		},
	}
}
