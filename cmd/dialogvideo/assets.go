package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newAssetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assets",
		Short: "Show the character images found for each roster entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := ctx.ensureProject()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			rows := [][]string{}
			for _, id := range proj.Roster.IDs() {
				def := proj.Roster.Character(id)
				files := proj.Inventory[id]
				rows = append(rows, []string{
					id,
					def.Name,
					filepath.Join(proj.ImagesDir(), id),
					strconv.Itoa(len(files)),
					strings.Join(files, ", "),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Folder", "Images", "Files"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))

			fmt.Fprintln(out, "Images:")
			kind, msg := statusOK, proj.ImagesDir()
			switch {
			case !proj.Settings.Character.UseImages:
				kind, msg = statusInfo, "disabled, placeholders are drawn"
			case len(proj.Inventory) == 0:
				kind, msg = statusWarn, proj.ImagesDir()+" is empty or missing, placeholders are drawn"
			}
			fmt.Fprintln(out, renderStatusLine("Directory", kind, msg, colorize))
			for _, id := range proj.Roster.IDs() {
				if proj.Inventory.Has(id, "mouth_open.png") && proj.Inventory.Has(id, "mouth_close.png") {
					continue
				}
				if proj.Settings.Character.UseImages {
					fmt.Fprintln(out, renderStatusLine(id, statusWarn, "mouth_open.png or mouth_close.png missing", colorize))
				}
			}
			return nil
		},
	}
}
