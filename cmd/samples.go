package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yumyai/sangercheck/pkg/db"
	"github.com/yumyai/sangercheck/pkg/model"
)

var sampleLabel string

// samplesCmd represents the samples command
var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Manage the sqlite sample sheet used by compare and serve",
}

var samplesAddCmd = &cobra.Command{
	Use:   "add READ REFERENCE",
	Short: "Add a read/reference pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSampleDB(cmd, func(sheet *db.SampleDB) error {
			p := model.Pair{Label: sampleLabel, Read: args[0], Reference: args[1]}
			if err := sheet.AddPair(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", p)
			return nil
		})
	},
}

var samplesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the pairs in the sample sheet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSampleDB(cmd, func(sheet *db.SampleDB) error {
			pairs, err := sheet.Pairs(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range pairs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", p.Label, p.Read, p.Reference)
			}
			return nil
		})
	},
}

var samplesRemoveCmd = &cobra.Command{
	Use:   "remove READ REFERENCE",
	Short: "Remove a read/reference pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSampleDB(cmd, func(sheet *db.SampleDB) error {
			p := model.Pair{Read: args[0], Reference: args[1]}
			removed, err := sheet.DeletePair(cmd.Context(), p)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no pair %s in the sample sheet", p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", p)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(samplesCmd)
	samplesCmd.AddCommand(samplesAddCmd, samplesListCmd, samplesRemoveCmd)

	samplesCmd.PersistentFlags().String("db", "", "sample sheet path (default data.samples_db)")
	samplesAddCmd.Flags().StringVarP(&sampleLabel, "label", "l", "", "sample label shown in reports")
}

func withSampleDB(cmd *cobra.Command, fn func(*db.SampleDB) error) error {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = settings.GetString("data.samples_db")
	}
	if path == "" {
		return errors.New("no sample sheet: pass --db or set data.samples_db")
	}

	sheet, err := db.OpenSampleDB(cmd.Context(), path)
	if err != nil {
		return err
	}
	defer sheet.Close()
	return fn(sheet)
}
