package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the metadata of a zfq archive",
	Long: `Print the metadata of a zfq archive as JSON: record count ("seq"),
quality byte count ("nt"), source digest ("md5") and source mtime
("mtime"). Only the metadata entry is read; the columns stay packed.`,
	RunE: runInfo,
}

var infoInput string

func init() {
	infoCmd.Flags().StringVarP(&infoInput, "input", "i", "", "path to the zfq archive")
	infoCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := newArchiver()
	if err != nil {
		return err
	}

	md, err := a.Info(infoInput)
	if err != nil {
		return fmt.Errorf("reading %s: %w", infoInput, err)
	}

	out, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
