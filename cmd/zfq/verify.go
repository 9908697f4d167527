package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify that a zfq archive round-trips",
	Long: `Verify that a zfq archive round-trips.

The archive is decompressed into a throwaway file beside it and the
reconstructed content is checked against the digest recorded at
compression time. The throwaway file is always removed.`,
	RunE: runVerify,
}

var verifyInput string

func init() {
	verifyCmd.Flags().StringVarP(&verifyInput, "input", "i", "", "path to the zfq archive")
	verifyCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	a, err := newArchiver()
	if err != nil {
		return err
	}

	if err := a.Verify(cmd.Context(), verifyInput); err != nil {
		return err
	}
	fmt.Println("Archive verified successfully.")
	return nil
}
