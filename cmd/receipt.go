package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/receipts"
)

var receiptCmd = &cobra.Command{
	Use:   "receipt",
	Short: "Receipts of the day",
}

var receiptAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add a receipt from its text (read from stdin when omitted)",
	Long: `Add a receipt from its recognised text. Merchant, date, VAT and total
are guessed from the text and can be corrected with fdt receipt update.`,
	RunE: runReceiptAdd,
}

var receiptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List receipts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := openApp(cmd.Context())
		defer a.Close()

		list := a.Receipts.List()
		if len(list) == 0 {
			fmt.Println("No receipts.")
			return nil
		}
		for _, r := range list {
			printReceipt(r)
		}
		fmt.Printf("Total: %.2f\n", a.Receipts.Total())
		return nil
	},
}

var receiptUpdateCmd = &cobra.Command{
	Use:   "update <id> <field> <value>",
	Short: "Correct a field: merchant, date, vat, total or notes",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := openApp(cmd.Context())
		defer a.Close()

		var (
			r  model.Receipt
			ok bool
		)
		a.Do(func() error {
			r, ok = a.Receipts.Update(args[0], args[1], strings.Join(args[2:], " "))
			return nil
		})
		if !ok {
			exitUsage("No receipt %s or unknown field %q (want %s, %s, %s, %s or %s).", args[0], args[1],
				receipts.FieldMerchant, receipts.FieldDate, receipts.FieldVAT, receipts.FieldTotal, receipts.FieldNotes)
		}
		printReceipt(r)
		return nil
	},
}

var receiptRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a receipt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := openApp(cmd.Context())
		defer a.Close()

		var ok bool
		a.Do(func() error {
			ok = a.Receipts.Remove(args[0])
			return nil
		})
		if !ok {
			exitUsage("No receipt %s.", args[0])
		}
		fmt.Println("Removed.")
		return nil
	},
}

func init() {
	receiptCmd.AddCommand(receiptAddCmd)
	receiptCmd.AddCommand(receiptListCmd)
	receiptCmd.AddCommand(receiptUpdateCmd)
	receiptCmd.AddCommand(receiptRemoveCmd)
}

func runReceiptAdd(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitUsage("reading stdin: %v", err)
		}
		text = string(data)
	}

	a := openApp(cmd.Context())
	defer a.Close()

	var (
		r  model.Receipt
		ok bool
	)
	a.Do(func() error {
		r, ok = a.Receipts.Add(text)
		return nil
	})
	if !ok {
		exitUsage("Empty receipt text.")
	}
	printReceipt(r)
	return nil
}

func printReceipt(r model.Receipt) {
	f := r.Fields
	fmt.Printf("%s  %s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("  Merchant: %s\n  Date: %s\n  VAT: %s\n  Total: %s\n", f.Merchant, f.Date, f.VATPercent, f.Total)
	if f.Notes != "" {
		fmt.Printf("  Notes: %s\n", f.Notes)
	}
}
