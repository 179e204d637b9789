package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/tradehub/internal/storefront/core/invoice"
	"github.com/jcmexdev/tradehub/internal/storefront/infra/httpx"
)

func invoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice [order.json]",
		Short: "Render an invoice from an order exported by the API",
		Long:  "Reads an order as returned by GET /api/orders/{id} from a file, or stdin when the path is -, and prints its invoice.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			status, _ := cmd.Flags().GetString("payment-status")

			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			order, err := httpx.ParseOrder(raw)
			if err != nil {
				return err
			}

			var doc string
			switch format {
			case "html":
				doc, err = invoice.HTML(order, status)
			case "text":
				doc, err = invoice.Text(order, status)
			default:
				return fmt.Errorf("unsupported format %q, use html or text", format)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), doc)
			return err
		},
	}

	cmd.Flags().StringP("format", "f", "text", "Output format (html, text)")
	cmd.Flags().String("payment-status", "", "Payment status to print on the invoice")

	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read order: %w", err)
	}
	return raw, nil
}
