package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportedOrder = `{
  "status": "success",
  "data": {
    "id": "order_1",
    "orderNumber": "ORD-1767225600000-x1y2z3",
    "items": [{"id": 1, "name": "Wireless Earbuds", "price": 15000, "quantity": 2, "category": "electronics"}],
    "subtotal": 30000,
    "shipping": 1500,
    "tax": 2250,
    "total": 33750,
    "status": "pending",
    "createdAt": "2026-01-01T00:00:00Z",
    "shippingAddress": {"firstName": "Ada", "lastName": "Obi", "email": "ada@example.com", "address": "1 Marina", "city": "Lagos", "state": "LA", "zipCode": "100001"},
    "shippingMethod": "standard",
    "statusHistory": []
  }
}`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInvoiceCommandText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order.json")
	require.NoError(t, os.WriteFile(path, []byte(exportedOrder), 0o600))

	out, err := execute(t, "", "invoice", path, "--payment-status", "Paid")
	require.NoError(t, err)
	assert.Contains(t, out, "INVOICE #ORD-1767225600000-x1y2z3")
	assert.Contains(t, out, "PAYMENT STATUS: Paid")
	assert.Contains(t, out, "Ada Obi")
}

func TestInvoiceCommandHTMLFromStdin(t *testing.T) {
	out, err := execute(t, exportedOrder, "invoice", "-", "--format", "html")
	require.NoError(t, err)
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "ORD-1767225600000-x1y2z3")
}

func TestInvoiceCommandRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, exportedOrder, "invoice", "-", "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestConfigCheck(t *testing.T) {
	t.Setenv("PAYMENT_MODE", "demo")
	t.Setenv("JWT_SECRET", "s3cret")

	out, err := execute(t, "", "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "payment mode:  demo")
	assert.Contains(t, out, "configuration OK")
}

func TestConfigCheckReportsProblems(t *testing.T) {
	t.Setenv("PAYMENT_MODE", "production")
	t.Setenv("OPAY_SECRET_KEY", "")

	out, err := execute(t, "", "config", "check")
	require.Error(t, err)
	assert.Contains(t, out, "OPAY_SECRET_KEY is required in production mode")
}
