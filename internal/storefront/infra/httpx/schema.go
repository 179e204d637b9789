package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
)

// Schemas check shape and types. Presence and business rules are left to
// the services so their messages reach the caller unchanged.

const schemaLineItem = `{
  "type": "object",
  "properties": {
    "id":       {"type": "integer"},
    "name":     {"type": "string"},
    "price":    {"type": "number"},
    "quantity": {"type": "integer"},
    "category": {"type": "string"}
  }
}`

const schemaAddress = `{
  "type": "object",
  "properties": {
    "firstName": {"type": "string"},
    "lastName":  {"type": "string"},
    "email":     {"type": "string"},
    "phone":     {"type": "string"},
    "address":   {"type": "string"},
    "city":      {"type": "string"},
    "state":     {"type": "string"},
    "zipCode":   {"type": "string"}
  }
}`

const schemaDiscount = `{
  "type": "object",
  "properties": {
    "code":           {"type": "string"},
    "discountType":   {"enum": ["percentage", "fixed"]},
    "discountAmount": {"type": "number"}
  }
}`

const schemaOrderCreate = `{
  "type": "object",
  "properties": {
    "items":           {"type": "array", "items": ` + schemaLineItem + `},
    "shippingAddress": ` + schemaAddress + `,
    "shippingMethod":  {"type": "string"},
    "discount":        ` + schemaDiscount + `,
    "subtotal":        {"type": "number"},
    "shipping":        {"type": "number"},
    "tax":             {"type": "number"},
    "total":           {"type": "number"}
  }
}`

const schemaCheckout = `{
  "type": "object",
  "properties": {
    "items":           {"type": "array", "items": ` + schemaLineItem + `},
    "shippingAddress": ` + schemaAddress + `,
    "shippingMethod":  {"type": "string"},
    "discount":        ` + schemaDiscount + `,
    "callbackUrl":     {"type": "string"},
    "returnUrl":       {"type": "string"}
  }
}`

const schemaPaymentInit = `{
  "type": "object",
  "properties": {
    "reference":   {"type": "string"},
    "amount":      {"type": "number"},
    "currency":    {"type": "string"},
    "country":     {"type": "string"},
    "callbackUrl": {"type": "string"},
    "returnUrl":   {"type": "string"},
    "userInfo": {
      "type": "object",
      "properties": {
        "userEmail": {"type": "string"},
        "userName":  {"type": "string"}
      }
    }
  }
}`

const schemaLogin = `{
  "type": "object",
  "properties": {
    "email":    {"type": "string"},
    "password": {"type": "string"}
  }
}`

const schemaStatusUpdate = `{
  "type": "object",
  "properties": {
    "status":  {"type": "string"},
    "message": {"type": "string"},
    "note":    {"type": "string"}
  }
}`

const schemaCancel = `{
  "type": "object",
  "properties": {
    "reason": {"type": "string"}
  }
}`

const schemaRefund = `{
  "type": "object",
  "properties": {
    "reference": {"type": "string"},
    "paymentId": {"type": "string"},
    "orderId":   {"type": "string"},
    "amount":    {"type": "number"},
    "reason":    {"type": "string"}
  }
}`

const schemaRetry = `{
  "type": "object",
  "properties": {
    "reference":     {"type": "string"},
    "transactionId": {"type": "string"}
  }
}`

const schemaProductUpdate = `{
  "type": "object",
  "properties": {
    "name":     {"type": "string"},
    "price":    {"type": "number"},
    "category": {"type": "string"},
    "inStock":  {"type": "boolean"},
    "featured": {"type": "boolean"}
  }
}`

const schemaCarousel = `{
  "type": "object",
  "required": ["items"],
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id":              {"type": "string"},
          "type":            {"type": "string"},
          "title":           {"type": "string"},
          "imageUrl":        {"type": "string"},
          "linkUrl":         {"type": "string"},
          "linkedProductId": {"type": ["integer", "null"]},
          "position":        {"type": "integer"},
          "isActive":        {"type": "boolean"}
        }
      }
    }
  }
}`

const schemaUserUpdate = `{
  "type": "object",
  "properties": {
    "role":   {"type": "string"},
    "status": {"type": "string"}
  }
}`

var (
	orderCreateLoader   = gojsonschema.NewStringLoader(schemaOrderCreate)
	checkoutLoader      = gojsonschema.NewStringLoader(schemaCheckout)
	paymentInitLoader   = gojsonschema.NewStringLoader(schemaPaymentInit)
	loginLoader         = gojsonschema.NewStringLoader(schemaLogin)
	statusUpdateLoader  = gojsonschema.NewStringLoader(schemaStatusUpdate)
	cancelLoader        = gojsonschema.NewStringLoader(schemaCancel)
	refundLoader        = gojsonschema.NewStringLoader(schemaRefund)
	retryLoader         = gojsonschema.NewStringLoader(schemaRetry)
	productUpdateLoader = gojsonschema.NewStringLoader(schemaProductUpdate)
	carouselLoader      = gojsonschema.NewStringLoader(schemaCarousel)
	userUpdateLoader    = gojsonschema.NewStringLoader(schemaUserUpdate)
)

func validateJSONSchema(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apperr.Validation("Invalid JSON body", map[string]any{"error": err.Error()})
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return apperr.Validation("Request body does not match schema", map[string]any{"errors": problems})
}

// readBody returns the raw request body. An empty body reads as "{}" so
// optional bodies validate as an empty object.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation("Request body too large", map[string]any{"limit": tooLarge.Limit})
		}
		return nil, apperr.Validation("Could not read request body", nil)
	}
	if len(body) == 0 {
		return []byte("{}"), nil
	}
	return body, nil
}

// decode validates the body against schema and unmarshals it into dst.
func decode(r *http.Request, schema gojsonschema.JSONLoader, dst any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := validateJSONSchema(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Validation("Invalid JSON body", map[string]any{"error": fmt.Sprint(err)})
	}
	return nil
}
