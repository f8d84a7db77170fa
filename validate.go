package nlx402

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nlx402/client-go/internal/apierrors"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their wire names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateArgs checks v against its struct tags and reports failures as a
// ValidationError for op.
func validateArgs(op string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.Invalid(op, err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%q is required", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%q failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return apierrors.Invalid(op, msgs...)
}

type verifyQuoteArgs struct {
	Quote *Quote `json:"quote" validate:"required"`
	Nonce string `json:"nonce" validate:"required"`
}

type verifyPaymentDataArgs struct {
	Nonce string `json:"nonce" validate:"required"`
}
