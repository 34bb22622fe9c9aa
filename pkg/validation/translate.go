// Package validation turns go-playground/validator errors into
// client-facing messages keyed by JSON field name.
package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterJSONTagNames makes validator report fields by their json tag. Call
// once at startup before serving.
func RegisterJSONTagNames() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
	}
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Translate maps err to field messages. ok is false when err is not a
// validation or JSON decoding error.
func Translate(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			field := fe.Field()
			if msg, ok := CustomMessage(field)[fe.Tag()]; ok {
				out[field] = msg
				continue
			}
			out[field] = DefaultMessage(field, fe.Tag(), fe.Param())
		}
		return out, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return map[string]string{typeErr.Field: "has the wrong type, expected " + typeErr.Type.String()}, true
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return map[string]string{"body": "malformed JSON"}, true
	}
	return nil, false
}
