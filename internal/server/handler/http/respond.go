package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator"
)

// validationIssue mirrors one entry of a 422 {"detail": [...]} body.
type validationIssue struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail writes {"detail": detail}, the error body every client screen reads.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeValidation(w http.ResponseWriter, where string, issues []validationIssue) {
	for i := range issues {
		issues[i].Loc = append([]string{where}, issues[i].Loc...)
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string][]validationIssue{"detail": issues})
}

// validationIssues turns validator errors into per-field messages.
func validationIssues(err error) []validationIssue {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []validationIssue{{Msg: err.Error()}}
	}
	issues := make([]validationIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "Field required"
		case "email":
			msg = "value is not a valid email address"
		case "min":
			msg = "String should have at least " + fe.Param() + " characters"
		case "max":
			msg = "String should have at most " + fe.Param() + " characters"
		default:
			msg = "Invalid value"
		}
		issues = append(issues, validationIssue{Loc: []string{field}, Msg: msg})
	}
	return issues
}
