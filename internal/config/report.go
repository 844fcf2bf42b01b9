// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io"

	"github.com/ManuGH/snippets/internal/validate"
)

const (
	// ReportHeader opens a validation failure report.
	ReportHeader = "Environment validation failed:"
	// ReportMarker prefixes every violation line.
	ReportMarker = "- "
)

// WriteReport prints err as an operator-facing report: a header line followed
// by one marked line per violation, in declaration order.
func WriteReport(w io.Writer, err error) {
	if err == nil {
		return
	}

	_, _ = fmt.Fprintln(w, ReportHeader)

	var verr validate.ValidationError
	if errors.As(err, &verr) {
		for _, e := range verr.Errors() {
			_, _ = fmt.Fprintf(w, "%s%s\n", ReportMarker, e.Error())
		}
		return
	}
	_, _ = fmt.Fprintf(w, "%s%s\n", ReportMarker, err.Error())
}
