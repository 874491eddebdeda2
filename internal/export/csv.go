package export

import (
	"bytes"
	"strings"

	"github.com/rabbitt-learning/certgen/internal/generate"
)

// CSV derives the tabular report from bulk results. The header row is plain,
// data fields are always quoted, rows appear in input order joined by
// newlines with no trailing newline, and failed rows are left out. The
// TestName column is only present when at least one result carries one.
func CSV(results []generate.RowResult) []byte {
	includeTestName := false
	for _, res := range results {
		if res.TestName != "" {
			includeTestName = true
			break
		}
	}

	var buf bytes.Buffer
	if includeTestName {
		buf.WriteString("Name,TestName,Email,CertificateLink")
	} else {
		buf.WriteString("Name,Email,CertificateLink")
	}

	for _, res := range results {
		if !res.Success || res.ImageURL == "" {
			continue
		}
		buf.WriteByte('\n')
		if includeTestName {
			writeRow(&buf, res.Name, res.TestName, res.Email, res.ImageURL)
		} else {
			writeRow(&buf, res.Name, res.Email, res.ImageURL)
		}
	}

	return buf.Bytes()
}

// writeRow emits one record with every field quoted. encoding/csv only
// quotes when it must, so quoting is done by hand here.
func writeRow(buf *bytes.Buffer, fields ...string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
}
