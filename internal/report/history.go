package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/nicocardiel/repdoc/internal/domain"
)

// executionHistory lists every recorded run of the course, oldest first,
// each block preceded by a dashed rule.
func executionHistory(runs []*domain.Execution) []byte {
	var buf bytes.Buffer
	rule := strings.Repeat("-", 79)
	for _, x := range runs {
		fmt.Fprintf(&buf, "%s\n%s\n%s\n%s\n", rule, x.StartedAt.Format(updatedAtLayout), x.Host, x.Command)
	}
	return buf.Bytes()
}
