// Package cleanup provides ascii reporter
package cleanup

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/inventory"
)

const (
	cyan        = "\033[38;2;86;182;194m"  // One Dark Cyan: #56B6C2
	cyanBright  = "\033[38;2;97;228;240m"  // Brighter Cyan: #61E4F0
	dimCyan     = "\033[38;2;47;91;102m"   // Dim Cyan: #2F5B66
	grey        = "\033[38;2;110;118;129m" // Brighter Grey: #6E7681
	dimGrey     = "\033[38;2;75;82;99m"    // Darker Grey: #4B5263
	success     = "\033[38;2;62;130;144m"  // Dim Cyan: #3E8290
	warning     = "\033[38;2;229;192;123m" // One Dark Yellow: #E5C07B
	errorRed    = "\033[38;2;224;108;117m" // One Dark Red: #E06C75
	white       = "\033[38;2;171;178;191m" // One Dark Foreground: #ABB2BF
	whiteBright = "\033[38;2;220;225;230m" // Brighter White
	purple      = "\033[38;2;198;120;221m" // One Dark Purple: #C678DD
	reset       = "\033[0m"
	bold        = "\033[1m"
)

type Reporter struct {
	out io.Writer
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

func (r *Reporter) LogStage(message string, args ...any) {
	fmt.Fprintf(r.out, "%s%s✦ %s%s%s\n", success, bold, grey, fmt.Sprintf(message, args...), reset)
}

func (r *Reporter) LogSuccess(message string, args ...any) {
	fmt.Fprintf(r.out, "%s%s✦ %s%s%s\n", success, bold, white, fmt.Sprintf(message, args...), reset)
}

func (r *Reporter) LogWarning(message string, args ...any) {
	fmt.Fprintf(r.out, "%s%s⚠ WARNING: %s%s%s\n", bold, warning, grey, fmt.Sprintf(message, args...), reset)
}

func (r *Reporter) LogInfo(message string, args ...any) {
	fmt.Fprintf(r.out, "%s▶ %s%s%s\n", dimGrey, grey, fmt.Sprintf(message, args...), reset)
}

// GeneratePoolReport renders one line per package plus a totals line.
func (r *Reporter) GeneratePoolReport(now time.Time, pools []inventory.Pool, active int) string {
	var report strings.Builder
	timestamp := now.UTC().Format("2006-01-02 15:04:05 MST")
	report.WriteString(fmt.Sprintf("%s%s▓ %s | %sInventory%s\n", bold, dimCyan, timestamp, whiteBright, reset))

	for _, p := range pools {
		var line strings.Builder
		if p.SoldOut() {
			line.WriteString(fmt.Sprintf("%s✖ %s%s:%s SOLD OUT", errorRed, grey, p.PackageID, errorRed))
		} else {
			line.WriteString(fmt.Sprintf("%s✦ %s%s:", success, grey, p.PackageID))
			line.WriteString(fmt.Sprintf(" %savailable:%s%d", dimCyan, cyanBright, p.Available()))
		}
		line.WriteString(fmt.Sprintf(" %sreserved:%s%s", dimCyan, cyan, countOrDash(p.Reserved)))
		line.WriteString(fmt.Sprintf(" %ssold:%s%s", dimCyan, cyan, countOrDash(p.Sold)))
		line.WriteString(fmt.Sprintf(" %stotal:%s%d%s", dimGrey, white, p.Total, reset))
		report.WriteString(line.String() + "\n")
	}

	report.WriteString(fmt.Sprintf("%s✦ holds:%s %d%s\n", purple, white, active, reset))
	return report.String()
}

func countOrDash(n uint) string {
	if n == 0 {
		return "--"
	}
	return fmt.Sprintf("%d", n)
}
