package visuals

import (
	"fmt"
	"math"
	"strings"

	"ticket-stats/internal/stats"
)

// maxBars caps the x-axis; Mermaid's layout starts overlapping labels beyond this.
const maxBars = 30

// quote makes a label safe inside a double-quoted Mermaid string.
func quote(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "'") + "\""
}

// GeneratePieChart creates a Mermaid pie chart of a distribution table.
func GeneratePieChart(title string, table stats.Table) string {
	if table.Total() == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString(fmt.Sprintf("pie title %s\n", title))
	for i, label := range table.Labels {
		if table.Data[i] == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s : %d\n", quote(label), table.Data[i]))
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateBarChart creates a Mermaid xychart-beta bar chart of a distribution table.
// Tables with more than maxBars labels are truncated to their first maxBars entries.
func GenerateBarChart(title, yAxis string, table stats.Table) string {
	if table.Len() == 0 {
		return ""
	}

	limit := table.Len()
	if limit > maxBars {
		limit = maxBars
	}

	labels := make([]string, 0, limit)
	values := make([]string, 0, limit)
	maxVal := 0
	for i := 0; i < limit; i++ {
		labels = append(labels, quote(table.Labels[i]))
		values = append(values, fmt.Sprintf("%d", table.Data[i]))
		if table.Data[i] > maxVal {
			maxVal = table.Data[i]
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title %s\n", quote(title)))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis %s 0 --> %d\n", quote(yAxis), maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateSystemsChart creates a bar chart of the per-system involvement counts.
func GenerateSystemsChart(title string, counts stats.SystemCounts) string {
	return GenerateBarChart(title, "工单数", stats.Table{
		Labels: []string{stats.SystemOA, stats.SystemMarketing, stats.SystemU8C},
		Data:   []int{counts.OA, counts.Marketing, counts.U8C},
	})
}
