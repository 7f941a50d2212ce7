package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/turtlefleet/turtle/internal/observe"
)

// FormatSnapshot renders an observation as a dashboard. At most topN
// processes are listed, busiest first; topN <= 0 lists them all.
func FormatSnapshot(s *observe.Snapshot, topN int) string {
	if s == nil {
		return Dim("No snapshot.") + "\n"
	}
	var b strings.Builder

	taken := "unknown"
	if s.Timestamp > 0 {
		taken = time.Unix(s.Timestamp, 0).Format("2006-01-02 15:04:05")
	}
	res := s.Resources
	summary := strings.Join([]string{
		fmt.Sprintf("%s %s", Dim("taken  "), taken),
		fmt.Sprintf("%s %s %s", Dim("cpu    "), Percent(res.CPUPercent), Dim(fmt.Sprintf("(load %.2f, estimated)", res.LoadAverage))),
		fmt.Sprintf("%s %s", Dim("memory "), Percent(res.MemoryPercent)),
		fmt.Sprintf("%s %s", Dim("disk   "), Percent(res.DiskPercent)),
		fmt.Sprintf("%s %s", Dim("network"), networkLine(s.Network)),
	}, "\n")
	b.WriteString(RenderBox("System", summary))
	b.WriteString("\n\n")

	procs := append([]observe.ProcessRecord(nil), s.Processes...)
	sort.SliceStable(procs, func(i, j int) bool { return procs[i].CPU > procs[j].CPU })
	if topN > 0 && len(procs) > topN {
		procs = procs[:topN]
	}
	b.WriteString(Header(fmt.Sprintf("Processes (%d)", len(s.Processes))))
	b.WriteString("\n")
	rows := make([][]string, 0, len(procs))
	for _, p := range procs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.PID),
			Truncate(p.Name, 40),
			fmt.Sprintf("%.1f", p.CPU),
			fmt.Sprintf("%d", p.MemoryMB),
			p.Status,
		})
	}
	b.WriteString(RenderTable([]string{"PID", "NAME", "CPU%", "MEM MB", "STAT"}, rows))

	if len(s.Windows) > 0 {
		b.WriteString("\n")
		b.WriteString(Header(fmt.Sprintf("Windows (%d)", len(s.Windows))))
		b.WriteString("\n")
		rows = rows[:0]
		for _, w := range s.Windows {
			rows = append(rows, []string{
				Dim(w.ID),
				Truncate(w.Title, 40),
				fmt.Sprintf("%d,%d", w.X, w.Y),
				fmt.Sprintf("%dx%d", w.Width, w.Height),
			})
		}
		b.WriteString(RenderTable([]string{"ID", "TITLE", "POS", "SIZE"}, rows))
	}
	return b.String()
}

func networkLine(n observe.Network) string {
	if !n.Connected {
		return StyleRed.Render("● offline")
	}
	line := StyleGreen.Render("● online")
	if n.LatencyMs != nil {
		line += Dim(fmt.Sprintf(" (%.1f ms)", *n.LatencyMs))
	}
	return line
}
