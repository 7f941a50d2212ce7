package observe

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// ParseProcessTable reads `ps aux --no-headers` style output. Lines with
// fewer than 11 fields or unparsable numbers are skipped. At most limit
// records are returned when limit > 0.
func ParseProcessTable(out string, limit int) []ProcessRecord {
	var procs []ProcessRecord
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		if limit > 0 && len(procs) >= limit {
			break
		}
		p, ok := parseProcessLine(sc.Text())
		if ok {
			procs = append(procs, p)
		}
	}
	return procs
}

func parseProcessLine(line string) (ProcessRecord, bool) {
	f := strings.Fields(line)
	if len(f) < 11 {
		return ProcessRecord{}, false
	}
	pid, err := strconv.Atoi(f[1])
	if err != nil {
		return ProcessRecord{}, false
	}
	cpu, err := strconv.ParseFloat(f[2], 64)
	if err != nil {
		return ProcessRecord{}, false
	}
	rssKB, err := strconv.Atoi(f[5])
	if err != nil {
		return ProcessRecord{}, false
	}
	return ProcessRecord{
		PID:      pid,
		Name:     f[10],
		CPU:      cpu,
		MemoryMB: rssKB / 1024,
		Status:   f[7],
	}, true
}

// ParseWindowTable reads `wmctrl -l -G` style output: id, desktop, x, y,
// width, height, then the title as the remaining fields. Lines with fewer
// than 7 fields or unparsable geometry are skipped.
func ParseWindowTable(out string) []WindowRecord {
	var wins []WindowRecord
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		w, ok := parseWindowLine(sc.Text())
		if ok {
			wins = append(wins, w)
		}
	}
	return wins
}

func parseWindowLine(line string) (WindowRecord, bool) {
	f := strings.Fields(line)
	if len(f) < 7 {
		return WindowRecord{}, false
	}
	var geom [4]int
	for i := range geom {
		n, err := strconv.Atoi(f[2+i])
		if err != nil {
			return WindowRecord{}, false
		}
		geom[i] = n
	}
	if geom[2] < 0 || geom[3] < 0 {
		return WindowRecord{}, false
	}
	return WindowRecord{
		ID:      f[0],
		Title:   strings.Join(f[6:], " "),
		X:       geom[0],
		Y:       geom[1],
		Width:   geom[2],
		Height:  geom[3],
		Visible: true,
	}, true
}

// ParseLoadAverage returns the one-minute load average from /proc/loadavg.
func ParseLoadAverage(out string) (float64, bool) {
	f := strings.Fields(out)
	if len(f) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(f[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseMemoryPercent computes used memory from /proc/meminfo as
// (MemTotal - MemAvailable) / MemTotal. Missing fields yield 0.
func ParseMemoryPercent(out string) float64 {
	var total, avail int64
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 2 {
			continue
		}
		n, err := strconv.ParseInt(f[1], 10, 64)
		if err != nil {
			continue
		}
		switch f[0] {
		case "MemTotal:":
			total = n
		case "MemAvailable:":
			avail = n
		}
	}
	if total <= 0 || avail > total {
		return 0
	}
	return float64(total-avail) / float64(total) * 100
}

// ParseDiskPercent reads the capacity column of `df -P <path>`.
func ParseDiskPercent(out string) float64 {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return 0
	}
	f := strings.Fields(lines[len(lines)-1])
	if len(f) < 5 {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(f[4], "%"), 64)
	if err != nil {
		return 0
	}
	return v
}

var pingTime = regexp.MustCompile(`time[=<]([0-9]+(?:\.[0-9]+)?)\s*ms`)

// ParsePingLatency extracts the round-trip time from ping output.
func ParsePingLatency(out string) (float64, bool) {
	m := pingTime.FindStringSubmatch(out)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
