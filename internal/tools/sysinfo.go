package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

type SystemInfoInput struct{}

func systemInfoTool() ToolDefinition {
	return ToolDefinition{
		Name:        "system_info",
		Description: "Report host name, OS, uptime, CPU, memory and disk usage for the local machine.",
		InputSchema: GenerateSchema[SystemInfoInput](),
		Run: func(ctx context.Context, input json.RawMessage) (string, error) {
			return collectSystemInfo(), nil
		},
	}
}

// collectSystemInfo gathers each metric independently so one failing probe
// does not hide the others.
func collectSystemInfo() string {
	var b strings.Builder
	b.WriteString("System info:\n")

	if info, err := host.Info(); err == nil {
		fmt.Fprintf(&b, "- Host: %s (%s %s)\n", info.Hostname, info.Platform, info.PlatformVersion)
		fmt.Fprintf(&b, "- Uptime: %s\n", (time.Duration(info.Uptime) * time.Second).String())
	} else {
		fmt.Fprintf(&b, "- Host: unavailable (%v)\n", err)
	}

	if pct, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(pct) > 0 {
		fmt.Fprintf(&b, "- CPU usage: %.1f%%\n", pct[0])
	} else {
		fmt.Fprintf(&b, "- CPU usage: unavailable (%v)\n", err)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Fprintf(&b, "- Memory: %.1f%% of %.1f GB used\n", vm.UsedPercent, float64(vm.Total)/(1<<30))
	} else {
		fmt.Fprintf(&b, "- Memory: unavailable (%v)\n", err)
	}

	if du, err := disk.Usage("/"); err == nil {
		fmt.Fprintf(&b, "- Disk: %.1f%% of %.1f GB used", du.UsedPercent, float64(du.Total)/(1<<30))
	} else {
		fmt.Fprintf(&b, "- Disk: unavailable (%v)", err)
	}

	return b.String()
}
