package bench

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// CollectHost gathers machine details. Probes that fail are logged and
// their fields left empty; the runtime fields are always set.
func CollectHost(ctx context.Context, log *zap.Logger) Host {
	h := Host{
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		LogicalCPUs: runtime.NumCPU(),
		GoVersion:   runtime.Version(),
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		h.Hostname = info.Hostname
		h.Platform = info.Platform
	} else {
		log.Debug("host info unavailable", zap.Error(err))
	}

	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		h.CPUModel = infos[0].ModelName
	} else if err != nil {
		log.Debug("cpu info unavailable", zap.Error(err))
	}

	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		h.LogicalCPUs = n
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		h.MemoryTotal = vm.Total
	} else {
		log.Debug("memory info unavailable", zap.Error(err))
	}

	return h
}
