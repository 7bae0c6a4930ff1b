package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/learningequality/kolibri-server-ctl/internal/logging"
)

// introspectTimeout bounds the optional redis INFO round trip. The rest of
// the tool has no timeouts; this call alone is best-effort and skippable.
const introspectTimeout = 5 * time.Second

// systemTotalMemory returns the machine's total physical memory in bytes.
func systemTotalMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Total, nil
}

// redisUsedMemory asks the running redis server for its used_memory figure.
// Any failure (server unreachable, unexpected INFO output) reports the
// capability as unavailable rather than as an error.
func redisUsedMemory(ctx context.Context, addr string) (int64, bool) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, introspectTimeout)
	defer cancel()

	info, err := client.Info(ctx, "memory").Result()
	if err != nil {
		logging.Debug("redis INFO failed", "addr", addr, "error", err)
		return 0, false
	}
	return parseUsedMemory(info)
}

// parseUsedMemory extracts the used_memory field from INFO memory output.
func parseUsedMemory(info string) (int64, bool) {
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		value, ok := strings.CutPrefix(line, "used_memory:")
		if !ok {
			continue
		}
		used, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, false
		}
		return used, true
	}
	return 0, false
}
